// Package ident generates the identifiers used across JBC News: time-ordered
// primary keys, public support ticket ids and staff ids.
package ident

import (
	"crypto/rand"
	"math/big"
	"regexp"

	googleuuid "github.com/google/uuid"
)

const (
	// TicketPrefix starts every support ticket id.
	TicketPrefix = "TKT-"
	// TicketSuffixLength is the number of random characters after the prefix.
	TicketSuffixLength = 6
	// StaffIDLength is the length of a staff profile id.
	StaffIDLength = 8

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ticketIDRegex = regexp.MustCompile(`^TKT-[A-Z0-9]{6}$`)

// New generates a UUIDv7 string. UUIDv7 is time-ordered and suitable for
// use as a database primary key. Falls back to UUIDv4 if the clock source
// or random reader fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// NewTicketID returns a ticket id such as TKT-7Q2ZK9.
func NewTicketID() (string, error) {
	suffix, err := randomCode(TicketSuffixLength)
	if err != nil {
		return "", err
	}
	return TicketPrefix + suffix, nil
}

// IsTicketID reports whether s has the ticket id shape.
func IsTicketID(s string) bool {
	return ticketIDRegex.MatchString(s)
}

// NewStaffID returns an 8-character uppercase alphanumeric staff id.
func NewStaffID() (string, error) {
	return randomCode(StaffIDLength)
}

// randomCode draws length characters uniformly from the alphabet.
func randomCode(length int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
