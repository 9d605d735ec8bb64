package ident

import (
	"regexp"
	"testing"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if !IsValid(a) {
		t.Errorf("expected valid uuid, got %s", a)
	}
	if a[14] != '7' {
		t.Errorf("expected version 7 uuid, got %s", a)
	}
}

func TestNewTicketID(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := NewTicketID()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !IsTicketID(id) {
			t.Fatalf("ticket id %q does not match TKT-XXXXXX", id)
		}
	}
}

func TestIsTicketID(t *testing.T) {
	cases := map[string]bool{
		"TKT-ABC123":  true,
		"TKT-abc123":  false,
		"TKT-ABC12":   false,
		"TKT-ABC1234": false,
		"ABC-ABC123":  false,
		"":            false,
	}
	for in, want := range cases {
		if got := IsTicketID(in); got != want {
			t.Errorf("IsTicketID(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewStaffID(t *testing.T) {
	shape := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	id, err := NewStaffID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shape.MatchString(id) {
		t.Errorf("staff id %q is not 8 uppercase alphanumerics", id)
	}
}
