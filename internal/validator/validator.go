// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"jbcnews/internal/models"
)

var countryCodeRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Custom binding tags. validator/v10 already owns country_code as an alias of
// the ISO 3166 rules, so the alpha-2 check uses its own name.
const (
	TagISOCountry   = "iso_country"
	TagTicketStatus = "ticket_status"
	TagStaffRole    = "staff_role"
)

// Register registers all custom validators with the Gin binding engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	rules := map[string]validator.Func{
		TagISOCountry:   validateCountryCode,
		TagTicketStatus: validateTicketStatus,
		TagStaffRole:    validateStaffRole,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s: %w", tag, err)
		}
	}
	return nil
}

// validateCountryCode accepts ISO 3166-1 alpha-2 codes in either case.
func validateCountryCode(fl validator.FieldLevel) bool {
	return countryCodeRegex.MatchString(fl.Field().String())
}

func validateTicketStatus(fl validator.FieldLevel) bool {
	return models.TicketStatus(fl.Field().String()).Valid()
}

func validateStaffRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).CanAuthor()
}
