package services

import (
	"testing"

	"jbcnews/internal/testutil"
)

func TestCountryLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCountryService(db)
	india := testutil.CreateTestCountry(t, db, "IN")
	testutil.CreateTestCountry(t, db, "LK")

	t.Run("by_code_case_insensitive", func(t *testing.T) {
		got, err := svc.GetByCode("in")
		testutil.AssertNoError(t, err)
		if got.ID != india.ID {
			t.Errorf("expected %s, got %s", india.ID, got.ID)
		}
	})

	t.Run("by_id", func(t *testing.T) {
		got, err := svc.GetByID(india.ID)
		testutil.AssertNoError(t, err)
		if got.Code != "IN" {
			t.Errorf("expected IN, got %s", got.Code)
		}
	})

	t.Run("unknown_code", func(t *testing.T) {
		_, err := svc.GetByCode("ZZ")
		testutil.AssertAppError(t, err, "COUNTRY_NOT_FOUND")
	})

	t.Run("list", func(t *testing.T) {
		countries, err := svc.List()
		testutil.AssertNoError(t, err)
		if len(countries) != 2 {
			t.Errorf("expected 2 countries, got %d", len(countries))
		}
	})
}
