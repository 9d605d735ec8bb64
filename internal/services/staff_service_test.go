package services

import (
	"testing"

	"jbcnews/internal/ident"
	"jbcnews/internal/models"
	"jbcnews/internal/testutil"
)

func TestPromote(t *testing.T) {
	t.Run("creates_profile_and_updates_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStaffService(db)
		user := testutil.CreateTestUser(t, db)

		staff, err := svc.Promote(user.ID, models.RoleStaff, "Newsroom")
		testutil.AssertNoError(t, err)

		if len(staff.StaffID) != ident.StaffIDLength {
			t.Errorf("expected %d-char staff id, got %q", ident.StaffIDLength, staff.StaffID)
		}
		if staff.Department != "Newsroom" {
			t.Errorf("expected department Newsroom, got %s", staff.Department)
		}

		var reloaded models.User
		db.Where("id = ?", user.ID).First(&reloaded)
		if reloaded.Role != models.RoleStaff {
			t.Errorf("expected role staff, got %s", reloaded.Role)
		}
	})

	t.Run("already_staff", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStaffService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Promote(user.ID, models.RoleStaff, "")
		testutil.AssertNoError(t, err)

		_, err = svc.Promote(user.ID, models.RoleAdmin, "")
		testutil.AssertAppError(t, err, "ALREADY_STAFF")
	})

	t.Run("reader_role_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStaffService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Promote(user.ID, models.RoleUser, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStaffService(db)

		_, err := svc.Promote("00000000-0000-0000-0000-000000000000", models.RoleStaff, "")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("staff_id_collision_is_retryable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &staffService{db: db, newID: func() (string, error) { return "AAAA1111", nil }}
		first := testutil.CreateTestUser(t, db)
		second := testutil.CreateTestUser(t, db)

		_, err := svc.Promote(first.ID, models.RoleStaff, "")
		testutil.AssertNoError(t, err)

		_, err = svc.Promote(second.ID, models.RoleStaff, "")
		testutil.AssertAppError(t, err, "STAFF_ID_CONFLICT")
		testutil.AssertRetryable(t, err)

		var reloaded models.User
		db.Where("id = ?", second.ID).First(&reloaded)
		if reloaded.Role != models.RoleUser {
			t.Errorf("expected role change to roll back, got %s", reloaded.Role)
		}
	})
}
