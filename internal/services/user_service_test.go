package services

import (
	"testing"

	"jbcnews/internal/models"
	"jbcnews/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestRegisterFromChat(t *testing.T) {
	t.Run("creates_user_and_links_session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		country := testutil.CreateTestCountry(t, db, "IN")
		session := testutil.CreateTestSession(t, db, nil)

		user, err := svc.RegisterFromChat(RegistrationInput{
			ChatID:       session.ChatID,
			TelegramID:   session.ChatID,
			Username:     "alice",
			Email:        "Alice@Example.com",
			PasswordHash: hashPassword(t, "s3cretpass"),
			Phone:        "+911234567890",
			Location:     "Delhi",
			CountryID:    country.ID,
		})
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be set")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Role != models.RoleUser {
			t.Errorf("expected role user, got %s", user.Role)
		}
		if user.CountryID == nil || *user.CountryID != country.ID {
			t.Errorf("expected country %s, got %v", country.ID, user.CountryID)
		}

		var updated models.ChatSession
		if err := db.Where("chat_id = ?", session.ChatID).First(&updated).Error; err != nil {
			t.Fatalf("failed to reload session: %v", err)
		}
		if !updated.Registered {
			t.Error("expected session to be registered")
		}
		if updated.UserID == nil || *updated.UserID != user.ID {
			t.Errorf("expected session linked to %s, got %v", user.ID, updated.UserID)
		}
		if updated.Step != "" || string(updated.Draft) != "{}" {
			t.Errorf("expected cleared flow, got step=%q draft=%s", updated.Step, updated.Draft)
		}
	})

	t.Run("duplicate_username_leaves_session_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		existing := testutil.CreateTestUser(t, db)
		session := testutil.CreateTestSession(t, db, nil)

		_, err := svc.RegisterFromChat(RegistrationInput{
			ChatID:       session.ChatID,
			Username:     existing.Username,
			Email:        "fresh@example.com",
			PasswordHash: hashPassword(t, "s3cretpass"),
		})
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")

		var reloaded models.ChatSession
		db.Where("chat_id = ?", session.ChatID).First(&reloaded)
		if reloaded.Registered || reloaded.UserID != nil {
			t.Error("expected session to stay unlinked")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		existing := testutil.CreateTestUser(t, db)
		session := testutil.CreateTestSession(t, db, nil)

		_, err := svc.RegisterFromChat(RegistrationInput{
			ChatID:       session.ChatID,
			Username:     "brandnew",
			Email:        existing.Email,
			PasswordHash: hashPassword(t, "s3cretpass"),
		})
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_session_rolls_back_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.RegisterFromChat(RegistrationInput{
			ChatID:       424242,
			Username:     "orphan",
			Email:        "orphan@example.com",
			PasswordHash: hashPassword(t, "s3cretpass"),
		})
		testutil.AssertAppError(t, err, "SESSION_NOT_FOUND")

		taken, err := svc.UsernameTaken("orphan")
		testutil.AssertNoError(t, err)
		if taken {
			t.Error("expected user creation to be rolled back")
		}
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.RegisterFromChat(RegistrationInput{ChatID: 1, Username: "someone"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUsernameTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	t.Run("exact_match", func(t *testing.T) {
		taken, err := svc.UsernameTaken(user.Username)
		testutil.AssertNoError(t, err)
		if !taken {
			t.Error("expected username to be taken")
		}
	})

	t.Run("case_sensitive", func(t *testing.T) {
		taken, err := svc.UsernameTaken("USER" + user.Username[4:])
		testutil.AssertNoError(t, err)
		if taken {
			t.Error("expected differently cased username to be free")
		}
	})

	t.Run("email_is_case_insensitive", func(t *testing.T) {
		taken, err := svc.EmailTaken("USER" + user.Email[4:])
		testutil.AssertNoError(t, err)
		if !taken {
			t.Error("expected email to be taken regardless of case")
		}
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		got, err := svc.AttemptLogin(user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
		if got.LastLoginAt == nil {
			t.Error("expected last login time to be recorded")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.AttemptLogin(user.Email, "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("found_with_country", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		country := testutil.CreateTestCountry(t, db, "PK")
		user := testutil.CreateTestUserWithRole(t, db, models.RoleUser, &country.ID)

		got, err := svc.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if got.Country == nil || got.Country.Code != "PK" {
			t.Errorf("expected preloaded country PK, got %+v", got.Country)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByID("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
