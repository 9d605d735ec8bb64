package services

import (
	"encoding/json"
	"testing"

	"jbcnews/internal/models"
	"jbcnews/internal/testutil"
)

func TestEnsureSession(t *testing.T) {
	t.Run("creates_on_first_contact", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)

		session, err := svc.Ensure(555)
		testutil.AssertNoError(t, err)
		if session.ChatID != 555 || session.Registered {
			t.Errorf("expected new unregistered session, got %+v", session)
		}
		if !session.IsActive {
			t.Error("expected new session to be subscribed")
		}
	})

	t.Run("returns_existing_with_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSessionService(db)
		country := testutil.CreateTestCountry(t, db, "SA")
		user := testutil.CreateTestUserWithRole(t, db, models.RoleUser, &country.ID)
		existing := testutil.CreateTestSession(t, db, user)

		session, err := svc.Ensure(existing.ChatID)
		testutil.AssertNoError(t, err)
		if session.ID != existing.ID {
			t.Errorf("expected session %s, got %s", existing.ID, session.ID)
		}
		if session.User == nil || session.User.Country == nil || session.User.Country.Code != "SA" {
			t.Errorf("expected preloaded user country, got %+v", session.User)
		}
		if session.LastSeenAt == nil {
			t.Error("expected last_seen_at to be set")
		}

		var count int64
		db.Model(&models.ChatSession{}).Count(&count)
		if count != 1 {
			t.Errorf("expected a single session row, got %d", count)
		}
	})
}

func TestSaveStep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSessionService(db)
	session := testutil.CreateTestSession(t, db, nil)

	t.Run("stores_draft", func(t *testing.T) {
		err := svc.SaveStep(session.ChatID, "ticket", "collect_description", map[string]string{"subject": "Help"})
		testutil.AssertNoError(t, err)

		got, err := svc.Get(session.ChatID)
		testutil.AssertNoError(t, err)
		if !got.InFlow("ticket") || got.Step != "collect_description" {
			t.Errorf("expected ticket flow at collect_description, got %s/%s", got.Flow, got.Step)
		}
		var draft map[string]string
		if err := json.Unmarshal(got.Draft, &draft); err != nil {
			t.Fatalf("failed to decode draft: %v", err)
		}
		if draft["subject"] != "Help" {
			t.Errorf("expected subject Help, got %q", draft["subject"])
		}
	})

	t.Run("clear_flow", func(t *testing.T) {
		testutil.AssertNoError(t, svc.ClearFlow(session.ChatID))

		got, err := svc.Get(session.ChatID)
		testutil.AssertNoError(t, err)
		if got.InFlow("ticket") || string(got.Draft) != "{}" {
			t.Errorf("expected cleared session, got flow=%q draft=%s", got.Flow, got.Draft)
		}
	})

	t.Run("unknown_chat", func(t *testing.T) {
		err := svc.SaveStep(1, "ticket", "collect_subject", nil)
		testutil.AssertAppError(t, err, "SESSION_NOT_FOUND")
	})
}

func TestRecipients(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSessionService(db)

	active := testutil.CreateTestSession(t, db, testutil.CreateTestUser(t, db))
	unsubscribed := testutil.CreateTestSession(t, db, testutil.CreateTestUser(t, db))
	testutil.AssertNoError(t, svc.SetActive(unsubscribed.ChatID, false))
	testutil.CreateTestSession(t, db, nil)

	disabledUser := testutil.CreateTestUser(t, db)
	db.Model(disabledUser).Update("is_active", false)
	testutil.CreateTestSession(t, db, disabledUser)

	recipients, err := svc.Recipients()
	testutil.AssertNoError(t, err)
	if len(recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(recipients))
	}
	if recipients[0].ChatID != active.ChatID {
		t.Errorf("expected chat %d, got %d", active.ChatID, recipients[0].ChatID)
	}
}
