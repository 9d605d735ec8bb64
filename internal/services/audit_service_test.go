package services

import (
	"encoding/json"
	"testing"

	"jbcnews/internal/models"
	"jbcnews/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		staff := testutil.CreateTestUserWithRole(t, db, models.RoleStaff, nil)

		svc.Log(staff.ID, AuditPublish, "news", "article-1", "", map[string]any{"is_published": true})

		var entry models.AuditLog
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Action != AuditPublish || entry.ResourceID != "article-1" {
			t.Errorf("unexpected entry %+v", entry)
		}
		var changes map[string]any
		if err := json.Unmarshal(entry.Changes, &changes); err != nil {
			t.Fatalf("failed to decode changes: %v", err)
		}
		if changes["is_published"] != true {
			t.Errorf("expected is_published change, got %v", changes)
		}
	})

	t.Run("nil_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)

		svc.Log("user-1", AuditIngest, "pipeline", "", "127.0.0.1", nil)

		var entry models.AuditLog
		if err := db.First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if string(entry.Changes) != "{}" {
			t.Errorf("expected empty changes object, got %s", entry.Changes)
		}
	})
}

func TestStatsSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatsService(db)

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestNews(t, db, nil, nil)
	hidden := testutil.CreateTestNews(t, db, nil, nil)
	db.Model(hidden).Update("is_published", false)
	testutil.CreateTestTicket(t, db, user.ID)
	closed := testutil.CreateTestTicket(t, db, user.ID)
	db.Model(closed).Update("status", models.TicketStatusClosed)

	stats, err := svc.Snapshot()
	testutil.AssertNoError(t, err)

	if stats.Users != 1 {
		t.Errorf("expected 1 user, got %d", stats.Users)
	}
	if stats.Articles != 2 || stats.Published != 1 {
		t.Errorf("expected 2 articles with 1 published, got %d/%d", stats.Articles, stats.Published)
	}
	if stats.OpenTickets != 1 {
		t.Errorf("expected 1 open ticket, got %d", stats.OpenTickets)
	}
}
