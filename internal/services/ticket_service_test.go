package services

import (
	"testing"

	"jbcnews/internal/ident"
	"jbcnews/internal/models"
	"jbcnews/internal/pagination"
	"jbcnews/internal/testutil"
)

func TestCreateTicket(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)
		user := testutil.CreateTestUser(t, db)

		ticket, err := svc.Create(user.ID, " Login issue ", "I cannot log in")
		testutil.AssertNoError(t, err)

		if !ident.IsTicketID(ticket.TicketID) {
			t.Errorf("expected TKT-XXXXXX ticket id, got %q", ticket.TicketID)
		}
		if ticket.Subject != "Login issue" {
			t.Errorf("expected trimmed subject, got %q", ticket.Subject)
		}
		if ticket.Status != models.TicketStatusOpen {
			t.Errorf("expected open status, got %s", ticket.Status)
		}
	})

	t.Run("id_collision_is_retryable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := &ticketService{db: db, newID: func() (string, error) { return "TKT-ABC123", nil }}
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Create(user.ID, "First", "first message")
		testutil.AssertNoError(t, err)

		_, err = svc.Create(user.ID, "Second", "second message")
		testutil.AssertAppError(t, err, "TICKET_ID_CONFLICT")
		testutil.AssertRetryable(t, err)
	})

	t.Run("unlinked_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)

		_, err := svc.Create("", "Subject", "Message")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_LINKED")
	})

	t.Run("empty_description", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Create(user.ID, "Subject", "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTicketService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for i := 0; i < 6; i++ {
		testutil.CreateTestTicket(t, db, user.ID)
	}
	testutil.CreateTestTicket(t, db, other.ID)

	tickets, err := svc.ListForUser(user.ID, 5)
	testutil.AssertNoError(t, err)
	if len(tickets) != 5 {
		t.Fatalf("expected 5 tickets, got %d", len(tickets))
	}
	for _, tk := range tickets {
		if tk.UserID != user.ID {
			t.Errorf("expected only the user's tickets, got one for %s", tk.UserID)
		}
	}
}

func TestAddResponse(t *testing.T) {
	t.Run("appends_and_moves_to_in_progress", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)
		user := testutil.CreateTestUser(t, db)
		agent := testutil.CreateTestUserWithRole(t, db, models.RoleStaff, nil)
		ticket := testutil.CreateTestTicket(t, db, user.ID)

		_, err := svc.AddResponse(ticket.TicketID, agent.ID, "Looking into it")
		testutil.AssertNoError(t, err)
		_, err = svc.AddResponse(ticket.TicketID, agent.ID, "Fixed now")
		testutil.AssertNoError(t, err)

		got, err := svc.GetByTicketID(ticket.TicketID)
		testutil.AssertNoError(t, err)
		if got.Status != models.TicketStatusInProgress {
			t.Errorf("expected in_progress, got %s", got.Status)
		}
		if len(got.Responses) != 2 {
			t.Fatalf("expected 2 responses, got %d", len(got.Responses))
		}
		if got.Responses[0].Message != "Looking into it" {
			t.Errorf("expected responses in insertion order, got %q first", got.Responses[0].Message)
		}
	})

	t.Run("closed_ticket", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)
		user := testutil.CreateTestUser(t, db)
		ticket := testutil.CreateTestTicket(t, db, user.ID)

		_, err := svc.UpdateStatus(ticket.TicketID, models.TicketStatusClosed)
		testutil.AssertNoError(t, err)

		_, err = svc.AddResponse(ticket.TicketID, user.ID, "one more thing")
		testutil.AssertAppError(t, err, "TICKET_CLOSED")
	})

	t.Run("unknown_ticket", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)

		_, err := svc.AddResponse("TKT-NOPE00", "someone", "hello")
		testutil.AssertAppError(t, err, "TICKET_NOT_FOUND")
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("close_and_reopen", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)
		user := testutil.CreateTestUser(t, db)
		ticket := testutil.CreateTestTicket(t, db, user.ID)

		closed, err := svc.UpdateStatus(ticket.TicketID, models.TicketStatusClosed)
		testutil.AssertNoError(t, err)
		if closed.ClosedAt == nil {
			t.Error("expected closed_at to be stamped")
		}

		reopened, err := svc.UpdateStatus(ticket.TicketID, models.TicketStatusOpen)
		testutil.AssertNoError(t, err)
		if reopened.ClosedAt != nil {
			t.Error("expected closed_at to be cleared on reopen")
		}
	})

	t.Run("invalid_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTicketService(db)

		_, err := svc.UpdateStatus("TKT-ANY000", models.TicketStatus("resolved"))
		testutil.AssertAppError(t, err, "INVALID_TICKET_STATUS")
	})
}

func TestListTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTicketService(db)
	user := testutil.CreateTestUser(t, db)
	first := testutil.CreateTestTicket(t, db, user.ID)
	testutil.CreateTestTicket(t, db, user.ID)
	_, err := svc.UpdateStatus(first.TicketID, models.TicketStatusClosed)
	testutil.AssertNoError(t, err)

	open := models.TicketStatusOpen
	resp, err := svc.List(&open, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if resp.TotalItems != 1 {
		t.Errorf("expected 1 open ticket, got %d", resp.TotalItems)
	}

	all, err := svc.List(nil, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if all.TotalItems != 2 {
		t.Errorf("expected 2 tickets, got %d", all.TotalItems)
	}
}
