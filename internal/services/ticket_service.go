package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/ident"
	"jbcnews/internal/models"
	"jbcnews/internal/pagination"
)

// ticketService handles support tickets and their reply threads.
type ticketService struct {
	db    *gorm.DB
	newID func() (string, error)
}

// NewTicketService creates a new TicketServicer.
func NewTicketService(db *gorm.DB) TicketServicer {
	return &ticketService{db: db, newID: ident.NewTicketID}
}

// Create opens a ticket for the user. The ticket id is random and is tried
// once; a collision is returned as a retryable error for the caller to resend.
func (s *ticketService) Create(userID, subject, message string) (*models.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if userID == "" {
		return nil, apperrors.ErrAccountNotLinked
	}
	if subject == "" || message == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subject and message are required")
	}

	ticketID, err := s.newID()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ticket := &models.SupportTicket{
		UserID:   userID,
		TicketID: ticketID,
		Subject:  subject,
		Message:  message,
		Status:   models.TicketStatusOpen,
	}
	if err := s.db.Create(ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrTicketIDConflict, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ticket, nil
}

// GetByTicketID retrieves a ticket with its responses in the order they were added
func (s *ticketService) GetByTicketID(ticketID string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := s.db.
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("ticket_id = ?", strings.ToUpper(ticketID)).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ticket, nil
}

// ListForUser returns the user's most recent tickets
func (s *ticketService) ListForUser(userID string, limit int) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tickets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tickets, nil
}

// List returns tickets for support staff, optionally filtered by status
func (s *ticketService) List(status *models.TicketStatus, page pagination.PageRequest) (*pagination.PageResponse[models.SupportTicket], error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	scope := func() *gorm.DB {
		if status == nil {
			return s.db
		}
		return s.db.Where("status = ?", *status)
	}
	resp, err := pagination.Find[models.SupportTicket](scope, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// AddResponse appends a reply to an open ticket. The first reply moves the
// ticket from open to in_progress.
func (s *ticketService) AddResponse(ticketID, responderID, message string) (*models.SupportResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "message is required")
	}

	var response *models.SupportResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.SupportTicket
		if err := tx.Where("ticket_id = ?", strings.ToUpper(ticketID)).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTicketNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if ticket.Status == models.TicketStatusClosed {
			return apperrors.ErrTicketClosed
		}

		response = &models.SupportResponse{
			TicketID:    ticket.ID,
			ResponderID: responderID,
			Message:     message,
		}
		if err := tx.Create(response).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if ticket.Status == models.TicketStatusOpen {
			if err := tx.Model(&ticket).Update("status", models.TicketStatusInProgress).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// UpdateStatus moves a ticket to a new status, stamping or clearing closed_at
func (s *ticketService) UpdateStatus(ticketID string, status models.TicketStatus) (*models.SupportTicket, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	ticket, err := s.GetByTicketID(ticketID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": status, "closed_at": nil}
	if status == models.TicketStatusClosed {
		updates["closed_at"] = time.Now()
	}
	if err := s.db.Model(ticket).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetByTicketID(ticketID)
}
