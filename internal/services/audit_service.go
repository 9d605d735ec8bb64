package services

import (
	"encoding/json"

	"jbcnews/internal/logger"
	"jbcnews/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions recorded for staff operations.
const (
	AuditPublish        = "publish"
	AuditUnpublish      = "unpublish"
	AuditBreakingPush   = "breaking_push"
	AuditTranslate      = "translate"
	AuditCreateArticle  = "create_article"
	AuditTicketResponse = "ticket_response"
	AuditTicketStatus   = "ticket_status"
	AuditPromoteStaff   = "promote_staff"
	AuditIngest         = "ingest"
)

// SystemActorID is recorded as the user of audit entries made by machine clients.
const SystemActorID = "00000000-0000-0000-0000-000000000000"

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	changesJSON := datatypes.JSON("{}")
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
		} else {
			changesJSON = datatypes.JSON(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
