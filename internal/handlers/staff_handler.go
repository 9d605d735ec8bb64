package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

// StaffHandler handles staff account management
type StaffHandler struct {
	staffService services.StaffServicer
	auditService services.AuditServicer
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService services.StaffServicer, auditService services.AuditServicer) *StaffHandler {
	return &StaffHandler{staffService: staffService, auditService: auditService}
}

// PromoteRequest represents the request payload for promoting a user to staff
type PromoteRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	Role       string `json:"role" binding:"required,staff_role"`
	Department string `json:"department" binding:"max=100"`
}

// Promote gives an existing user a staff profile
// @Summary     Promote user
// @Description Give a user the staff or admin role and allocate an 8 character staff id
// @Tags        staff
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PromoteRequest true "Promotion"
// @Success     201 {object} models.Staff "Staff profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admins only"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Already staff"
// @Router      /staff [post]
func (h *StaffHandler) Promote(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	staff, err := h.staffService.Promote(req.UserID, models.Role(req.Role), req.Department)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, services.AuditPromoteStaff, "user", req.UserID, c.ClientIP(),
		map[string]any{"role": req.Role, "staff_id": staff.StaffID, "department": req.Department})

	c.JSON(http.StatusCreated, gin.H{"staff": staff})
}
