package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jbcnews/internal/models"
	"jbcnews/internal/pagination"
	"jbcnews/internal/services"
)

// TicketHandler handles support ticket requests from staff
type TicketHandler struct {
	ticketService services.TicketServicer
	auditService  services.AuditServicer
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService services.TicketServicer, auditService services.AuditServicer) *TicketHandler {
	return &TicketHandler{ticketService: ticketService, auditService: auditService}
}

// ListTicketsQuery holds the filters of the ticket listing
type ListTicketsQuery struct {
	Status string `form:"status" binding:"omitempty,ticket_status"`
}

// AddResponseRequest represents the request payload for replying to a ticket
type AddResponseRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// UpdateStatusRequest represents the request payload for changing a ticket's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,ticket_status"`
}

// ListTickets returns support tickets, newest first
// @Summary     List tickets
// @Description List support tickets, optionally filtered by status
// @Tags        tickets
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "open, in_progress or closed"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.SupportTicket] "Tickets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	var query ListTicketsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	var status *models.TicketStatus
	if query.Status != "" {
		s := models.TicketStatus(query.Status)
		status = &s
	}

	tickets, err := h.ticketService.List(status, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GetTicket returns a ticket with its reply thread
// @Summary     Get ticket
// @Description Get a support ticket by its TKT id, with responses oldest first
// @Tags        tickets
// @Produce     json
// @Security    BearerAuth
// @Param       ticket_id path string true "Ticket ID, TKT followed by 6 characters"
// @Success     200 {object} models.SupportTicket "Ticket"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /tickets/{ticket_id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.ticketService.GetByTicketID(c.Param("ticket_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// AddResponse appends a staff reply to a ticket
// @Summary     Reply to ticket
// @Description Append a response to a ticket's thread. Closed tickets are refused.
// @Tags        tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ticket_id path string true "Ticket ID"
// @Param       request body AddResponseRequest true "Reply"
// @Success     201 {object} models.SupportResponse "Created response"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Ticket closed"
// @Router      /tickets/{ticket_id}/responses [post]
func (h *TicketHandler) AddResponse(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	ticketID := c.Param("ticket_id")
	response, err := h.ticketService.AddResponse(ticketID, userID, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditTicketResponse, "ticket", ticketID, c.ClientIP(),
		map[string]any{"response_id": response.ID})

	c.JSON(http.StatusCreated, gin.H{"response": response})
}

// UpdateStatus moves a ticket to another status
// @Summary     Update ticket status
// @Description Set a ticket's status. Closing records the close time; reopening clears it.
// @Tags        tickets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ticket_id path string true "Ticket ID"
// @Param       request body UpdateStatusRequest true "New status"
// @Success     200 {object} models.SupportTicket "Updated ticket"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /tickets/{ticket_id}/status [patch]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	ticketID := c.Param("ticket_id")
	ticket, err := h.ticketService.UpdateStatus(ticketID, models.TicketStatus(req.Status))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditTicketStatus, "ticket", ticketID, c.ClientIP(),
		map[string]any{"status": ticket.Status})

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
