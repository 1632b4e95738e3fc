package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nocodecorp/portal-api/internal/api/middleware"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/nocodecorp/portal-api/internal/service"
)

// ============================================
// Ticket Handler
// ============================================

type TicketHandler struct {
	tickets service.TicketService
}

func NewTicketHandler(tickets service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Validate checks a single intake step without creating anything, so the
// wizard can gate its Next button server-side.
// POST /api/tickets/validate
func (h *TicketHandler) Validate(c *gin.Context) {
	var req models.ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.tickets.ValidateStep(req))
}

// Create runs the full intake submission: validate both steps, derive
// priority and deadline, store the ticket against the session's client and
// forward it upstream.
// POST /api/tickets
func (h *TicketHandler) Create(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ticket, fieldErrors, err := h.tickets.Create(c.Request.Context(), sess, req)
	if err != nil {
		log.Printf("❌ [Ticket] Creation failed - Client: %s, Error: %v", sess.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationResponse{Valid: false, Errors: fieldErrors})
		return
	}

	c.JSON(http.StatusCreated, ticket)
}
