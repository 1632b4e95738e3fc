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
// Session Handler
// ============================================

type SessionHandler struct {
	resolution service.ResolutionService
}

func NewSessionHandler(resolution service.ResolutionService) *SessionHandler {
	return &SessionHandler{resolution: resolution}
}

// Create resolves an identity (clientId wins over email) and opens a session.
// POST /api/session
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ClientID == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId or email required"})
		return
	}

	res, err := h.resolution.Resolve(c.Request.Context(), req.ClientID, req.Email)
	if err != nil {
		log.Printf("❌ [Session] Resolution failed - ClientID: %s, Email: %s, Error: %v", req.ClientID, req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve client"})
		return
	}

	if res.State != service.StateAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No client found for the provided identity"})
		return
	}

	log.Printf("✅ [Session] Session opened - Client: %s (%s)", res.Client.Name, res.Client.ID)
	c.JSON(http.StatusCreated, models.SessionResponse{Token: res.Token, Client: res.Client})
}

// Get resolves the current session back into a client record.
// GET /api/session
func (h *SessionHandler) Get(c *gin.Context) {
	if _, ok := middleware.RequireSession(c); !ok {
		return
	}

	res, err := h.resolution.ResolveSession(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}
	if res.State != service.StateAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{Token: res.Token, Client: res.Client})
}

// Refresh re-resolves the session against the upstream source, picking up
// backend-side changes. Called when a browser tab regains visibility.
// POST /api/session/refresh
func (h *SessionHandler) Refresh(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	res, err := h.resolution.Refresh(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		log.Printf("❌ [Session] Refresh failed - Client: %s, Error: %v", sess.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh session"})
		return
	}
	if res.State != service.StateAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{Token: res.Token, Client: res.Client})
}

// Delete logs the session out and drops its cached snapshot.
// DELETE /api/session
func (h *SessionHandler) Delete(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	if err := h.resolution.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	log.Printf("✅ [Session] Logged out - Client: %s", sess.ClientID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
