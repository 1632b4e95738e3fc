package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nocodecorp/portal-api/internal/api/middleware"
	"github.com/nocodecorp/portal-api/internal/service"
)

type DashboardHandler struct {
	resolution service.ResolutionService
}

func NewDashboardHandler(resolution service.ResolutionService) *DashboardHandler {
	return &DashboardHandler{resolution: resolution}
}

// Get returns the client's projects and tickets, tickets annotated with
// lateness and days remaining.
// GET /api/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	sess, ok := middleware.RequireSession(c)
	if !ok {
		return
	}

	dashboard, err := h.resolution.Dashboard(sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
