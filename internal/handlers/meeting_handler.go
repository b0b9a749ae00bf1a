package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/upstream"
)

// MeetingHandler proxies meeting scheduling and listing.
type MeetingHandler struct {
	client *upstream.Client
}

// NewMeetingHandler creates a MeetingHandler.
func NewMeetingHandler(client *upstream.Client) *MeetingHandler {
	return &MeetingHandler{client: client}
}

// Create handles POST /api/dashboard/meetings.
func (h *MeetingHandler) Create(c *gin.Context) {
	var req models.MeetingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	meeting, err := h.client.CreateMeeting(upstreamCtx(c), req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, meeting)
}

// My handles GET /api/dashboard/meetings/my.
func (h *MeetingHandler) My(c *gin.Context) {
	meetings, err := h.client.MyMeetings(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, meetings)
}

// Upcoming handles GET /api/dashboard/meetings/upcoming.
func (h *MeetingHandler) Upcoming(c *gin.Context) {
	meetings, err := h.client.UpcomingMeetings(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, meetings)
}

// All handles GET /api/dashboard/meetings.
func (h *MeetingHandler) All(c *gin.Context) {
	meetings, err := h.client.AllMeetings(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, meetings)
}

// ByID handles GET /api/dashboard/meetings/:id.
func (h *MeetingHandler) ByID(c *gin.Context) {
	meeting, err := h.client.MeetingByID(upstreamCtx(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, meeting)
}
