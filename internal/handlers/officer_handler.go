package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/internal/directory"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/upstream"
)

// OfficerHandler serves officer administration and the directory search.
type OfficerHandler struct {
	client    *upstream.Client
	directory *directory.Cached
}

// NewOfficerHandler creates an OfficerHandler.
func NewOfficerHandler(client *upstream.Client, dir *directory.Cached) *OfficerHandler {
	return &OfficerHandler{client: client, directory: dir}
}

// Pending handles GET /api/dashboard/officers/pending.
func (h *OfficerHandler) Pending(c *gin.Context) {
	officers, err := h.client.PendingOfficers(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, officers)
}

// Approve handles POST /api/dashboard/officers/:id/approve.
func (h *OfficerHandler) Approve(c *gin.Context) {
	var req models.OfficerApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := h.client.ApproveOfficer(upstreamCtx(c), c.Param("id"), req); err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondMessage(c, "Officer approved")
}

// Reject handles POST /api/dashboard/officers/:id/reject.
func (h *OfficerHandler) Reject(c *gin.Context) {
	var req models.OfficerRejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := h.client.RejectOfficer(upstreamCtx(c), c.Param("id"), req); err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondMessage(c, "Officer rejected")
}

// Search handles GET /api/dashboard/officers?search=. Repeated queries
// are served from the directory cache.
func (h *OfficerHandler) Search(c *gin.Context) {
	officers, err := h.directory.Search(upstreamCtx(c), c.Query("search"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, officers)
}
