package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/upstream"
)

// ComplaintHandler proxies grievance filing and tracking. The backend
// scopes results by the bearer token: citizens see their own complaints,
// officers see their assignments.
type ComplaintHandler struct {
	client *upstream.Client
}

// NewComplaintHandler creates a ComplaintHandler.
func NewComplaintHandler(client *upstream.Client) *ComplaintHandler {
	return &ComplaintHandler{client: client}
}

// List handles GET /api/complaints.
func (h *ComplaintHandler) List(c *gin.Context) {
	complaints, err := h.client.ListComplaints(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, complaints)
}

// ByID handles GET /api/complaints/:id.
func (h *ComplaintHandler) ByID(c *gin.Context) {
	complaint, err := h.client.ComplaintByID(upstreamCtx(c), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, complaint)
}

// Create handles POST /api/complaints.
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req models.ComplaintCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	complaint, err := h.client.CreateComplaint(upstreamCtx(c), req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, complaint)
}

// Update handles PUT /api/complaints/:id.
func (h *ComplaintHandler) Update(c *gin.Context) {
	var req models.ComplaintUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	complaint, err := h.client.UpdateComplaint(upstreamCtx(c), c.Param("id"), req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, complaint)
}
