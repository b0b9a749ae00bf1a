package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/internal/upstream"
)

// attachError attaches err to the gin context so the observability
// middleware can include the reason in the request log. c.Error() returns
// *gin.Error, so errcheck is suppressed intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends the portal's error envelope and records err for the
// request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondUpstreamError translates an upstream failure. Server-reported
// failures pass through with their status and message verbatim; transport
// failures collapse to a generic 502 so internals never leak.
func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		respondError(c, status, apiErr.Message, err)
		return
	}
	respondError(c, http.StatusBadGateway, "Service temporarily unavailable. Please try again.", err)
}

// respondData sends the portal's success envelope.
func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondMessage sends a data-free success acknowledgement.
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
