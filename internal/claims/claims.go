// Package claims extracts display hints from the payload of a bearer token.
//
// Nothing here verifies a signature. The decoded values exist so the UI can
// paint a name and pick a landing page without an extra round trip; every
// authorization decision that matters is re-validated by the backend. Treat
// a Claims value as a hint, never as a verified identity.
package claims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/worldofdc/portal-gateway/internal/models"
)

// Claims is the subset of token payload fields the portal reads.
type Claims struct {
	Subject    string
	CitizenID  string
	EmployeeID string
	Role       string
	Email      string
	Name       string
}

// Decode parses the payload segment of a three-part token without verifying
// its signature. Returns nil on any malformation; it never panics and never
// returns an error, degrading to "no claims available".
func Decode(token string) *Claims {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	return &Claims{
		Subject:    stringClaim(payload, "sub"),
		CitizenID:  stringClaim(payload, "citizenId"),
		EmployeeID: stringClaim(payload, "employeeId"),
		Role:       stringClaim(payload, "role"),
		Email:      stringClaim(payload, "email"),
		Name:       stringClaim(payload, "name"),
	}
}

// SynthesizeUser builds the minimal profile used right after OTP
// verification, before the full profile fetch fills the gaps. Fallback
// order per field: claim value, then empty string; the role defaults to
// CITIZEN when the payload carries none.
func SynthesizeUser(c *Claims, mobileNumber string) models.User {
	now := time.Now().UTC().Format(time.RFC3339)
	user := models.User{
		Role:         models.RoleCitizen,
		MobileNumber: mobileNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c == nil {
		return user
	}

	user.ID = c.Subject
	if user.ID == "" {
		user.ID = c.CitizenID
	}
	user.Name = c.Name
	user.Email = c.Email
	user.EmployeeID = c.EmployeeID
	if c.Role != "" {
		user.Role = models.Role(c.Role)
	}
	return user
}

func stringClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
