package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/internal/claims"
	"github.com/worldofdc/portal-gateway/internal/guard"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/otp"
	"github.com/worldofdc/portal-gateway/internal/upstream"
	"github.com/worldofdc/portal-gateway/pkg/logger"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
	"go.uber.org/zap"
)

// AuthHandler serves every authentication surface: the citizen OTP flow,
// officer credential login and signup, profile reads and updates, logout.
type AuthHandler struct {
	client     *upstream.Client
	challenges *otp.Registry
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(client *upstream.Client, challenges *otp.Registry) *AuthHandler {
	return &AuthHandler{client: client, challenges: challenges}
}

// upstreamCtx forwards the session's bearer token to the upstream call.
func upstreamCtx(c *gin.Context) context.Context {
	token := guard.StoreFrom(c).Token()
	if token == "" {
		return c.Request.Context()
	}
	return upstream.WithToken(c.Request.Context(), token)
}

type sendOTPBody struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
	Mode         string `json:"mode,omitempty" binding:"omitempty,oneof=login register inline"`
}

// SendOTP handles POST /api/auth/send-otp. Starts (or restarts) an OTP
// challenge for the mobile number.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var body sendOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	mode := otp.Mode(body.Mode)
	if mode == "" {
		mode = otp.ModeLogin
	}

	challenge := h.challenges.Begin(mode)
	if err := challenge.Send(c.Request.Context(), body.MobileNumber); err != nil {
		if errors.Is(err, otp.ErrInvalidMobile) {
			respondError(c, http.StatusBadRequest, challenge.LastError(), err)
			return
		}
		respondUpstreamError(c, err)
		return
	}
	h.challenges.Register(challenge)

	respondMessage(c, "OTP sent successfully")
}

type verifyOTPBody struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
	OTP          string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /api/auth/verify-otp. Completes the challenge,
// establishes the cookie session, and returns the landing path.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	challenge, ok := h.challenges.Lookup(body.MobileNumber)
	if !ok {
		respondError(c, http.StatusConflict, "Please request an OTP first.", otp.ErrNotSent)
		return
	}

	store := guard.StoreFrom(c)
	redirect, err := challenge.Verify(c.Request.Context(), body.OTP, store)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrNotSent):
			respondError(c, http.StatusConflict, "Please request an OTP first.", err)
		case errors.Is(err, otp.ErrInvalidCode), errors.Is(err, otp.ErrInFlight):
			respondError(c, http.StatusBadRequest, challenge.LastError(), err)
		default:
			respondUpstreamError(c, err)
		}
		return
	}
	h.challenges.Complete(body.MobileNumber)

	user, _ := store.User()
	respondData(c, gin.H{"user": user, "redirect": redirect})
}

type resendOTPBody struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
}

// ResendOTP handles POST /api/auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var body resendOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	challenge, ok := h.challenges.Lookup(body.MobileNumber)
	if !ok {
		respondError(c, http.StatusConflict, "Please request an OTP first.", otp.ErrNotSent)
		return
	}
	if err := challenge.Resend(c.Request.Context()); err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondMessage(c, "OTP resent successfully")
}

// RegisterCitizen handles POST /api/auth/register. Completes the citizen
// profile; the session itself comes from the OTP verification.
func (h *AuthHandler) RegisterCitizen(c *gin.Context) {
	var reg models.CitizenRegistration
	if err := c.ShouldBindJSON(&reg); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := h.client.RegisterCitizen(upstreamCtx(c), reg); err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondMessage(c, "Registration successful")
}

// OfficerLogin handles POST /api/auth/officer/login. Credential login for
// approved officers; the token's claims pick the role shown until the
// profile fetch confirms it.
func (h *AuthHandler) OfficerLogin(c *gin.Context) {
	var req models.OfficerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	payload, err := h.client.OfficerLogin(c.Request.Context(), req)
	if err != nil {
		metrics.OfficerLoginTotal.WithLabelValues("error").Inc()
		respondUpstreamError(c, err)
		return
	}

	decoded := claims.Decode(payload.Token)
	user := claims.SynthesizeUser(decoded, "")
	if decoded == nil || decoded.Role == "" {
		// The token carried no role hint; an officer login still lands
		// on the dashboard until /auth/me says otherwise.
		user.Role = models.RoleOfficer
	}
	if user.EmployeeID == "" {
		user.EmployeeID = req.EmployeeID
	}
	if user.ID == "" {
		user.ID = payload.OfficerID
	}

	store := guard.StoreFrom(c)
	if err := store.SetAuth(payload.Token, user); err != nil {
		metrics.OfficerLoginTotal.WithLabelValues("session_error").Inc()
		respondError(c, http.StatusInternalServerError, "Failed to establish session.", err)
		return
	}

	metrics.OfficerLoginTotal.WithLabelValues("success").Inc()
	respondData(c, gin.H{"user": user, "redirect": user.Role.DefaultLanding()})
}

// OfficerSignup handles POST /api/auth/officer/signup. The account is
// created unapproved; login stays rejected until an admin approves it.
func (h *AuthHandler) OfficerSignup(c *gin.Context) {
	var req models.OfficerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	officerID, err := h.client.SignupOfficer(c.Request.Context(), req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respondData(c, gin.H{
		"officerId": officerID,
		"message":   "Registration submitted. Your account is pending approval.",
	})
}

// Me handles GET /api/auth/me. Returns the trusted profile from the
// backend, refreshing whatever was synthesized from claims at login.
func (h *AuthHandler) Me(c *gin.Context) {
	store := guard.StoreFrom(c)
	if !store.IsAuthenticated() {
		respondError(c, http.StatusUnauthorized, "Not authenticated.", nil)
		return
	}

	user, err := h.client.Me(upstreamCtx(c))
	if err != nil {
		// The cached profile still paints the page when the backend is down.
		var apiErr *upstream.APIError
		if cached, ok := store.User(); ok && !errors.As(err, &apiErr) {
			attachError(c, err)
			respondData(c, cached)
			return
		}
		respondUpstreamError(c, err)
		return
	}

	if err := store.SetAuth(store.Token(), *user); err != nil {
		logger.Warn("Failed to persist refreshed profile", zap.Error(err))
	}
	respondData(c, user)
}

type profileUpdateBody struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

// UpdateProfile handles PUT /api/auth/profile. Merges the partial update
// into the persisted session profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var body profileUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	store := guard.StoreFrom(c)
	if !store.IsAuthenticated() {
		respondError(c, http.StatusUnauthorized, "Not authenticated.", nil)
		return
	}
	if err := store.UpdateUser(models.UserUpdate{Name: body.Name, Email: body.Email}); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update profile.", err)
		return
	}
	user, _ := store.User()
	respondData(c, user)
}

// Refresh handles POST /api/auth/refresh. Exchanges the session token for
// a fresh one without changing the profile.
func (h *AuthHandler) Refresh(c *gin.Context) {
	store := guard.StoreFrom(c)
	if !store.IsAuthenticated() {
		respondError(c, http.StatusUnauthorized, "Not authenticated.", nil)
		return
	}

	resp, err := h.client.Refresh(upstreamCtx(c))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	user := resp.User
	if user.ID == "" {
		user, _ = store.User()
	}
	if err := store.SetAuth(resp.Token, user); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to refresh session.", err)
		return
	}
	respondData(c, gin.H{"user": user})
}

// Logout handles POST /api/auth/logout. The local session always clears;
// the upstream invalidation is best-effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	store := guard.StoreFrom(c)
	if token := store.Token(); token != "" {
		if err := h.client.Logout(upstream.WithToken(c.Request.Context(), token)); err != nil {
			logger.Warn("Upstream logout failed, clearing local session anyway", zap.Error(err))
		}
	}
	store.Logout()
	respondMessage(c, "Logged out")
}
