// Package otp drives the mobile OTP challenge: number entry, code send,
// verification, session establishment. One Challenge exists per login
// attempt and is discarded on success or abandonment.
package otp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/worldofdc/portal-gateway/internal/claims"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/session"
	"github.com/worldofdc/portal-gateway/internal/upstream"
	"github.com/worldofdc/portal-gateway/pkg/logger"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
	"go.uber.org/zap"
)

// State of a challenge. Verification is only reachable from StateSent;
// a failed verification returns to StateSent so the citizen can retry
// without requesting a new code.
type State string

const (
	StateIdle          State = "idle"
	StateSending       State = "sending"
	StateSent          State = "sent"
	StateVerifying     State = "verifying"
	StateAuthenticated State = "authenticated"
)

// Mode selects only the terminal navigation, never the challenge mechanics.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
	ModeInline   Mode = "inline"
)

var (
	ErrInFlight      = errors.New("another OTP request is in flight")
	ErrNotSent       = errors.New("no OTP has been sent for this challenge")
	ErrInvalidMobile = errors.New("invalid mobile number")
	ErrInvalidCode   = errors.New("invalid OTP code")
	ErrNoToken       = errors.New("verification succeeded without a token")
)

// User-facing fallback messages when the server supplies none.
const (
	msgInvalidMobile = "Please enter a valid 10-digit mobile number."
	msgShortCode     = "Please enter the OTP you received."
	msgSendFailed    = "Failed to send OTP."
	msgVerifyFailed  = "OTP verification failed."
)

// CitizenAPI is the slice of the upstream client the challenge needs.
type CitizenAPI interface {
	SendOTP(ctx context.Context, mobileNumber string) error
	VerifyOTP(ctx context.Context, mobileNumber, otp string) (*models.TokenPayload, error)
}

// Challenge is the per-attempt state machine.
type Challenge struct {
	mu     sync.Mutex
	mode   Mode
	client CitizenAPI

	state    State
	mobile   string
	lastErr  string
	inFlight bool
}

// NewChallenge starts a fresh challenge in StateIdle.
func NewChallenge(mode Mode, client CitizenAPI) *Challenge {
	return &Challenge{mode: mode, client: client, state: StateIdle}
}

// Send validates the mobile number client-side, then requests an OTP.
// Validation failures never reach the network; they are a UX guard, the
// backend remains the authority on number format.
func (c *Challenge) Send(ctx context.Context, mobileNumber string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrInFlight
	}
	if !validMobile(mobileNumber) {
		c.lastErr = msgInvalidMobile
		c.mu.Unlock()
		metrics.OTPSendTotal.WithLabelValues("invalid_mobile").Inc()
		return ErrInvalidMobile
	}
	c.inFlight = true
	c.state = StateSending
	c.mu.Unlock()

	err := c.client.SendOTP(ctx, mobileNumber)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.state = StateIdle
		c.lastErr = userMessage(err, msgSendFailed)
		metrics.OTPSendTotal.WithLabelValues("error").Inc()
		return err
	}
	c.mobile = mobileNumber
	c.state = StateSent
	c.lastErr = ""
	metrics.OTPSendTotal.WithLabelValues("success").Inc()
	return nil
}

// Verify exchanges the entered code for a session. Requires StateSent.
// On success it decodes the token's claims, synthesizes the minimal
// profile, establishes the session in sessions, and returns the redirect
// path for the challenge's mode. On failure the challenge stays in
// StateSent so the code can be retried.
func (c *Challenge) Verify(ctx context.Context, code string, sessions *session.Store) (string, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return "", ErrInFlight
	}
	if c.state != StateSent {
		c.mu.Unlock()
		metrics.OTPVerifyTotal.WithLabelValues("not_sent").Inc()
		return "", ErrNotSent
	}
	if len(strings.TrimSpace(code)) < 4 {
		c.lastErr = msgShortCode
		c.mu.Unlock()
		metrics.OTPVerifyTotal.WithLabelValues("invalid_code").Inc()
		return "", ErrInvalidCode
	}
	c.inFlight = true
	c.state = StateVerifying
	mobile := c.mobile
	c.mu.Unlock()

	payload, err := c.client.VerifyOTP(ctx, mobile, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.state = StateSent
		c.lastErr = userMessage(err, msgVerifyFailed)
		metrics.OTPVerifyTotal.WithLabelValues("error").Inc()
		return "", err
	}
	if payload == nil || payload.Token == "" {
		c.state = StateSent
		c.lastErr = msgVerifyFailed
		metrics.OTPVerifyTotal.WithLabelValues("no_token").Inc()
		return "", ErrNoToken
	}

	// A malformed payload is not fatal: the citizen gets a thin profile
	// now and the full-profile fetch fills the gaps later.
	decoded := claims.Decode(payload.Token)
	if decoded == nil {
		logger.Warn("OTP token payload undecodable, synthesizing default profile",
			zap.String("mobile", mobile))
	}
	user := claims.SynthesizeUser(decoded, mobile)

	if err := sessions.SetAuth(payload.Token, user); err != nil {
		c.state = StateSent
		c.lastErr = msgVerifyFailed
		metrics.OTPVerifyTotal.WithLabelValues("session_error").Inc()
		return "", err
	}

	c.state = StateAuthenticated
	c.lastErr = ""
	metrics.OTPVerifyTotal.WithLabelValues("success").Inc()
	return c.redirectLocked(user.Role), nil
}

// Resend requests a fresh code for the challenge's mobile number without
// resetting any other challenge state. Safe to call repeatedly; the
// in-flight latch covers overlap.
func (c *Challenge) Resend(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrInFlight
	}
	if c.mobile == "" {
		c.mu.Unlock()
		return ErrNotSent
	}
	c.inFlight = true
	mobile := c.mobile
	c.mu.Unlock()

	err := c.client.SendOTP(ctx, mobile)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.lastErr = userMessage(err, msgSendFailed)
		metrics.OTPSendTotal.WithLabelValues("resend_error").Inc()
		return err
	}
	c.state = StateSent
	c.lastErr = ""
	metrics.OTPSendTotal.WithLabelValues("resend").Inc()
	return nil
}

// State returns the current machine state.
func (c *Challenge) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mobile returns the challenged number once a code has been sent.
func (c *Challenge) Mobile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mobile
}

// LastError returns the human-readable message for the last failure,
// empty after any success.
func (c *Challenge) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Mode returns the challenge's flow mode.
func (c *Challenge) Mode() Mode {
	return c.mode
}

func (c *Challenge) redirectLocked(role models.Role) string {
	if c.mode == ModeInline {
		// Inline call sites stay where they are.
		return ""
	}
	return role.DefaultLanding()
}

func validMobile(mobile string) bool {
	if len(mobile) != 10 {
		return false
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// userMessage prefers the server's message, falling back to a generic one.
func userMessage(err error, fallback string) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
