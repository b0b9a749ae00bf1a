package otp_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/otp"
	"github.com/worldofdc/portal-gateway/internal/session"
	"github.com/worldofdc/portal-gateway/internal/upstream"
)

// fakeCitizenAPI scripts the upstream without any network.
type fakeCitizenAPI struct {
	mu          sync.Mutex
	sendCalls   int
	verifyCalls int
	sendErr     error
	verifyErr   error
	token       string

	// optional gates to hold a call open for latch tests
	sendStarted chan struct{}
	sendRelease chan struct{}
}

func (f *fakeCitizenAPI) SendOTP(ctx context.Context, mobile string) error {
	f.mu.Lock()
	f.sendCalls++
	started, release := f.sendStarted, f.sendRelease
	f.mu.Unlock()
	if started != nil {
		close(started)
		<-release
	}
	return f.sendErr
}

func (f *fakeCitizenAPI) VerifyOTP(ctx context.Context, mobile, code string) (*models.TokenPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &models.TokenPayload{Token: f.token}, nil
}

func (f *fakeCitizenAPI) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls, f.verifyCalls
}

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	raw, err := json.Marshal(claims)
	require.NoError(t, err)
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return header + "." + payload + ".sig"
}

func newSessionStore() *session.Store {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	store.Load()
	return store
}

func TestVerifyRequiresSentCode(t *testing.T) {
	api := &fakeCitizenAPI{token: "x.y.z"}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	_, err := ch.Verify(context.Background(), "1234", newSessionStore())
	assert.ErrorIs(t, err, otp.ErrNotSent)

	_, verifies := api.calls()
	assert.Zero(t, verifies, "verify must never reach the network before a code is sent")
}

func TestSendThenVerifyEstablishesSession(t *testing.T) {
	api := &fakeCitizenAPI{token: makeToken(t, map[string]any{"sub": "c1", "role": "CITIZEN"})}
	ch := otp.NewChallenge(otp.ModeLogin, api)
	store := newSessionStore()

	require.NoError(t, ch.Send(context.Background(), "9000000001"))
	assert.Equal(t, otp.StateSent, ch.State())

	redirect, err := ch.Verify(context.Background(), "123456", store)
	require.NoError(t, err)

	assert.Equal(t, otp.StateAuthenticated, ch.State())
	assert.Equal(t, "/citizen", redirect)
	assert.True(t, store.IsAuthenticated())
	user, ok := store.User()
	require.True(t, ok)
	assert.Equal(t, "c1", user.ID)
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.Equal(t, "9000000001", user.MobileNumber)
}

func TestOfficerTierRoleRedirectsToDashboard(t *testing.T) {
	api := &fakeCitizenAPI{token: makeToken(t, map[string]any{"sub": "o1", "role": "DISTRICT_COMMISSIONER"})}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	require.NoError(t, ch.Send(context.Background(), "9000000002"))
	redirect, err := ch.Verify(context.Background(), "1234", newSessionStore())
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", redirect)
}

func TestInlineModeReturnsNoRedirect(t *testing.T) {
	api := &fakeCitizenAPI{token: makeToken(t, map[string]any{"sub": "c1", "role": "CITIZEN"})}
	ch := otp.NewChallenge(otp.ModeInline, api)

	require.NoError(t, ch.Send(context.Background(), "9000000003"))
	redirect, err := ch.Verify(context.Background(), "1234", newSessionStore())
	require.NoError(t, err)
	assert.Empty(t, redirect)
}

func TestInvalidMobileNeverReachesNetwork(t *testing.T) {
	api := &fakeCitizenAPI{}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	for _, mobile := range []string{"", "12345", "90000000011", "90000abc01"} {
		err := ch.Send(context.Background(), mobile)
		assert.ErrorIs(t, err, otp.ErrInvalidMobile, "mobile %q", mobile)
	}

	sends, _ := api.calls()
	assert.Zero(t, sends)
	assert.Equal(t, otp.StateIdle, ch.State())
	assert.Equal(t, "Please enter a valid 10-digit mobile number.", ch.LastError())
}

func TestVerifyFailureSurfacesServerMessageAndAllowsRetry(t *testing.T) {
	api := &fakeCitizenAPI{
		verifyErr: &upstream.APIError{StatusCode: 401, Message: "Invalid OTP"},
	}
	ch := otp.NewChallenge(otp.ModeLogin, api)
	store := newSessionStore()

	require.NoError(t, ch.Send(context.Background(), "9000000001"))

	_, err := ch.Verify(context.Background(), "0000", store)
	require.Error(t, err)
	assert.Equal(t, otp.StateSent, ch.State(), "a bad code keeps the challenge open")
	assert.Equal(t, "Invalid OTP", ch.LastError())
	assert.False(t, store.IsAuthenticated())

	api.mu.Lock()
	api.verifyErr = nil
	api.token = makeToken(t, map[string]any{"sub": "c1", "role": "CITIZEN"})
	api.mu.Unlock()

	_, err = ch.Verify(context.Background(), "1234", store)
	require.NoError(t, err)
	assert.True(t, store.IsAuthenticated())
	assert.Empty(t, ch.LastError())
}

func TestShortCodeRejectedLocally(t *testing.T) {
	api := &fakeCitizenAPI{token: "x.y.z"}
	ch := otp.NewChallenge(otp.ModeLogin, api)
	require.NoError(t, ch.Send(context.Background(), "9000000001"))

	_, err := ch.Verify(context.Background(), "12", newSessionStore())
	assert.ErrorIs(t, err, otp.ErrInvalidCode)

	_, verifies := api.calls()
	assert.Zero(t, verifies)
	assert.Equal(t, otp.StateSent, ch.State())
}

func TestUndecodableTokenStillAuthenticates(t *testing.T) {
	api := &fakeCitizenAPI{token: "not-a-jwt"}
	ch := otp.NewChallenge(otp.ModeLogin, api)
	store := newSessionStore()

	require.NoError(t, ch.Send(context.Background(), "9000000001"))
	redirect, err := ch.Verify(context.Background(), "1234", store)
	require.NoError(t, err)

	assert.Equal(t, "/citizen", redirect, "undecodable claims default to the citizen landing")
	assert.True(t, store.IsAuthenticated())
	user, _ := store.User()
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.Equal(t, "9000000001", user.MobileNumber)
}

func TestSendFailureUsesGenericMessageWithoutServerOne(t *testing.T) {
	api := &fakeCitizenAPI{sendErr: context.DeadlineExceeded}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	err := ch.Send(context.Background(), "9000000001")
	require.Error(t, err)
	assert.Equal(t, otp.StateIdle, ch.State())
	assert.Equal(t, "Failed to send OTP.", ch.LastError())
}

func TestResendKeepsMobileNumber(t *testing.T) {
	api := &fakeCitizenAPI{}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	assert.ErrorIs(t, ch.Resend(context.Background()), otp.ErrNotSent)

	require.NoError(t, ch.Send(context.Background(), "9000000001"))
	require.NoError(t, ch.Resend(context.Background()))

	assert.Equal(t, "9000000001", ch.Mobile())
	assert.Equal(t, otp.StateSent, ch.State())
	sends, _ := api.calls()
	assert.Equal(t, 2, sends)
}

func TestInFlightSendLatchesFurtherRequests(t *testing.T) {
	api := &fakeCitizenAPI{
		sendStarted: make(chan struct{}),
		sendRelease: make(chan struct{}),
	}
	ch := otp.NewChallenge(otp.ModeLogin, api)

	done := make(chan error, 1)
	go func() {
		done <- ch.Send(context.Background(), "9000000001")
	}()

	<-api.sendStarted
	err := ch.Send(context.Background(), "9000000001")
	assert.ErrorIs(t, err, otp.ErrInFlight)

	close(api.sendRelease)
	require.NoError(t, <-done)

	sends, _ := api.calls()
	assert.Equal(t, 1, sends)
}

func TestRegistryRoundTrip(t *testing.T) {
	api := &fakeCitizenAPI{}
	reg := otp.NewRegistry(api, time.Minute)

	ch := reg.Begin(otp.ModeLogin)
	require.NoError(t, ch.Send(context.Background(), "9000000001"))
	reg.Register(ch)

	got, ok := reg.Lookup("9000000001")
	require.True(t, ok)
	assert.Same(t, ch, got)

	_, ok = reg.Lookup("9000000009")
	assert.False(t, ok)

	reg.Complete("9000000001")
	_, ok = reg.Lookup("9000000001")
	assert.False(t, ok)
}

func TestRegistryIgnoresUnsentChallenges(t *testing.T) {
	reg := otp.NewRegistry(&fakeCitizenAPI{}, time.Minute)
	reg.Register(reg.Begin(otp.ModeLogin))
	_, ok := reg.Lookup("")
	assert.False(t, ok)
}
