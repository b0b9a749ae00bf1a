package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/upstream"
	apperrors "github.com/worldofdc/portal-gateway/pkg/errors"
	"github.com/worldofdc/portal-gateway/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler, tokens upstream.TokenSource) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.UpstreamConfig{BaseURL: srv.URL, TimeoutSeconds: 5, MaxRetries: 1}
	return upstream.NewClientWithHTTP(cfg, httpclient.NewStandardClientWithTimeout(5*time.Second), tokens)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestVerifyOTPDecodesTokenPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/citizen/verify-otp", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"h.p.s"}}`))
	}), nil)

	payload, err := client.VerifyOTP(context.Background(), "9000000001", "1234")
	require.NoError(t, err)
	assert.Equal(t, "h.p.s", payload.Token)
}

func TestServerReportedFailureSurfacesMessageVerbatim(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}), nil)

	_, err := client.OfficerLogin(context.Background(), models.OfficerLoginRequest{EmployeeID: "EMP1", Password: "wrong"})
	require.Error(t, err)
	var apiErr *upstream.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSuccessFalseWithOKStatusIsStillAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"OTP expired"}`))
	}), nil)

	_, err := client.VerifyOTP(context.Background(), "9000000001", "1234")
	var apiErr *upstream.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "OTP expired", apiErr.Message)
}

func TestListOfficersNormalizesWireFlags(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rajesh", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":"o1","name":"Rajesh","active":true,"approved":false},
			{"id":"o2","name":"Rajni","isActive":false,"isApproved":true}
		]}`))
	}), nil)

	officers, err := client.ListOfficers(context.Background(), "rajesh")
	require.NoError(t, err)
	require.Len(t, officers, 2)
	assert.True(t, officers[0].IsActive)
	assert.False(t, officers[0].IsApproved)
	assert.False(t, officers[1].IsActive)
	assert.True(t, officers[1].IsApproved)
}

func TestBearerTokenPrecedence(t *testing.T) {
	var sawAuth atomic.Value
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u1","role":"CITIZEN"}}`))
	}), staticToken("store-token"))

	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer store-token", sawAuth.Load())

	_, err = client.Me(upstream.WithToken(context.Background(), "request-token"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer request-token", sawAuth.Load(), "context token wins over the token source")
}

func TestTransientServerErrorsRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}), nil)

	err := client.SendOTP(context.Background(), "9000000001")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientErrorsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Mobile number is required"}`))
	}), nil)

	err := client.SendOTP(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPendingOfficersUnwrapsNestedList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/officer/pending", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"officers":[{"id":"o1","approved":false}]}}`))
	}), nil)

	officers, err := client.PendingOfficers(context.Background())
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, "o1", officers[0].ID)
	assert.False(t, officers[0].IsApproved)
}
