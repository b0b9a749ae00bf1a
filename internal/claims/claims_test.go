package claims_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldofdc/portal-gateway/internal/claims"
	"github.com/worldofdc/portal-gateway/internal/models"
)

func tokenWithPayload(t *testing.T, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeRecoversClaims(t *testing.T) {
	token := tokenWithPayload(t, `{"sub":"u1","role":"CITIZEN","email":"a@b.gov","name":"Asha"}`)

	c := claims.Decode(token)
	require.NotNil(t, c)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, "CITIZEN", c.Role)
	assert.Equal(t, "a@b.gov", c.Email)
	assert.Equal(t, "Asha", c.Name)
}

func TestDecodeMalformedTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"non-base64 payload", "aGVhZGVy.!!!not-base64!!!.c2ln"},
		{"payload not JSON", tokenWithPayload(t, "not json at all")},
		{"four segments", "a.b.c.d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, claims.Decode(tt.token))
			})
		})
	}
}

func TestDecodeIgnoresNonStringClaims(t *testing.T) {
	c := claims.Decode(tokenWithPayload(t, `{"sub":42,"role":"CITIZEN"}`))
	require.NotNil(t, c)
	assert.Empty(t, c.Subject)
	assert.Equal(t, "CITIZEN", c.Role)
}

func TestSynthesizeUserFallbacks(t *testing.T) {
	t.Run("full claims", func(t *testing.T) {
		c := claims.Decode(tokenWithPayload(t, `{"sub":"c1","role":"OFFICER","email":"o@gov.in","name":"Ravi"}`))
		user := claims.SynthesizeUser(c, "9000000001")
		assert.Equal(t, "c1", user.ID)
		assert.Equal(t, models.RoleOfficer, user.Role)
		assert.Equal(t, "o@gov.in", user.Email)
		assert.Equal(t, "Ravi", user.Name)
		assert.Equal(t, "9000000001", user.MobileNumber)
	})

	t.Run("citizenId fallback", func(t *testing.T) {
		c := claims.Decode(tokenWithPayload(t, `{"citizenId":"c9"}`))
		user := claims.SynthesizeUser(c, "9000000001")
		assert.Equal(t, "c9", user.ID)
		assert.Equal(t, models.RoleCitizen, user.Role)
	})

	t.Run("nil claims still produce a usable profile", func(t *testing.T) {
		user := claims.SynthesizeUser(nil, "9000000001")
		assert.Empty(t, user.ID)
		assert.Empty(t, user.Name)
		assert.Equal(t, models.RoleCitizen, user.Role)
		assert.Equal(t, "9000000001", user.MobileNumber)
		assert.NotEmpty(t, user.CreatedAt)
	})
}
