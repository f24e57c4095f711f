package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "guest_abc123", UserType: UserTypeGuest}, testSecret, time.Hour)
	require.NoError(t, err)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "guest_abc123", payload.ID)
	assert.Equal(t, UserTypeGuest, payload.UserType)
	assert.Equal(t, TokenIssuer, payload.Issuer)
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken(&Payload{ID: "u"}, testSecret, -time.Minute)
	require.NoError(t, err)

	valid, err := GenerateToken(&Payload{ID: "u"}, testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "expired", token: expired, secret: testSecret},
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "garbage", token: "not.a.token", secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	valid, err := GenerateToken(&Payload{ID: "user-1", UserType: UserTypeRegistered}, testSecret, time.Hour)
	require.NoError(t, err)

	var got *Payload
	h := IdentityExtractorMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	}))

	tests := []struct {
		name   string
		header string
		wantID string
	}{
		{name: "no header"},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "invalid token", header: "Bearer nope"},
		{name: "valid token", header: "Bearer " + valid, wantID: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			h.ServeHTTP(httptest.NewRecorder(), r)

			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
