package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/testutils"
)

const testServiceKey = "test-identity-service-key-value"

func signToken(t *testing.T, userID uuid.UUID, email string, isAdmin bool, secret string) string {
	t.Helper()
	c := &claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifier_Verify_LocalSignatureSucceeds(t *testing.T) {
	redisClient := testutils.SetupTestRedis(t)
	defer redisClient.Close()
	defer testutils.CleanupTestRedis(t, redisClient)

	cfg := config.IdentityConfig{ServiceKey: testServiceKey, TokenCacheTTL: time.Minute}
	v := NewVerifier(cfg, redisClient)

	userID := uuid.New()
	token := signToken(t, userID, "shopper@example.com", false, testServiceKey)

	principal, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, "shopper@example.com", principal.Email)
	assert.False(t, principal.IsAdmin)
}

func TestVerifier_Verify_CachesResult(t *testing.T) {
	redisClient := testutils.SetupTestRedis(t)
	defer redisClient.Close()
	defer testutils.CleanupTestRedis(t, redisClient)

	cfg := config.IdentityConfig{ServiceKey: testServiceKey, TokenCacheTTL: time.Minute}
	v := NewVerifier(cfg, redisClient)

	userID := uuid.New()
	token := signToken(t, userID, "shopper@example.com", false, testServiceKey)

	_, err := v.Verify(context.Background(), token)
	require.NoError(t, err)

	cached, ok := v.fromCache(context.Background(), cacheKeyFor(token))
	require.True(t, ok)
	assert.Equal(t, userID, cached.UserID)
}

func TestVerifier_Verify_FallsBackToIntrospection(t *testing.T) {
	redisClient := testutils.SetupTestRedis(t)
	defer redisClient.Close()
	defer testutils.CleanupTestRedis(t, redisClient)

	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testServiceKey, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(introspectionResponse{
			Active: true, UserID: userID, Email: "admin@example.com", IsAdmin: true,
		})
	}))
	defer server.Close()

	cfg := config.IdentityConfig{ServiceKey: testServiceKey, ProviderURL: server.URL, TokenCacheTTL: time.Minute}
	v := NewVerifier(cfg, redisClient)

	// Signed under a different key than cfg.ServiceKey, so local verification
	// fails and the provider's introspection endpoint is consulted instead.
	token := signToken(t, userID, "admin@example.com", true, "a-rotated-provider-side-key")

	principal, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.True(t, principal.IsAdmin)
}

func TestVerifier_Verify_IntrospectionRejectsInactiveToken(t *testing.T) {
	redisClient := testutils.SetupTestRedis(t)
	defer redisClient.Close()
	defer testutils.CleanupTestRedis(t, redisClient)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(introspectionResponse{Active: false})
	}))
	defer server.Close()

	cfg := config.IdentityConfig{ServiceKey: testServiceKey, ProviderURL: server.URL, TokenCacheTTL: time.Minute}
	v := NewVerifier(cfg, redisClient)

	token := signToken(t, uuid.New(), "x@example.com", false, "some-other-key")

	_, err := v.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestValidateServiceKeyStrength(t *testing.T) {
	assert.Error(t, ValidateServiceKeyStrength("short"))
	assert.NoError(t, ValidateServiceKeyStrength(testServiceKey))
}
