// Package identity verifies bearer tokens issued by the external identity
// provider (spec.md §6 "bearer token for user context"). Unlike the
// teacher's auth-service, this core never mints tokens — it only verifies
// them, adapting the teacher's JWTManager into a verify-only client with an
// HTTP introspection fallback for tokens this process can't check locally.
package identity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/partforge/configurator/internal/config"
)

// claims mirrors the teacher's JWTClaims (internal/security/jwt.go) but
// drops GenerateTokenPair/TokenType minting concerns this service never
// needs — it only ever parses a token the identity provider already signed.
type claims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

// introspectionResponse is the shape the identity provider's introspection
// endpoint returns for a token this process can't verify locally (e.g.
// signed under a rotated key).
type introspectionResponse struct {
	Active  bool      `json:"active"`
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

// Verifier checks bearer tokens against the shared signing secret first,
// and falls back to the identity provider's HTTP introspection endpoint
// when local verification fails, caching either result in Redis for
// cfg.TokenCacheTTL (spec.md §6 "identity-provider URL and service/admin
// key"; ambient stack note on the introspection cache).
type Verifier struct {
	cfg        config.IdentityConfig
	cache      *redis.Client
	httpClient *http.Client
}

// NewVerifier builds a Verifier.
func NewVerifier(cfg config.IdentityConfig, cache *redis.Client) *Verifier {
	return &Verifier{
		cfg:   cfg,
		cache: cache,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Verify resolves a bearer token to the Principal it authenticates, or an
// error if the token is missing, malformed, expired, or rejected by the
// provider.
func (v *Verifier) Verify(ctx context.Context, token string) (*Principal, error) {
	cacheKey := cacheKeyFor(token)

	if cached, ok := v.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	principal, err := v.verifyLocal(token)
	if err != nil {
		principal, err = v.introspect(ctx, token)
		if err != nil {
			return nil, err
		}
	}

	v.toCache(ctx, cacheKey, principal)
	return principal, nil
}

// verifyLocal checks the token's signature against the shared secret
// configured for this process. This succeeds whenever the identity
// provider signs tokens with the same secret it shares with the core
// (the common case); a rotated or provider-local-only key falls through
// to introspect.
func (v *Verifier) verifyLocal(token string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.cfg.ServiceKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token locally: %w", err)
	}

	claims, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &Principal{UserID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}

// introspect calls the identity provider's token-introspection endpoint,
// authenticating itself with the configured service key.
func (v *Verifier) introspect(ctx context.Context, token string) (*Principal, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to build introspection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.ProviderURL+"/introspect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build introspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.cfg.ServiceKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var parsed introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}
	if !parsed.Active {
		return nil, fmt.Errorf("token is not active")
	}

	return &Principal{UserID: parsed.UserID, Email: parsed.Email, IsAdmin: parsed.IsAdmin}, nil
}

func (v *Verifier) fromCache(ctx context.Context, key string) (*Principal, bool) {
	if v.cache == nil {
		return nil, false
	}

	raw, err := v.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var principal Principal
	if err := json.Unmarshal(raw, &principal); err != nil {
		return nil, false
	}

	return &principal, true
}

func (v *Verifier) toCache(ctx context.Context, key string, principal *Principal) {
	if v.cache == nil {
		return
	}

	raw, err := json.Marshal(principal)
	if err != nil {
		return
	}

	v.cache.Set(ctx, key, raw, v.cfg.TokenCacheTTL)
}

// cacheKeyFor hashes the token rather than using it verbatim as a Redis key,
// so a log line or keyspace scan never leaks a live bearer token.
func cacheKeyFor(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:token:" + hex.EncodeToString(sum[:])
}
