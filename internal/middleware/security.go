package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/partforge/configurator/internal/config"
)

// CORS middleware handles Cross-Origin Resource Sharing. The allowed origin
// list comes from CORS_ALLOWED_ORIGINS (comma-separated) so a deployment can
// point this at its own storefront domain without a code change; the
// development defaults cover the common local frontend dev servers.
func CORS() gin.HandlerFunc {
	allowedOrigins := corsOrigins()

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func corsOrigins() []string {
	defaults := []string{
		"http://localhost:3000",
		"https://localhost:3000",
		"http://localhost:5173",
		"https://localhost:5173",
	}

	extra := os.Getenv("CORS_ALLOWED_ORIGINS")
	if extra == "" {
		return defaults
	}

	for _, origin := range strings.Split(extra, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			defaults = append(defaults, origin)
		}
	}
	return defaults
}

// SecurityHeaders middleware adds security headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'; connect-src 'self'; frame-ancestors 'none';")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// CheckoutRateLimiter throttles the checkout surface per client, on top of
// the row-level locking the Order Engine already does — this stops a
// misbehaving client from hammering the checkout endpoint, it isn't a
// substitute for the transactional stock guarantees in internal/orders.
// Redis being unreachable fails open: a down rate limiter must never block
// a legitimate checkout.
func CheckoutRateLimiter(redisClient *redis.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := cfg.CheckoutRequestsPerMinute
	if limit <= 0 {
		limit = 10
	}

	return func(c *gin.Context) {
		clientID := getClientID(c)
		key := fmt.Sprintf("checkout_rate_limit:%s", clientID)

		ctx := context.Background()

		current, err := redisClient.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			c.Next()
			return
		}

		if current >= limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many checkout requests. Please try again later.",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		pipe := redisClient.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-current-1))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		c.Next()
	}
}

// getClientID returns a unique identifier for the client, preferring the
// authenticated user over the raw IP so a shared NAT doesn't throttle one
// shopper's neighbors.
func getClientID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		return fmt.Sprintf("user:%v", userID)
	}

	clientIP := c.ClientIP()
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		clientIP = forwarded
	}

	return fmt.Sprintf("ip:%s", clientIP)
}

// RequestLogger middleware logs HTTP requests.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	})
}
