package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"

	localsRequestID = "request_id"
	localsUserID    = "user_id"
)

// requestID assigns every request an id, honoring one supplied by the
// caller, and echoes it on the response.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localsRequestID, id)
		c.Set(headerRequestID, id)
		return c.Next()
	}
}

// accessLog emits one structured line per request after it completes.
func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("http request", fields...)
		return err
	}
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}

// userClaims is the token payload. The subject carries the user id;
// issuance lives outside this process.
type userClaims struct {
	jwt.RegisteredClaims
}

// authenticate validates the Bearer token, resolves the account and
// stores the caller's user id in the request locals. Any failure is a
// 401; ownership checks downstream return 403.
func authenticate(secret string, users driven.UserStore) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if token == "" || token == c.Get(fiber.HeaderAuthorization) {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims := &userClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
		}

		user, err := users.Get(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "account disabled")
		}

		c.Locals(localsUserID, user.ID)
		return c.Next()
	}
}

// userIDFrom returns the authenticated caller's id. Routes behind
// authenticate always have it set.
func userIDFrom(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localsUserID).(uuid.UUID)
	return id
}
