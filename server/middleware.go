package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/logger"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-Id"

	// ContextClaims is the gin context key holding validated token claims.
	ContextClaims = "claims"
)

// Recovery converts panics into a SERVER_ERROR response and logs the value.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered", logger.Fields(
					"panic", fmt.Sprintf("%v", r),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				))
				writeError(c, apperrors.ServerError())
			}
		}()
		c.Next()
	}
}

// RequestID propagates or generates an X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger logs method, path, status and latency of every request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			"latency", time.Since(start).String(),
		)
		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("Request failed", fields)
		case status >= 400:
			l.Warn("Request rejected", fields)
		default:
			l.Info("Request completed", fields)
		}
	}
}

// Auth validates the bearer token with validate and stores the claims under
// ContextClaims. A missing bearer token is answered as INVALID_JWT;
// validation failures go through RespondWithError.
func Auth(validate func(token string) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(c, apperrors.FromCode(apperrors.CodeInvalidJWT))
			return
		}
		claims, err := validate(token)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}
