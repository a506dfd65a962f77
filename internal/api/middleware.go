package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/gin-gonic/gin"
)

// Constants for context keys
const (
	ContextUserIDKey = "userID"
)

// AuthMiddleware verifies the bearer token and stores the uid claim on the gin context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := authService.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, service.UserMessage(err))
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if uid, ok := c.Get(ContextUserIDKey); ok {
			attrs = append(attrs, "user", uid)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// respondError maps err to a status code and a user-facing message.
func respondError(c *gin.Context, err error) {
	abortWithError(c, statusFor(err), service.UserMessage(err))
}

var faultStatus = map[repository.FaultCode]int{
	repository.CodePermissionDenied:  http.StatusForbidden,
	repository.CodeNotFound:          http.StatusNotFound,
	repository.CodeAlreadyExists:     http.StatusConflict,
	repository.CodeResourceExhausted: http.StatusTooManyRequests,
	repository.CodeUnavailable:       http.StatusServiceUnavailable,
	repository.CodeDeadlineExceeded:  http.StatusGatewayTimeout,
	repository.CodeInvalidDocument:   http.StatusBadGateway,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrInvalidArgument),
		errors.Is(err, domain.ErrSetOutOfRange),
		errors.Is(err, domain.ErrWorkoutNotInPlan),
		errors.Is(err, domain.ErrEmptyWorkoutName):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotAuthenticated),
		errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrPhotoNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWorkoutNotActive),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusNotImplemented
	}
	if code, ok := repository.FaultCodeOf(err); ok {
		if status, ok := faultStatus[code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// parseDay reads a YYYY-MM-DD query parameter in local time, defaulting to today.
func parseDay(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", repository.ErrInvalidArgument, key)
	}
	return day, nil
}
