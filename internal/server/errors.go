package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	payoutdomain "github.com/mentorpay/mentorpay/internal/payout/domain"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrInvalidRequest wraps malformed request bodies and parameters.
var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, payoutdomain.ErrAlreadyFinalized):
		return http.StatusConflict, errorPayload{
			Type:    "already_finalized",
			Message: "payout run is already finalized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, sessiondomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "session store unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, taxdomain.ErrInvalidTaxConfig),
		errors.Is(err, payoutdomain.ErrInvalidSession),
		errors.Is(err, sessiondomain.ErrInvalidMentor),
		errors.Is(err, sessiondomain.ErrInvalidSessionType),
		errors.Is(err, sessiondomain.ErrInvalidDuration),
		errors.Is(err, sessiondomain.ErrInvalidRate),
		errors.Is(err, sessiondomain.ErrFutureSessionDate),
		errors.Is(err, webhookdomain.ErrInvalidURL),
		errors.Is(err, webhookdomain.ErrInvalidName),
		errors.Is(err, webhookdomain.ErrInvalidSecret),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, sessiondomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrRunNotFound),
		errors.Is(err, webhookdomain.ErrEndpointNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
