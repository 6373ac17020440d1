package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	authdomain "github.com/smallbiznis/taskora/internal/auth/domain"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	messagingdomain "github.com/smallbiznis/taskora/internal/messaging/domain"
	paymentdomain "github.com/smallbiznis/taskora/internal/payment/domain"
	reviewdomain "github.com/smallbiznis/taskora/internal/review/domain"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts errors recorded on the context into a
// uniform JSON error body.
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
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, taskdomain.ErrNotOwner),
		errors.Is(err, assignmentdomain.ErrNotContractor),
		errors.Is(err, assignmentdomain.ErrNotClient),
		errors.Is(err, reviewdomain.ErrNotParticipant),
		errors.Is(err, messagingdomain.ErrNotParticipant),
		errors.Is(err, invoicedomain.ErrNotParty):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, taskdomain.ErrNotFound),
		errors.Is(err, assignmentdomain.ErrNotFound),
		errors.Is(err, reviewdomain.ErrNotFound),
		errors.Is(err, reviewdomain.ErrAssignmentMissing),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrAssignmentNotFound),
		errors.Is(err, cartdomain.ErrNotFound),
		errors.Is(err, cartdomain.ErrInvoiceMissing),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, messagingdomain.ErrConversationNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, taskdomain.ErrSlugExists),
		errors.Is(err, taskdomain.ErrArchived),
		errors.Is(err, assignmentdomain.ErrNotCompleted),
		errors.Is(err, assignmentdomain.ErrBackwardTransition),
		errors.Is(err, assignmentdomain.ErrTaskUnavailable),
		errors.Is(err, invoicedomain.ErrNumberExists),
		errors.Is(err, cartdomain.ErrInvoicePaid),
		errors.Is(err, paymentdomain.ErrAlreadyPaid),
		errors.Is(err, paymentdomain.ErrCaptureMismatch),
		errors.Is(err, paymentdomain.ErrOrderNotCreated):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidRequest),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, taskdomain.ErrInvalidName),
		errors.Is(err, taskdomain.ErrInvalidPrice),
		errors.Is(err, taskdomain.ErrInvalidCategory),
		errors.Is(err, assignmentdomain.ErrInvalidStatus),
		errors.Is(err, reviewdomain.ErrInvalidRating),
		errors.Is(err, invoicedomain.ErrInvalidItems),
		errors.Is(err, paymentdomain.ErrCartEmpty),
		errors.Is(err, paymentdomain.ErrMethodRequired),
		errors.Is(err, paymentdomain.ErrUnknownMethod),
		errors.Is(err, messagingdomain.ErrEmptyBody):
		return true
	default:
		return false
	}
}
