package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"rsvp-households/internal/domain"
)

// statusClientClosedRequest is the non-standard status used when the caller
// went away before the operation finished.
const statusClientClosedRequest = 499

type errorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []errorDetail `json:"errors"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status, detail := classifyError(err)
	c.AbortWithStatusJSON(status, errorResponse{
		StatusCode: status,
		Message:    detail.Message,
		Errors:     []errorDetail{detail},
	})
}

func classifyError(err error) (int, errorDetail) {
	var (
		vErr *domain.ValidationError
		dErr *domain.DecodeError
		sErr *domain.StoreError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorDetail{Code: "InvalidInput", Message: vErr.Error(), Field: vErr.Field}
	case errors.Is(err, domain.ErrHouseholdExists):
		return http.StatusConflict, errorDetail{Code: "DuplicateValue", Message: err.Error(), Field: "id"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorDetail{Code: "ResourceNotFound", Message: err.Error()}
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, errorDetail{Code: "Timeout", Message: err.Error()}
	case errors.Is(err, domain.ErrCanceled):
		return statusClientClosedRequest, errorDetail{Code: "Canceled", Message: err.Error()}
	case errors.As(err, &dErr):
		return http.StatusInternalServerError, errorDetail{Code: "CorruptRecord", Message: dErr.Error(), Field: dErr.Field}
	case errors.As(err, &sErr):
		return http.StatusServiceUnavailable, errorDetail{Code: "StoreUnavailable", Message: sErr.Error()}
	default:
		return http.StatusInternalServerError, errorDetail{Code: "General", Message: "internal error"}
	}
}
