package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	mealplandomain "github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	menudomain "github.com/smallbiznis/mensaplan/internal/menu/domain"
	"github.com/smallbiznis/mensaplan/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	if isNotFoundError(err) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	// storage and upstream failures never leak their cause
	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

// classifyErrorForLog returns the response type and code logged with the request.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		switch {
		case errors.Is(err, mealplandomain.ErrUpstream):
			return payload.Type, "upstream_error"
		case errors.Is(err, mealplandomain.ErrStorage):
			return payload.Type, "storage_error"
		}
		return payload.Type, "internal_error"
	case len(payload.Errors) > 0:
		return payload.Type, payload.Errors[0].Code
	default:
		return payload.Type, payload.Type
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// validationSentinels maps domain errors to the code reported to clients.
var validationSentinels = []struct {
	err  error
	code string
}{
	{ErrInvalidRequest, "invalid_request"},
	{mealplandomain.ErrInvalidRange, "invalid_range"},
	{menudomain.ErrInvalidRange, "invalid_range"},
	{menudomain.ErrInvalidID, "invalid_id"},
	{menudomain.ErrInvalidDate, "invalid_date"},
	{pagination.ErrInvalidPageToken, "invalid_page_token"},
}

func isValidationError(err error) bool {
	return validationErrorCode(err) != ""
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, menudomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	for _, v := range validationSentinels {
		if errors.Is(err, v.err) {
			return v.code
		}
	}
	return ""
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_range":
		return "start date must not be after end date"
	case "invalid_date":
		return "date must be formatted as YYYY-MM-DD"
	case "invalid_page_token":
		return "page token is malformed"
	default:
		return "invalid value"
	}
}
