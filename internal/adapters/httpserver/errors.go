package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/phenrril/catalog/internal/domain"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message       string            `json:"message"`
	Code          string            `json:"code"`
	CorrelationID string            `json:"correlationId"`
	Details       map[string]string `json:"details,omitempty"`
}

const (
	codeInvalid    = "invalid_argument"
	codeValidation = "validation_failed"
	codeNotFound   = "not_found"
	codeConflict   = "conflict"
	codeInternal   = "internal"
)

func abort(c *gin.Context, status int, code, msg string, details map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:       msg,
		Code:          code,
		CorrelationID: correlationID(c),
		Details:       details,
	})
}

// fail maps err onto the error envelope. Unknown errors become a 500 with a
// generic message; the cause is only logged.
func fail(c *gin.Context, err error) {
	l := zerolog.Ctx(c.Request.Context())

	var verr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		abort(c, http.StatusBadRequest, codeValidation, "One or more fields are invalid", verr.Fields)
	case errors.As(err, &fieldErrs):
		abort(c, http.StatusBadRequest, codeValidation, "One or more fields are invalid", fieldDetails(fieldErrs))
	case errors.Is(err, domain.ErrInvalidArgument):
		abort(c, http.StatusBadRequest, codeInvalid, reason(err, domain.ErrInvalidArgument), nil)
	case errors.Is(err, domain.ErrNotFound):
		l.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("resource not found")
		abort(c, http.StatusNotFound, codeNotFound, "The requested resource was not found", nil)
	case errors.Is(err, domain.ErrConflict):
		abort(c, http.StatusConflict, codeConflict, reason(err, domain.ErrConflict), nil)
	default:
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		abort(c, http.StatusInternalServerError, codeInternal, "An unexpected error occurred", nil)
	}
}

// reason strips the sentinel prefix added by domain.Invalid and friends.
func reason(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

func fieldDetails(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
