package http

import (
	"errors"
	"net/http"
	"strings"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/document"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"

	"github.com/labstack/echo/v4"
)

type errorKind struct {
	target error
	status int
	code   string
}

// First match wins; FileValidation is checked before the generic
// validation sentinel.
var errorKinds = []errorKind{
	{claim.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{claim.ErrClaimNotAssignable, http.StatusConflict, "CLAIM_NOT_ASSIGNABLE"},
	{claim.ErrConflict, http.StatusConflict, "CONFLICT"},
	{user.ErrUsernameTaken, http.StatusConflict, "CONFLICT"},
	{claim.ErrReviewerUnavailable, http.StatusUnprocessableEntity, "REVIEWER_UNAVAILABLE"},
	{document.ErrFileValidation, http.StatusUnprocessableEntity, "FILE_VALIDATION_ERROR"},
	{claim.ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{user.ErrInvalidRole, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{claim.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{user.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{document.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{claim.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
}

func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// respondErr writes the error envelope. Internal errors are logged and
// their message is not sent to the client.
func respondErr(c echo.Context, log *logger.Logger, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
		return c.JSON(status, ErrorResponse{Error: "internal server error", Code: code})
	}
	resp := ErrorResponse{Error: err.Error(), Code: code}
	var fe *document.FileValidationError
	if errors.As(err, &fe) {
		field := fe.Filename
		if field == "" {
			field = "documents"
		}
		resp.Details = []FieldError{{Field: field, Message: fe.Reason}}
	}
	return c.JSON(status, resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "BAD_REQUEST"})
}

// fieldInvalid reports a single malformed field in the validation envelope.
func fieldInvalid(c echo.Context, field string, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: []FieldError{{Field: field, Message: strings.TrimPrefix(err.Error(), claim.ErrValidation.Error()+": ")}},
	})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: ToFieldErrors(err),
	})
}

// HTTPErrorHandler renders echo's own errors (404 route, 405, body limit)
// in the same envelope as handler errors.
func HTTPErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code := "HTTP_ERROR"
			switch he.Code {
			case http.StatusNotFound:
				code = "NOT_FOUND"
			case http.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case http.StatusRequestEntityTooLarge:
				code = "VALIDATION_ERROR"
			case http.StatusUnauthorized:
				code = "UNAUTHORIZED"
			}
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			_ = c.JSON(he.Code, ErrorResponse{Error: msg, Code: code})
			return
		}
		_ = respondErr(c, log, err)
	}
}
