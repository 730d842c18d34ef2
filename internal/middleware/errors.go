package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/apperror"
)

type errorBody struct {
	Error apperror.Error `json:"error"`
}

// ErrorHandler renders domain errors and fiber errors as
// {"error":{"kind","field","message"}} with the matching HTTP status.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return c.Status(StatusFor(appErr.Kind)).JSON(errorBody{Error: *appErr})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorBody{Error: apperror.Error{Kind: kindForStatus(fe.Code), Message: fe.Message}})
		}

		if logger != nil {
			logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(http.StatusInternalServerError).JSON(errorBody{Error: apperror.Error{Kind: "internal", Message: "internal server error"}})
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidStateTransition, apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(code int) apperror.Kind {
	switch code {
	case http.StatusBadRequest:
		return apperror.KindValidation
	case http.StatusNotFound:
		return apperror.KindNotFound
	case http.StatusConflict:
		return apperror.KindConflict
	case http.StatusUnprocessableEntity:
		return apperror.KindInsufficientFunds
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "http"
	}
}
