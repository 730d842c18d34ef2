package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/logging"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func errorResponse(t *testing.T, err error) (int, apperror.Error) {
	t.Helper()
	resp, testErr := errorApp(err).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if testErr != nil {
		t.Fatalf("app.Test: %v", testErr)
	}
	var body struct {
		Error apperror.Error `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.StatusCode, body.Error
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   apperror.Kind
	}{
		{apperror.Validation("amount", "must be positive"), http.StatusBadRequest, apperror.KindValidation},
		{apperror.InsufficientFunds("amount", "short"), http.StatusUnprocessableEntity, apperror.KindInsufficientFunds},
		{apperror.NotFound("account", "x"), http.StatusNotFound, apperror.KindNotFound},
		{apperror.InvalidTransition("status", "closed", "active"), http.StatusConflict, apperror.KindInvalidStateTransition},
		{apperror.Conflict("account_number", "taken"), http.StatusConflict, apperror.KindConflict},
	}
	for _, tc := range cases {
		status, body := errorResponse(t, tc.err)
		if status != tc.status || body.Kind != tc.kind {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.kind, status, body.Kind)
		}
	}
}

func TestErrorHandlerKeepsField(t *testing.T) {
	_, body := errorResponse(t, apperror.Validation("currency", "unsupported"))
	if body.Field != "currency" || body.Message != "unsupported" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestErrorHandlerFiberError(t *testing.T) {
	status, body := errorResponse(t, fiber.NewError(http.StatusBadRequest, "bad json"))
	if status != http.StatusBadRequest || body.Kind != apperror.KindValidation || body.Message != "bad json" {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	status, body := errorResponse(t, errors.New("db down"))
	if status != http.StatusInternalServerError || body.Message != "internal server error" {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}
