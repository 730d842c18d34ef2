package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/apperror"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected caller id to be echoed, got %q", got)
	}
}

func TestAuditLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID(), Audit(logger))
	app.Get("/accounts", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(fiber.MethodGet, "/accounts", nil)
	req.Header.Set(requestIDHeader, "audit-1")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode audit record: %v (%s)", err, buf.String())
	}
	if record["path"] != "/accounts" || record["request_id"] != "audit-1" || record["status"] != float64(fiber.StatusNoContent) {
		t.Fatalf("unexpected audit record: %v", record)
	}
}

func TestAuditRecordsDomainErrorStatusAndParams(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(Audit(logger))
	app.Post("/accounts/:accountId/debit", func(c *fiber.Ctx) error {
		return apperror.InsufficientFunds("amount", "short")
	})

	if _, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/accounts/acc-1/debit", nil)); err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode audit record: %v (%s)", err, buf.String())
	}
	if record["level"] != "WARN" || record["status"] != float64(fiber.StatusUnprocessableEntity) {
		t.Fatalf("expected warn with 422, got %v", record)
	}
	if record["accountId"] != "acc-1" || record["route"] != "/accounts/:accountId/debit" {
		t.Fatalf("expected route params in audit record, got %v", record)
	}
}
