package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/corebank/internal/config"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/middleware"
	"github.com/corebank/corebank/internal/notification"
)

type testEnv struct {
	app      *fiber.App
	notifier *notification.Recorder
}

func newTestEnv(t *testing.T, withRedis bool) testEnv {
	t.Helper()

	var cache *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = cache.Close() })
	}

	logger := logging.Discard()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	recorder := &notification.Recorder{}
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppEnv:         "test",
			IdempotencyTTL: time.Minute,
			RateCacheTTL:   time.Minute,
			BankCode:       "NOVA",
			IBANCountry:    "DE",
		},
		Cache:    cache,
		Logger:   logger,
		IDs:      idgen.NewSequence(),
		Notifier: recorder,
	})
	require.NoError(t, err)
	return testEnv{app: app, notifier: recorder}
}

func (e testEnv) do(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorKind(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	kind, _ := e["kind"].(string)
	return kind
}

func (e testEnv) openAccount(t *testing.T) (customerID, accountID string) {
	t.Helper()
	status, cust := e.do(t, fiber.MethodPost, "/api/v1/customers", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"passcode":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status, cust)
	customerID = cust["id"].(string)

	status, acc := e.do(t, fiber.MethodPost, "/api/v1/accounts", map[string]any{
		"customer_id":     customerID,
		"opening_balance": "1000.00",
	})
	require.Equal(t, http.StatusCreated, status, acc)
	return customerID, acc["id"].(string)
}

func TestAccountBalanceFlow(t *testing.T) {
	env := newTestEnv(t, false)
	_, accountID := env.openAccount(t)
	base := "/api/v1/accounts/" + accountID

	status, acc := env.do(t, fiber.MethodPost, base+"/credit", map[string]any{"amount": "250"})
	require.Equal(t, http.StatusOK, status, acc)
	assert.Equal(t, "1250.0000", acc["balance"])

	status, acc = env.do(t, fiber.MethodPost, base+"/block", map[string]any{"amount": "300"})
	require.Equal(t, http.StatusOK, status, acc)
	assert.Equal(t, "950.0000", acc["available_balance"])

	status, body := env.do(t, fiber.MethodPost, base+"/debit", map[string]any{"amount": "1000"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "insufficient_funds", errorKind(body))

	status, body = env.do(t, fiber.MethodGet, base+"/can-withdraw?amount=950", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["allowed"])

	status, body = env.do(t, fiber.MethodPatch, base+"/status", map[string]any{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errorKind(body))

	status, body = env.do(t, fiber.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	_, accountID := env.openAccount(t)

	status, tx := env.do(t, fiber.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id":       accountID,
		"transaction_type": "deposit",
		"amount":           "100.00",
		"fee":              "2.50",
		"tax":              "1.00",
		"exchange_rate":    "1.1",
		"reference":        "INV-1",
	})
	require.Equal(t, http.StatusCreated, status, tx)
	assert.Equal(t, "96.5000", tx["net_amount"])
	assert.Equal(t, "110.0000", tx["amount_in_base_currency"])
	assert.Equal(t, "pending", tx["status"])
	txPath := "/api/v1/transactions/" + tx["id"].(string)

	status, tx = env.do(t, fiber.MethodPatch, txPath, map[string]any{"fee": "5"})
	require.Equal(t, http.StatusOK, status, tx)
	assert.Equal(t, "94.0000", tx["net_amount"])

	status, tx = env.do(t, fiber.MethodPost, txPath+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, status, tx)
	assert.NotNil(t, tx["completed_at"])

	status, body := env.do(t, fiber.MethodPatch, txPath, map[string]any{"fee": "1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state_transition", errorKind(body))

	status, body = env.do(t, fiber.MethodPost, txPath+"/status", map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state_transition", errorKind(body))

	status, body = env.do(t, fiber.MethodGet, "/api/v1/accounts/"+accountID+"/transactions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	msgs := env.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notification.KindTransactionCompleted, msgs[0].Kind)
}

func TestWalletRateSync(t *testing.T) {
	env := newTestEnv(t, true)
	customerID, accountID := env.openAccount(t)

	status, w := env.do(t, fiber.MethodPost, "/api/v1/wallets", map[string]any{
		"customer_id":    customerID,
		"account_id":     accountID,
		"cryptocurrency": "btc",
	})
	require.Equal(t, http.StatusCreated, status, w)
	assert.Equal(t, "BTC", w["cryptocurrency"])
	walletPath := "/api/v1/wallets/" + w["id"].(string)

	status, body := env.do(t, fiber.MethodPost, walletPath+"/exchange-rate/sync", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorKind(body))

	status, body = env.do(t, fiber.MethodPut, "/api/v1/rates/BTC/USD", map[string]any{"rate": "50000"})
	require.Equal(t, http.StatusOK, status, body)

	status, w = env.do(t, fiber.MethodPut, walletPath+"/balance", map[string]any{
		"confirmed_balance":   "0.5",
		"unconfirmed_balance": "0.1",
	})
	require.Equal(t, http.StatusOK, status, w)
	assert.Equal(t, "0.60000000", w["balance"])

	status, w = env.do(t, fiber.MethodPost, walletPath+"/exchange-rate/sync", nil)
	require.Equal(t, http.StatusOK, status, w)
	assert.Equal(t, "50000.00000000", w["exchange_rate"])
	assert.Equal(t, "30000.00000000", w["fiat_balance"])

	status, body = env.do(t, fiber.MethodPatch, walletPath+"/status", map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errorKind(body))
}

func TestIdempotentCreditIsAppliedOnce(t *testing.T) {
	env := newTestEnv(t, true)
	_, accountID := env.openAccount(t)
	path := "/api/v1/accounts/" + accountID + "/credit"

	status, first := env.do(t, fiber.MethodPost, path, map[string]any{"amount": "10"}, "Idempotency-Key", "credit-1")
	require.Equal(t, http.StatusOK, status)
	status, second := env.do(t, fiber.MethodPost, path, map[string]any{"amount": "10"}, "Idempotency-Key", "credit-1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first["balance"], second["balance"])

	_, acc := env.do(t, fiber.MethodGet, "/api/v1/accounts/"+accountID, nil)
	assert.Equal(t, "1010.0000", acc["balance"])
}

func TestValidationAndNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	status, body := env.do(t, fiber.MethodPost, "/api/v1/accounts", map[string]any{"currency": "usd"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errorKind(body))

	status, body = env.do(t, fiber.MethodGet, "/api/v1/transactions/TXN-missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorKind(body))

	status, body = env.do(t, fiber.MethodGet, "/api/v1/rates/ETH/EUR", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorKind(body))
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, true)

	status, body := env.do(t, fiber.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "disabled", "redis": "ok"}, body["status"])

	resp, err := env.app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
