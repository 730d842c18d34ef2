package transaction

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/validation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler exposes transaction HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ID                    string `json:"id" validate:"omitempty,max=40"`
	AccountID             string `json:"account_id" validate:"required"`
	CounterpartyAccountID string `json:"counterparty_account_id"`
	Type                  string `json:"transaction_type" validate:"required,oneof=deposit withdrawal transfer payment fee interest exchange refund chargeback adjustment"`
	Currency              string `json:"currency" validate:"omitempty,len=3,uppercase"`
	BaseCurrency          string `json:"base_currency" validate:"omitempty,len=3,uppercase"`
	Amount                string `json:"amount" validate:"required"`
	Fee                   string `json:"fee"`
	Tax                   string `json:"tax"`
	ExchangeRate          string `json:"exchange_rate"`
	RiskScore             int    `json:"risk_score" validate:"gte=0,lte=100"`
	ManualReview          bool   `json:"manual_review"`
	FraudFlag             bool   `json:"fraud_flag"`
	ComplianceFlag        bool   `json:"compliance_flag"`
	Description           string `json:"description" validate:"max=255"`
	Reference             string `json:"reference" validate:"max=255"`
}

type updateRequest struct {
	Amount         *string `json:"amount"`
	Fee            *string `json:"fee"`
	Tax            *string `json:"tax"`
	ExchangeRate   *string `json:"exchange_rate"`
	RiskScore      *int    `json:"risk_score" validate:"omitempty,gte=0,lte=100"`
	ManualReview   *bool   `json:"manual_review"`
	FraudFlag      *bool   `json:"fraud_flag"`
	ComplianceFlag *bool   `json:"compliance_flag"`
	Description    *string `json:"description" validate:"omitempty,max=255"`
	Reference      *string `json:"reference" validate:"omitempty,max=255"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed failed cancelled reversed suspended"`
}

type transactionResponse struct {
	ID                    string     `json:"id"`
	AccountID             string     `json:"account_id"`
	CounterpartyAccountID string     `json:"counterparty_account_id,omitempty"`
	Type                  string     `json:"transaction_type"`
	Currency              string     `json:"currency"`
	BaseCurrency          string     `json:"base_currency"`
	Amount                string     `json:"amount"`
	Fee                   string     `json:"fee"`
	Tax                   string     `json:"tax"`
	TotalAmount           string     `json:"total_amount"`
	ExchangeRate          string     `json:"exchange_rate"`
	NetAmount             string     `json:"net_amount"`
	AmountInBaseCurrency  string     `json:"amount_in_base_currency"`
	Status                string     `json:"status"`
	RiskScore             int        `json:"risk_score"`
	HighRisk              bool       `json:"high_risk"`
	RequiresReview        bool       `json:"requires_review"`
	ManualReview          bool       `json:"manual_review"`
	FraudFlag             bool       `json:"fraud_flag"`
	ComplianceFlag        bool       `json:"compliance_flag"`
	Description           string     `json:"description,omitempty"`
	Reference             string     `json:"reference,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	ProcessedAt           *time.Time `json:"processed_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	ReversedAt            *time.Time `json:"reversed_at,omitempty"`
}

func toResponse(t Transaction) transactionResponse {
	return transactionResponse{
		ID:                    t.ID,
		AccountID:             t.AccountID,
		CounterpartyAccountID: t.CounterpartyAccountID,
		Type:                  string(t.Type),
		Currency:              t.Currency,
		BaseCurrency:          t.BaseCurrency,
		Amount:                t.Amount.StringFixed(money.FiatScale),
		Fee:                   t.Fee.StringFixed(money.FiatScale),
		Tax:                   t.Tax.StringFixed(money.FiatScale),
		TotalAmount:           t.TotalAmount().StringFixed(money.FiatScale),
		ExchangeRate:          t.ExchangeRate.StringFixed(money.RateScale),
		NetAmount:             t.NetAmount.StringFixed(money.FiatScale),
		AmountInBaseCurrency:  t.AmountInBaseCurrency.StringFixed(money.FiatScale),
		Status:                string(t.Status),
		RiskScore:             t.RiskScore,
		HighRisk:              t.IsHighRisk(),
		RequiresReview:        t.RequiresReview(),
		ManualReview:          t.ManualReview,
		FraudFlag:             t.FraudFlag,
		ComplianceFlag:        t.ComplianceFlag,
		Description:           t.Description,
		Reference:             t.Reference,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		ProcessedAt:           t.ProcessedAt,
		CompletedAt:           t.CompletedAt,
		ReversedAt:            t.ReversedAt,
	}
}

// Create records a transaction.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	in := CreateInput{
		ID:                    req.ID,
		AccountID:             req.AccountID,
		CounterpartyAccountID: req.CounterpartyAccountID,
		Type:                  Type(req.Type),
		Currency:              req.Currency,
		BaseCurrency:          req.BaseCurrency,
		RiskScore:             req.RiskScore,
		ManualReview:          req.ManualReview,
		FraudFlag:             req.FraudFlag,
		ComplianceFlag:        req.ComplianceFlag,
		Description:           req.Description,
		Reference:             req.Reference,
	}
	var err error
	if in.Amount, err = money.Parse("amount", req.Amount); err != nil {
		return err
	}
	if in.Fee, err = optionalAmount("fee", req.Fee); err != nil {
		return err
	}
	if in.Tax, err = optionalAmount("tax", req.Tax); err != nil {
		return err
	}
	if in.ExchangeRate, err = optionalAmount("exchange_rate", req.ExchangeRate); err != nil {
		return err
	}

	t, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(t))
}

// Get returns a single transaction.
func (h *Handler) Get(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("transactionId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(t))
}

// ListByAccount returns a page of an account's transactions.
func (h *Handler) ListByAccount(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", defaultPageSize)
	if err != nil {
		return err
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	txs, err := h.service.ListByAccount(c.UserContext(), c.Params("accountId"), ListFilter{
		Status: Status(c.Query("status")),
		Type:   Type(c.Query("transaction_type")),
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return err
	}
	items := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		items = append(items, toResponse(t))
	}
	return c.JSON(fiber.Map{"items": items, "page": page, "size": size})
}

// Update changes the supplied fields of a transaction.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	in := UpdateInput{
		RiskScore:      req.RiskScore,
		ManualReview:   req.ManualReview,
		FraudFlag:      req.FraudFlag,
		ComplianceFlag: req.ComplianceFlag,
		Description:    req.Description,
		Reference:      req.Reference,
	}
	var err error
	if in.Amount, err = amountPtr("amount", req.Amount); err != nil {
		return err
	}
	if in.Fee, err = amountPtr("fee", req.Fee); err != nil {
		return err
	}
	if in.Tax, err = amountPtr("tax", req.Tax); err != nil {
		return err
	}
	if in.ExchangeRate, err = amountPtr("exchange_rate", req.ExchangeRate); err != nil {
		return err
	}

	t, err := h.service.Update(c.UserContext(), c.Params("transactionId"), in)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(t))
}

// Transition applies a lifecycle status change.
func (h *Handler) Transition(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	t, err := h.service.Transition(c.UserContext(), c.Params("transactionId"), Status(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(t))
}

func optionalAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return money.Parse(field, raw)
}

func amountPtr(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := money.Parse(field, *raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.Validation(key, "must be a positive integer")
	}
	return n, nil
}
