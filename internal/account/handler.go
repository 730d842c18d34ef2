package account

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/validation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	CustomerID     string `json:"customer_id" validate:"omitempty,max=64"`
	AccountNumber  string `json:"account_number" validate:"omitempty,min=8,max=34"`
	IBAN           string `json:"iban" validate:"omitempty,min=15,max=34"`
	Currency       string `json:"currency" validate:"omitempty,len=3,uppercase"`
	OpeningBalance string `json:"opening_balance"`
	OverdraftLimit string `json:"overdraft_limit"`
	RiskLevel      string `json:"risk_level" validate:"omitempty,oneof=low medium high"`
	KYCStatus      string `json:"kyc_status" validate:"omitempty,oneof=pending verified rejected"`
	AMLStatus      string `json:"aml_status" validate:"omitempty,oneof=clean flagged blocked"`
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended closed frozen"`
}

type accountResponse struct {
	ID                  string     `json:"id"`
	CustomerID          string     `json:"customer_id,omitempty"`
	AccountNumber       string     `json:"account_number"`
	IBAN                string     `json:"iban"`
	Currency            string     `json:"currency"`
	Balance             string     `json:"balance"`
	BlockedAmount       string     `json:"blocked_amount"`
	AvailableBalance    string     `json:"available_balance"`
	OverdraftLimit      string     `json:"overdraft_limit"`
	Status              string     `json:"status"`
	RiskLevel           string     `json:"risk_level"`
	KYCStatus           string     `json:"kyc_status"`
	AMLStatus           string     `json:"aml_status"`
	LastTransactionDate *time.Time `json:"last_transaction_date,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:                  a.ID,
		CustomerID:          a.CustomerID,
		AccountNumber:       a.Number,
		IBAN:                a.IBAN,
		Currency:            a.Currency,
		Balance:             a.Balance.StringFixed(money.FiatScale),
		BlockedAmount:       a.BlockedAmount.StringFixed(money.FiatScale),
		AvailableBalance:    a.AvailableBalance.StringFixed(money.FiatScale),
		OverdraftLimit:      a.OverdraftLimit.StringFixed(money.FiatScale),
		Status:              string(a.Status),
		RiskLevel:           string(a.RiskLevel),
		KYCStatus:           string(a.KYCStatus),
		AMLStatus:           string(a.AMLStatus),
		LastTransactionDate: a.LastTransactionDate,
		Version:             a.Version,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// Create opens an account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	opening, err := optionalAmount("opening_balance", req.OpeningBalance)
	if err != nil {
		return err
	}
	overdraft, err := optionalAmount("overdraft_limit", req.OverdraftLimit)
	if err != nil {
		return err
	}
	acc, err := h.service.Create(c.UserContext(), CreateInput{
		CustomerID:     req.CustomerID,
		Number:         req.AccountNumber,
		IBAN:           req.IBAN,
		Currency:       req.Currency,
		OpeningBalance: opening,
		OverdraftLimit: overdraft,
		RiskLevel:      compliance.RiskLevel(req.RiskLevel),
		KYCStatus:      compliance.KYCStatus(req.KYCStatus),
		AMLStatus:      compliance.AMLStatus(req.AMLStatus),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(acc))
}

// Get returns a single account.
func (h *Handler) Get(c *fiber.Ctx) error {
	acc, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(acc))
}

// List returns a page of accounts, optionally filtered by customer and status.
func (h *Handler) List(c *fiber.Ctx) error {
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
	accounts, err := h.service.List(c.UserContext(), ListFilter{
		CustomerID: c.Query("customer_id"),
		Status:     Status(c.Query("status")),
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return err
	}
	items := make([]accountResponse, 0, len(accounts))
	for _, acc := range accounts {
		items = append(items, toResponse(acc))
	}
	return c.JSON(fiber.Map{"items": items, "page": page, "size": size})
}

// Credit adds funds.
func (h *Handler) Credit(c *fiber.Ctx) error { return h.amountOp(c, h.service.Credit) }

// Debit withdraws funds.
func (h *Handler) Debit(c *fiber.Ctx) error { return h.amountOp(c, h.service.Debit) }

// Block holds funds.
func (h *Handler) Block(c *fiber.Ctx) error { return h.amountOp(c, h.service.BlockFunds) }

// Unblock releases held funds.
func (h *Handler) Unblock(c *fiber.Ctx) error { return h.amountOp(c, h.service.UnblockFunds) }

// CanWithdraw answers whether the available balance covers ?amount=.
func (h *Handler) CanWithdraw(c *fiber.Ctx) error {
	amount, err := money.Parse("amount", c.Query("amount"))
	if err != nil {
		return err
	}
	ok, err := h.service.CanWithdraw(c.UserContext(), c.Params("accountId"), amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"account_id": c.Params("accountId"), "amount": amount.StringFixed(money.FiatScale), "allowed": ok})
}

// CanOverdraft answers whether debiting ?amount= stays within the overdraft limit.
func (h *Handler) CanOverdraft(c *fiber.Ctx) error {
	amount, err := money.Parse("amount", c.Query("amount"))
	if err != nil {
		return err
	}
	ok, err := h.service.CanOverdraft(c.UserContext(), c.Params("accountId"), amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"account_id": c.Params("accountId"), "amount": amount.StringFixed(money.FiatScale), "allowed": ok})
}

// ChangeStatus moves the account to a new lifecycle status.
func (h *Handler) ChangeStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	acc, err := h.service.ChangeStatus(c.UserContext(), c.Params("accountId"), Status(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(acc))
}

func (h *Handler) amountOp(c *fiber.Ctx, op func(ctx context.Context, id string, amount decimal.Decimal) (Account, error)) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	amount, err := money.Parse("amount", req.Amount)
	if err != nil {
		return err
	}
	acc, err := op(c.UserContext(), c.Params("accountId"), amount)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(acc))
}

func optionalAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return money.Parse(field, raw)
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
