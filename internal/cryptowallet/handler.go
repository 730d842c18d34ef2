package cryptowallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/validation"
)

// Handler exposes crypto wallet endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a crypto wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ID             string  `json:"id" validate:"omitempty,max=40"`
	CustomerID     string  `json:"customer_id" validate:"required"`
	AccountID      string  `json:"account_id" validate:"required"`
	Cryptocurrency string  `json:"cryptocurrency" validate:"required,min=2,max=10"`
	Address        string  `json:"address" validate:"max=128"`
	WalletType     string  `json:"wallet_type" validate:"omitempty,oneof=hot warm cold hardware"`
	RiskLevel      string  `json:"risk_level" validate:"omitempty,oneof=low medium high"`
	FiatCurrency   string  `json:"fiat_currency" validate:"omitempty,len=3,uppercase"`
	DailyLimit     *string `json:"daily_limit"`
	MonthlyLimit   *string `json:"monthly_limit"`
}

type balanceRequest struct {
	ConfirmedBalance   string `json:"confirmed_balance" validate:"required"`
	UnconfirmedBalance string `json:"unconfirmed_balance"`
}

type rateRequest struct {
	ExchangeRate string `json:"exchange_rate" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended locked archived"`
}

type walletResponse struct {
	ID                     string     `json:"id"`
	CustomerID             string     `json:"customer_id"`
	AccountID              string     `json:"account_id"`
	Cryptocurrency         string     `json:"cryptocurrency"`
	Address                string     `json:"address,omitempty"`
	WalletType             string     `json:"wallet_type"`
	Status                 string     `json:"status"`
	RiskLevel              string     `json:"risk_level"`
	ConfirmedBalance       string     `json:"confirmed_balance"`
	UnconfirmedBalance     string     `json:"unconfirmed_balance"`
	Balance                string     `json:"balance"`
	ExchangeRate           string     `json:"exchange_rate"`
	FiatCurrency           string     `json:"fiat_currency"`
	FiatBalance            string     `json:"fiat_balance"`
	DailyLimit             string     `json:"daily_limit"`
	MonthlyLimit           string     `json:"monthly_limit"`
	LastSyncDate           *time.Time `json:"last_sync_date,omitempty"`
	LastExchangeRateUpdate *time.Time `json:"last_exchange_rate_update,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:                     w.ID,
		CustomerID:             w.CustomerID,
		AccountID:              w.AccountID,
		Cryptocurrency:         w.Cryptocurrency,
		Address:                w.Address,
		WalletType:             string(w.Type),
		Status:                 string(w.Status),
		RiskLevel:              string(w.RiskLevel),
		ConfirmedBalance:       w.ConfirmedBalance.StringFixed(money.CryptoScale),
		UnconfirmedBalance:     w.UnconfirmedBalance.StringFixed(money.CryptoScale),
		Balance:                w.Balance.StringFixed(money.CryptoScale),
		ExchangeRate:           w.ExchangeRate.StringFixed(money.RateScale),
		FiatCurrency:           w.FiatCurrency,
		FiatBalance:            w.FiatBalance.StringFixed(money.CryptoScale),
		DailyLimit:             w.DailyLimit.StringFixed(money.CryptoScale),
		MonthlyLimit:           w.MonthlyLimit.StringFixed(money.CryptoScale),
		LastSyncDate:           w.LastSyncDate,
		LastExchangeRateUpdate: w.LastExchangeRateUpdate,
		CreatedAt:              w.CreatedAt,
		UpdatedAt:              w.UpdatedAt,
	}
}

// Create opens a crypto wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	in := CreateInput{
		ID:             req.ID,
		CustomerID:     req.CustomerID,
		AccountID:      req.AccountID,
		Cryptocurrency: req.Cryptocurrency,
		Address:        req.Address,
		Type:           WalletType(req.WalletType),
		RiskLevel:      compliance.RiskLevel(req.RiskLevel),
		FiatCurrency:   req.FiatCurrency,
	}
	var err error
	if in.DailyLimit, err = amountPtr("daily_limit", req.DailyLimit); err != nil {
		return err
	}
	if in.MonthlyLimit, err = amountPtr("monthly_limit", req.MonthlyLimit); err != nil {
		return err
	}
	w, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w))
}

// Get returns a single wallet.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.service.Get(c.UserContext(), c.Params("walletId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(w))
}

// UpdateBalance replaces the wallet balances.
func (h *Handler) UpdateBalance(c *fiber.Ctx) error {
	var req balanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	confirmed, err := money.Parse("confirmed_balance", req.ConfirmedBalance)
	if err != nil {
		return err
	}
	unconfirmed := decimal.Zero
	if req.UnconfirmedBalance != "" {
		if unconfirmed, err = money.Parse("unconfirmed_balance", req.UnconfirmedBalance); err != nil {
			return err
		}
	}
	w, err := h.service.UpdateBalance(c.UserContext(), c.Params("walletId"), confirmed, unconfirmed)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(w))
}

// UpdateExchangeRate sets the wallet's fiat rate.
func (h *Handler) UpdateExchangeRate(c *fiber.Ctx) error {
	var req rateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	rate, err := money.Parse("exchange_rate", req.ExchangeRate)
	if err != nil {
		return err
	}
	w, err := h.service.UpdateExchangeRate(c.UserContext(), c.Params("walletId"), rate)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(w))
}

// SyncExchangeRate pulls the cached market rate into the wallet.
func (h *Handler) SyncExchangeRate(c *fiber.Ctx) error {
	w, err := h.service.SyncExchangeRate(c.UserContext(), c.Params("walletId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(w))
}

// CanWithdraw answers whether ?amount= may leave the wallet.
func (h *Handler) CanWithdraw(c *fiber.Ctx) error {
	amount, err := money.Parse("amount", c.Query("amount"))
	if err != nil {
		return err
	}
	ok, err := h.service.CanWithdraw(c.UserContext(), c.Params("walletId"), amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"wallet_id": c.Params("walletId"), "amount": amount.String(), "allowed": ok})
}

// ChangeStatus moves the wallet to a new lifecycle status.
func (h *Handler) ChangeStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	w, err := h.service.ChangeStatus(c.UserContext(), c.Params("walletId"), Status(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(w))
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
