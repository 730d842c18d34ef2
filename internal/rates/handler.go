package rates

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/validation"
)

// Handler publishes and reads market rates.
type Handler struct {
	cache Cache
}

// NewHandler builds a rates HTTP handler.
func NewHandler(cache Cache) *Handler {
	return &Handler{cache: cache}
}

type putRequest struct {
	Rate string `json:"rate" validate:"required"`
}

type quoteResponse struct {
	Symbol    string    `json:"symbol"`
	Fiat      string    `json:"fiat"`
	Rate      string    `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(q Quote) quoteResponse {
	return quoteResponse{Symbol: q.Symbol, Fiat: q.Fiat, Rate: q.Rate.StringFixed(money.RateScale), UpdatedAt: q.UpdatedAt}
}

// Put stores the latest rate for :symbol in :fiat.
func (h *Handler) Put(c *fiber.Ctx) error {
	var req putRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	rate, err := money.Parse("rate", req.Rate)
	if err != nil {
		return err
	}
	q, err := Normalize(Quote{Symbol: c.Params("symbol"), Fiat: c.Params("fiat"), Rate: rate, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := h.cache.Put(c.UserContext(), q); err != nil {
		return err
	}
	return c.JSON(toResponse(q))
}

// Get returns the cached rate for :symbol in :fiat.
func (h *Handler) Get(c *fiber.Ctx) error {
	q, err := h.cache.Get(c.UserContext(), c.Params("symbol"), c.Params("fiat"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(q))
}
