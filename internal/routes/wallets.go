package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/cryptowallet"
	"github.com/corebank/corebank/internal/rates"
)

// RegisterWalletRoutes wires crypto wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *cryptowallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:walletId", h.Get)
	r.Put("/wallets/:walletId/balance", h.UpdateBalance)
	r.Put("/wallets/:walletId/exchange-rate", h.UpdateExchangeRate)
	r.Post("/wallets/:walletId/exchange-rate/sync", h.SyncExchangeRate)
	r.Get("/wallets/:walletId/can-withdraw", h.CanWithdraw)
	r.Patch("/wallets/:walletId/status", h.ChangeStatus)
}

// RegisterRateRoutes wires the exchange-rate cache endpoints.
func RegisterRateRoutes(r fiber.Router, h *rates.Handler) {
	r.Put("/rates/:symbol/:fiat", h.Put)
	r.Get("/rates/:symbol/:fiat", h.Get)
}
