package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/transaction"
)

// RegisterAccountRoutes wires account balance and lifecycle endpoints. The
// account transaction listing lives here so the path stays under /accounts.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, txs *transaction.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/:accountId", h.Get)
	r.Post("/accounts/:accountId/credit", h.Credit)
	r.Post("/accounts/:accountId/debit", h.Debit)
	r.Post("/accounts/:accountId/block", h.Block)
	r.Post("/accounts/:accountId/unblock", h.Unblock)
	r.Get("/accounts/:accountId/can-withdraw", h.CanWithdraw)
	r.Get("/accounts/:accountId/can-overdraft", h.CanOverdraft)
	r.Patch("/accounts/:accountId/status", h.ChangeStatus)
	r.Get("/accounts/:accountId/transactions", txs.ListByAccount)
}
