package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/transaction"
)

// RegisterTransactionRoutes wires transaction endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler) {
	r.Post("/transactions", h.Create)
	r.Get("/transactions/:transactionId", h.Get)
	r.Patch("/transactions/:transactionId", h.Update)
	r.Post("/transactions/:transactionId/status", h.Transition)
}
