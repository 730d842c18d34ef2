package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/customer"
)

// RegisterCustomerRoutes wires customer onboarding endpoints.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler) {
	r.Post("/customers", h.Register)
	r.Post("/customers/authenticate", h.Authenticate)
	r.Get("/customers/:customerId", h.Get)
}
