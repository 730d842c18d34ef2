package customer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/validation"
)

// Handler exposes customer endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a customer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Passcode  string `json:"passcode" validate:"required,min=6"`
	RiskLevel string `json:"risk_level" validate:"omitempty,oneof=low medium high"`
}

type authenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Passcode string `json:"passcode" validate:"required"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	KYCStatus string    `json:"kyc_status"`
	RiskLevel string    `json:"risk_level"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(c Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		KYCStatus: string(c.KYCStatus),
		RiskLevel: string(c.RiskLevel),
		CreatedAt: c.CreatedAt,
	}
}

// Register handles customer onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	cust, err := h.service.Register(c.UserContext(), RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Passcode:  req.Passcode,
		RiskLevel: compliance.RiskLevel(req.RiskLevel),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(cust))
}

// Get returns a single customer.
func (h *Handler) Get(c *fiber.Ctx) error {
	cust, err := h.service.Get(c.UserContext(), c.Params("customerId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(cust))
}

// Authenticate verifies a passcode without issuing any session.
func (h *Handler) Authenticate(c *fiber.Ctx) error {
	var req authenticateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	cust, err := h.service.Authenticate(c.UserContext(), Credentials{Email: req.Email, Passcode: req.Passcode})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		return err
	}
	return c.JSON(toResponse(cust))
}
