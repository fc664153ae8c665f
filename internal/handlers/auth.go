package handlers

import (
	"errors"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/auth"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.auth.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, repositories.ErrAdminExists):
			return response.Conflict(c, "Email already registered")
		default:
			return response.ServerError(c, "Registration failed")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.auth.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Invalid email or password")
		}
		return response.ServerError(c, "Login failed")
	}
	return c.JSON(result)
}
