package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/travel-desk/itinerary-service/internal/api/dto"
	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/service"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login/.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAuthResponse(result.Identity, result.Tokens))
}

// Register handles POST /auth/register/.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewAuthResponse(result.Identity, result.Tokens))
}

// Logout handles POST /auth/logout/. A malformed body is reported as an invalid token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidToken()
	}
	if err := h.auth.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Successfully logged out"})
}

// Refresh handles POST /auth/token/refresh/.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidToken()
	}
	access, err := h.auth.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(dto.RefreshResponse{Access: access})
}

// Profile handles GET /auth/profile/.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	identity, err := h.auth.CurrentProfile(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserSummary(identity))
}

// EmployeeProfile handles GET /auth/employee-profile/.
func (h *AuthHandler) EmployeeProfile(c *fiber.Ctx) error {
	caller, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	employee, err := h.auth.EmployeeProfile(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEmployeeSummary(employee))
}
