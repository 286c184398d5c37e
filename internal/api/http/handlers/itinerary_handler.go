package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/travel-desk/itinerary-service/internal/api/dto"
	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/service"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

// ItineraryHandler exposes the owner-scoped itinerary endpoints.
type ItineraryHandler struct {
	itineraries *service.ItineraryService
}

// NewItineraryHandler constructs handler.
func NewItineraryHandler(itineraries *service.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{itineraries: itineraries}
}

// List handles GET /itineraries/.
func (h *ItineraryHandler) List(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}

	req := service.PageRequest{Page: 1}
	if raw := c.Query("page"); raw != "" {
		page, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return service.NewInvalidPageError()
		}
		req.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, convErr := strconv.Atoi(raw); convErr == nil {
			req.PageSize = size
		}
	}

	page, err := h.itineraries.List(c.UserContext(), owner, req)
	if err != nil {
		return err
	}
	base := c.BaseURL() + c.Path()
	return c.JSON(dto.NewItineraryListResponse(page, func(n int) string {
		return fmt.Sprintf("%s?page=%d&page_size=%d", base, n, page.PageSize)
	}))
}

// Create handles POST /itineraries/.
func (h *ItineraryHandler) Create(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	itinerary, err := h.itineraries.Create(c.UserContext(), owner, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewItineraryResponse(itinerary))
}

// Get handles GET /itineraries/:id/.
func (h *ItineraryHandler) Get(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := itineraryID(c)
	if err != nil {
		return err
	}

	itinerary, err := h.itineraries.Retrieve(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItineraryResponse(itinerary))
}

// Update handles PUT /itineraries/:id/ as a partial update.
func (h *ItineraryHandler) Update(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := itineraryID(c)
	if err != nil {
		return err
	}
	var req dto.ItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	itinerary, err := h.itineraries.Update(c.UserContext(), owner, id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItineraryResponse(itinerary))
}

// Withdraw handles PATCH /itineraries/:id/.
func (h *ItineraryHandler) Withdraw(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := itineraryID(c)
	if err != nil {
		return err
	}

	itinerary, err := h.itineraries.Withdraw(c.UserContext(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItineraryResponse(itinerary))
}

// Delete handles DELETE /itineraries/:id/.
func (h *ItineraryHandler) Delete(c *fiber.Ctx) error {
	owner, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	id, err := itineraryID(c)
	if err != nil {
		return err
	}

	if err := h.itineraries.Delete(c.UserContext(), owner, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// itineraryID parses the path id; anything non-numeric is simply not found.
func itineraryID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("Itinerary", nil)
	}
	return id, nil
}
