package handlers

import (
	"errors"
	"strings"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	stores repositories.StoreRepository
	claims repositories.ClaimRepository
}

func NewStoreHandler(stores repositories.StoreRepository, claims repositories.ClaimRepository) *StoreHandler {
	return &StoreHandler{stores: stores, claims: claims}
}

// List handles GET /stores.
func (h *StoreHandler) List(c *fiber.Ctx) error {
	stores, err := h.stores.List()
	if err != nil {
		return response.ServerError(c, "Failed to fetch stores")
	}
	if stores == nil {
		stores = []models.Store{}
	}
	return c.JSON(stores)
}

// Create handles POST /stores.
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var input models.StoreCreate
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return response.BadRequest(c, "Store name is required")
	}

	store := &models.Store{Name: name}
	if err := h.stores.Create(store); err != nil {
		if errors.Is(err, repositories.ErrStoreNameTaken) {
			return response.Conflict(c, "Store name already exists")
		}
		return response.ServerError(c, "Failed to create store")
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// Claims handles GET /stores/:id/claims.
func (h *StoreHandler) Claims(c *fiber.Ctx) error {
	storeID := c.Params("id")
	if _, err := h.stores.GetByID(storeID); err != nil {
		if errors.Is(err, repositories.ErrStoreNotFound) {
			return response.NotFound(c, "Store not found")
		}
		return response.ServerError(c, "Failed to fetch store")
	}

	limit := parseLimit(c.Query("limit"), 50, 200)
	records, err := h.claims.ListByStore(storeID, limit)
	if err != nil {
		return response.ServerError(c, "Failed to fetch store claims")
	}

	claims := make([]models.ClaimDetail, 0, len(records))
	for _, rec := range records {
		claims = append(claims, rec.Detail())
	}
	return c.JSON(models.StoreClaimsResponse{StoreID: storeID, Claims: claims, Total: len(claims)})
}
