package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/fraud"
	"bastion/internal/services/riskcache"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ClaimHandler struct {
	users  repositories.UserRepository
	claims repositories.ClaimRepository
	stores repositories.StoreRepository
	fraud  fraud.Service
	risk   riskcache.Service
	logger *slog.Logger
}

func NewClaimHandler(users repositories.UserRepository, claims repositories.ClaimRepository,
	stores repositories.StoreRepository, fraudSvc fraud.Service, risk riskcache.Service,
	logger *slog.Logger) *ClaimHandler {
	return &ClaimHandler{
		users:  users,
		claims: claims,
		stores: stores,
		fraud:  fraudSvc,
		risk:   risk,
		logger: logger,
	}
}

// Submit handles POST /claims/submit.
func (h *ClaimHandler) Submit(c *fiber.Ctx) error {
	var submission models.ClaimSubmission
	if err := c.BodyParser(&submission); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if submission.UserID == "" || submission.ClaimContext.StoreID == "" {
		return response.BadRequest(c, "user_id and claim_context.store_id are required")
	}
	if len(submission.ClaimContext.ClaimData) == 0 {
		return response.BadRequest(c, "claim_context.claim_data must not be empty")
	}

	if _, err := h.users.GetByID(submission.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Failed to verify user")
	}
	if _, err := h.stores.GetByID(submission.ClaimContext.StoreID); err != nil {
		if errors.Is(err, repositories.ErrStoreNotFound) {
			return response.NotFound(c, "Store not found")
		}
		return response.ServerError(c, "Failed to verify store")
	}

	assessment, err := h.fraud.ScoreClaim(
		submission.UserID,
		submission.ClaimContext.ClaimData,
		submission.ClaimContext.EmailAtStore,
		submission.ClaimContext.StoreID,
	)
	if err != nil {
		return response.ServerError(c, "Failed to score claim")
	}

	claim, err := h.persist(submission, assessment)
	if err != nil {
		return response.ServerError(c, "Failed to save claim")
	}

	// Refresh the cached risk profile off the request path.
	go func(userID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.risk.Recalculate(ctx, userID); err != nil {
			h.logger.Warn("risk recalculation failed", "user_id", userID, "error", err)
		}
	}(submission.UserID)

	message := "Claim submitted successfully"
	if assessment.Flagged {
		message = "Claim submitted and flagged for review"
	}
	return c.Status(fiber.StatusCreated).JSON(models.ClaimResponse{
		ClaimID:   claim.ID,
		UserID:    submission.UserID,
		Status:    claim.Status,
		RiskScore: assessment.Score,
		IsFlagged: assessment.Flagged,
		Message:   message,
	})
}

// Flagged handles GET /admin/flagged-claims.
func (h *ClaimHandler) Flagged(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 100, 500)

	records, err := h.claims.ListFlagged(limit)
	if err != nil {
		return response.ServerError(c, "Failed to fetch flagged claims")
	}

	flagged := make([]models.ClaimDetail, 0, len(records))
	for _, rec := range records {
		flagged = append(flagged, rec.Detail())
	}
	return c.JSON(models.FlaggedClaimsResponse{FlaggedClaims: flagged, Total: len(flagged)})
}

// Get handles GET /claims/:id.
func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	record, err := h.claims.GetDetail(c.Params("claim_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrClaimNotFound) {
			return response.NotFound(c, "Claim not found")
		}
		return response.ServerError(c, "Failed to fetch claim")
	}
	return c.JSON(record.Detail())
}

// UpdateStatus handles PUT /admin/:claim_id/status.
func (h *ClaimHandler) UpdateStatus(c *fiber.Ctx) error {
	var update models.ClaimStatusUpdate
	if err := c.BodyParser(&update); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if !update.Status.Resolved() {
		return response.BadRequest(c, "Status must be APPROVED or DENIED")
	}

	record, err := h.claims.UpdateStatus(c.Params("claim_id"), update.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrClaimNotFound):
			return response.NotFound(c, "Claim not found")
		case errors.Is(err, repositories.ErrClaimResolved):
			return response.Conflict(c, "Claim has already been resolved")
		default:
			return response.ServerError(c, "Failed to update claim status")
		}
	}

	return c.JSON(models.ClaimStatusUpdated{
		ClaimID:   record.Claim.ID,
		Status:    record.Status,
		UpdatedAt: time.Now().UTC(),
	})
}

// persist finds or creates the store account and saves the scored claim.
func (h *ClaimHandler) persist(submission models.ClaimSubmission, assessment fraud.Assessment) (*models.Claim, error) {
	ctx := submission.ClaimContext

	account, err := h.claims.FindAccount(submission.UserID, ctx.StoreID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account = &models.StoreAccount{
			UserID:       submission.UserID,
			StoreID:      ctx.StoreID,
			EmailAtStore: ctx.EmailAtStore,
		}
		if err := h.claims.CreateAccount(account); err != nil {
			return nil, err
		}
	}

	claim := &models.Claim{
		StoreAccountID: account.ID,
		Status:         models.ClaimPending,
		ClaimData:      ctx.ClaimData,
		RiskScore:      assessment.Score,
		IsFlagged:      assessment.Flagged,
	}
	if err := h.claims.Create(claim); err != nil {
		return nil, err
	}
	return claim, nil
}

func parseLimit(raw string, fallback, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
