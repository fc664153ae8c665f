package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/fraud"
	"bastion/internal/services/riskcache"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MLFraudHandler struct {
	fraud  fraud.Service
	risk   riskcache.Service
	claims *ClaimHandler
	logger *slog.Logger
}

func NewMLFraudHandler(fraudSvc fraud.Service, risk riskcache.Service,
	claims *ClaimHandler, logger *slog.Logger) *MLFraudHandler {
	return &MLFraudHandler{fraud: fraudSvc, risk: risk, claims: claims, logger: logger}
}

// Analyze handles POST /ml-fraud/analyze.
func (h *MLFraudHandler) Analyze(c *fiber.Ctx) error {
	var req models.FraudAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if req.UserID == "" {
		return response.BadRequest(c, "user_id is required")
	}
	if len(req.ClaimData) == 0 {
		return response.BadRequest(c, "claim_data must not be empty")
	}

	analysis, err := h.fraud.Analyze(req)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Fraud analysis failed")
	}
	return c.JSON(analysis)
}

// SubmitWithML handles POST /ml-fraud/submit-with-ml. It runs the full
// behavioral analysis before persisting, then submits through the regular
// claim path with the behavioral score attached.
func (h *MLFraudHandler) SubmitWithML(c *fiber.Ctx) error {
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

	if _, err := h.claims.stores.GetByID(submission.ClaimContext.StoreID); err != nil {
		if errors.Is(err, repositories.ErrStoreNotFound) {
			return response.NotFound(c, "Store not found")
		}
		return response.ServerError(c, "Failed to verify store")
	}

	analysis, err := h.fraud.Analyze(models.FraudAnalysisRequest{
		UserID:    submission.UserID,
		ClaimData: submission.ClaimContext.ClaimData,
		StoreID:   submission.ClaimContext.StoreID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Fraud analysis failed")
	}

	assessment := fraud.Assessment{
		Score:   analysis.FraudScore,
		Flagged: analysis.FraudScore >= 85 || (analysis.UserProfile.IsFlagged && analysis.FraudScore >= 60),
	}
	claim, err := h.claims.persist(submission, assessment)
	if err != nil {
		return response.ServerError(c, "Failed to save claim")
	}

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

// RiskProfile handles GET /ml-fraud/user/:id/risk-profile.
func (h *MLFraudHandler) RiskProfile(c *fiber.Ctx) error {
	profile, err := h.fraud.RiskProfile(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Failed to build risk profile")
	}
	return c.JSON(profile)
}

// CacheStats handles GET /ml-fraud/cache-stats.
func (h *MLFraudHandler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(h.risk.Stats())
}
