package handlers

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/utils/pagination"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

type UserHandler struct {
	users  repositories.UserRepository
	claims repositories.ClaimRepository
}

func NewUserHandler(users repositories.UserRepository, claims repositories.ClaimRepository) *UserHandler {
	return &UserHandler{users: users, claims: claims}
}

// List handles GET /admin/users/list.
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.ParseFromRequest(c, defaultPageLimit, maxPageLimit)

	users, total, err := h.users.List(params.Offset(), params.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to fetch users")
	}

	summaries, err := h.summarize(users)
	if err != nil {
		return response.ServerError(c, "Failed to fetch dispute counters")
	}

	return c.JSON(models.UserListResponse{
		Users:      summaries,
		Pagination: pagination.Envelope(params, total),
	})
}

// Search handles GET /admin/users/search?q=.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return response.BadRequest(c, "Search query is required")
	}

	params := pagination.ParseFromRequest(c, defaultPageLimit, maxPageLimit)
	users, total, err := h.users.Search(query, params.Offset(), params.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to search users")
	}

	summaries, err := h.summarize(users)
	if err != nil {
		return response.ServerError(c, "Failed to fetch dispute counters")
	}

	return c.JSON(models.UserListResponse{
		Users:      summaries,
		Pagination: pagination.Envelope(params, total),
	})
}

// Details handles GET /admin/users/:id/details.
func (h *UserHandler) Details(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Failed to fetch user details")
	}

	history, err := h.claims.ListByUser(user.ID)
	if err != nil {
		return response.ServerError(c, "Failed to fetch user claims")
	}

	profile := models.UserDetailProfile{UserSummary: summaryOf(user)}
	claims := make([]models.ClaimHistory, 0, len(history))
	for _, rec := range history {
		entry := rec.History()
		profile.TotalClaimValue += entry.TotalValue
		countStatus(&profile.UserSummary, rec.Status)
		claims = append(claims, entry)
	}
	if len(history) > 0 {
		last := history[0].Claim.CreatedAt
		profile.LastActivity = &last
	}

	return c.JSON(models.UserDetail{User: profile, Claims: claims})
}

// Disputes handles GET /admin/users/:id/disputes.
func (h *UserHandler) Disputes(c *fiber.Ctx) error {
	userID := c.Params("id")
	if _, err := h.users.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, "Failed to fetch user")
	}

	params := pagination.ParseFromRequest(c, defaultPageLimit, maxPageLimit)
	records, total, err := h.claims.ListByUserPage(userID, params.Offset(), params.Limit)
	if err != nil {
		return response.ServerError(c, "Failed to fetch user disputes")
	}

	disputes := make([]models.DisputeRow, 0, len(records))
	for _, rec := range records {
		disputes = append(disputes, models.DisputeRow{
			Date:     rec.Claim.CreatedAt.Format("2006-01-02"),
			Company:  rec.StoreName,
			Category: categoriesOf(rec.ClaimData),
			ItemLink: "https://example-store.com/claim/" + rec.Claim.ID,
		})
	}

	return c.JSON(models.DisputeListResponse{
		Disputes:   disputes,
		Pagination: pagination.Envelope(params, total),
	})
}

// summarize attaches dispute counters to a page of users.
func (h *UserHandler) summarize(users []models.User) ([]models.UserSummary, error) {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	counters, err := h.claims.CountersForUsers(ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summary := summaryOf(&users[i])
		if counts, ok := counters[users[i].ID]; ok {
			summary.TotalDisputes = counts.Total
			summary.PendingDisputes = counts.Pending
			summary.ApprovedDisputes = counts.Approved
			summary.DeniedDisputes = counts.Denied
			summary.LastActivity = counts.LastActivity
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func summaryOf(user *models.User) models.UserSummary {
	return models.UserSummary{
		ID:        user.ID,
		KYCEmail:  user.KYCEmail,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
		RiskScore: user.RiskScore,
		IsFlagged: user.IsFlagged,
	}
}

func countStatus(summary *models.UserSummary, status models.ClaimStatus) {
	summary.TotalDisputes++
	switch status {
	case models.ClaimPending:
		summary.PendingDisputes++
	case models.ClaimApproved:
		summary.ApprovedDisputes++
	case models.ClaimDenied:
		summary.DeniedDisputes++
	}
}

// categoriesOf joins the distinct title-cased categories of a claim.
func categoriesOf(items models.ItemList) string {
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(item.Category)
		name := string(unicode.ToUpper(r)) + item.Category[size:]
		if !seen[name] {
			seen[name] = true
			categories = append(categories, name)
		}
	}
	if len(categories) == 0 {
		return "Unknown"
	}
	sort.Strings(categories)
	return strings.Join(categories, ", ")
}
