package handlers

import (
	"bastion/internal/models"
	"bastion/internal/services/analytics"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analytics analytics.Service
}

func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

// DashboardMetrics handles GET /analytics/dashboard-metrics.
func (h *AnalyticsHandler) DashboardMetrics(c *fiber.Ctx) error {
	timeRange, ok := parseTimeRange(c)
	if !ok {
		return response.BadRequest(c, "time_range must be one of 7d, 1m, 3m, 1y")
	}

	metrics, err := h.analytics.DashboardMetrics(timeRange)
	if err != nil {
		return response.ServerError(c, "Failed to fetch dashboard metrics")
	}
	return c.JSON(metrics)
}

// CategoryDistribution handles GET /analytics/category-distribution.
func (h *AnalyticsHandler) CategoryDistribution(c *fiber.Ctx) error {
	distribution, err := h.analytics.CategoryDistribution()
	if err != nil {
		return response.ServerError(c, "Failed to fetch category distribution")
	}
	if distribution == nil {
		distribution = []models.CategoryData{}
	}
	return c.JSON(distribution)
}

// TopDisputedItems handles GET /analytics/top-disputed-items.
func (h *AnalyticsHandler) TopDisputedItems(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 5, 20)

	items, err := h.analytics.TopDisputedItems(limit)
	if err != nil {
		return response.ServerError(c, "Failed to fetch top disputed items")
	}
	if items == nil {
		items = []models.TopDisputedItem{}
	}
	return c.JSON(items)
}

// SummaryStats handles GET /analytics/summary-stats.
func (h *AnalyticsHandler) SummaryStats(c *fiber.Ctx) error {
	timeRange, ok := parseTimeRange(c)
	if !ok {
		return response.BadRequest(c, "time_range must be one of 7d, 1m, 3m, 1y")
	}

	stats, err := h.analytics.SummaryStats(timeRange)
	if err != nil {
		return response.ServerError(c, "Failed to fetch summary stats")
	}
	return c.JSON(stats)
}

func parseTimeRange(c *fiber.Ctx) (models.TimeRange, bool) {
	timeRange := models.TimeRange(c.Query("time_range", string(models.Range7Days)))
	return timeRange, timeRange.Valid()
}
