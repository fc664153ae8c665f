package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bastion/internal/models"
)

// API is the full surface of the Bastion backend. Client implements it
// over HTTP; Fake implements it from generated data so consumers can run
// without a backend through the identical code path.
type API interface {
	DashboardMetrics(ctx context.Context, timeRange models.TimeRange) (*models.DashboardMetrics, error)
	CategoryDistribution(ctx context.Context) ([]models.CategoryData, error)
	TopDisputedItems(ctx context.Context, limit int) ([]models.TopDisputedItem, error)
	SummaryStats(ctx context.Context, timeRange models.TimeRange) (*models.SummaryStats, error)

	UsersList(ctx context.Context, page, limit int) (*models.UserListResponse, error)
	UserDetails(ctx context.Context, userID string) (*models.UserDetail, error)
	UserDisputes(ctx context.Context, userID string, page, limit int) (*models.DisputeListResponse, error)
	SearchUsers(ctx context.Context, query string, page, limit int) (*models.UserListResponse, error)

	SubmitClaim(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error)
	FlaggedClaims(ctx context.Context, limit int) (*models.FlaggedClaimsResponse, error)
	Claim(ctx context.Context, claimID string) (*models.ClaimDetail, error)
	UpdateClaimStatus(ctx context.Context, claimID string, status models.ClaimStatus) (*models.ClaimStatusUpdated, error)

	Stores(ctx context.Context) ([]models.Store, error)
	CreateStore(ctx context.Context, name string) (*models.Store, error)
	StoreClaims(ctx context.Context, storeID string, limit int) (*models.StoreClaimsResponse, error)

	AnalyzeFraud(ctx context.Context, req models.FraudAnalysisRequest) (*models.FraudAnalysis, error)
	SubmitClaimWithML(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error)
	UserRiskProfile(ctx context.Context, userID string) (*models.RiskProfile, error)

	Health(ctx context.Context) (*models.HealthStatus, error)
}

var _ API = (*Client)(nil)

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// DashboardMetrics fetches the dispute time series for a window.
func (c *Client) DashboardMetrics(ctx context.Context, timeRange models.TimeRange) (*models.DashboardMetrics, error) {
	q := url.Values{"time_range": {string(timeRange)}}
	var out models.DashboardMetrics
	if err := c.get(ctx, "/api/v1/analytics/dashboard-metrics", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CategoryDistribution fetches the dispute breakdown by item category.
func (c *Client) CategoryDistribution(ctx context.Context) ([]models.CategoryData, error) {
	var out []models.CategoryData
	if err := c.get(ctx, "/api/v1/analytics/category-distribution", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopDisputedItems fetches the N most disputed items.
func (c *Client) TopDisputedItems(ctx context.Context, limit int) ([]models.TopDisputedItem, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []models.TopDisputedItem
	if err := c.get(ctx, "/api/v1/analytics/top-disputed-items", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SummaryStats fetches aggregate dispute totals for a window.
func (c *Client) SummaryStats(ctx context.Context, timeRange models.TimeRange) (*models.SummaryStats, error) {
	q := url.Values{"time_range": {string(timeRange)}}
	var out models.SummaryStats
	if err := c.get(ctx, "/api/v1/analytics/summary-stats", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsersList fetches one page of the admin user list.
func (c *Client) UsersList(ctx context.Context, page, limit int) (*models.UserListResponse, error) {
	var out models.UserListResponse
	if err := c.get(ctx, "/api/v1/admin/users/list", pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserDetails fetches one user with their full claim history.
func (c *Client) UserDetails(ctx context.Context, userID string) (*models.UserDetail, error) {
	var out models.UserDetail
	if err := c.get(ctx, fmt.Sprintf("/api/v1/admin/users/%s/details", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserDisputes fetches one page of a user's dispute history.
func (c *Client) UserDisputes(ctx context.Context, userID string, page, limit int) (*models.DisputeListResponse, error) {
	var out models.DisputeListResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v1/admin/users/%s/disputes", userID), pageQuery(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchUsers fetches one page of users matching a name or email query.
func (c *Client) SearchUsers(ctx context.Context, query string, page, limit int) (*models.UserListResponse, error) {
	q := pageQuery(page, limit)
	q.Set("q", query)
	var out models.UserListResponse
	if err := c.get(ctx, "/api/v1/admin/users/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitClaim files a new claim for fraud analysis.
func (c *Client) SubmitClaim(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error) {
	var out models.ClaimResponse
	if err := c.send(ctx, http.MethodPost, "/api/v1/claims/submit", nil, sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FlaggedClaims fetches claims belonging to flagged users.
func (c *Client) FlaggedClaims(ctx context.Context, limit int) (*models.FlaggedClaimsResponse, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out models.FlaggedClaimsResponse
	if err := c.get(ctx, "/api/v1/admin/flagged-claims", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Claim fetches one claim by id.
func (c *Client) Claim(ctx context.Context, claimID string) (*models.ClaimDetail, error) {
	var out models.ClaimDetail
	if err := c.get(ctx, fmt.Sprintf("/api/v1/admin/%s", claimID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClaimStatus resolves a pending claim to APPROVED or DENIED.
func (c *Client) UpdateClaimStatus(ctx context.Context, claimID string, status models.ClaimStatus) (*models.ClaimStatusUpdated, error) {
	body := models.ClaimStatusUpdate{Status: status}
	var out models.ClaimStatusUpdated
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/v1/admin/%s/status", claimID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stores fetches all registered stores.
func (c *Client) Stores(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	if err := c.get(ctx, "/api/v1/stores", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStore registers a new store.
func (c *Client) CreateStore(ctx context.Context, name string) (*models.Store, error) {
	var out models.Store
	if err := c.send(ctx, http.MethodPost, "/api/v1/stores", nil, models.StoreCreate{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreClaims fetches recent claims filed against one store.
func (c *Client) StoreClaims(ctx context.Context, storeID string, limit int) (*models.StoreClaimsResponse, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out models.StoreClaimsResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v1/stores/%s/claims", storeID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeFraud scores a prospective claim without persisting it.
func (c *Client) AnalyzeFraud(ctx context.Context, req models.FraudAnalysisRequest) (*models.FraudAnalysis, error) {
	var out models.FraudAnalysis
	if err := c.send(ctx, http.MethodPost, "/api/v1/ml-fraud/analyze", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitClaimWithML files a claim with full ML scoring attached.
func (c *Client) SubmitClaimWithML(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error) {
	var out models.ClaimResponse
	if err := c.send(ctx, http.MethodPost, "/api/v1/ml-fraud/submit-with-ml", nil, sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserRiskProfile fetches the computed risk profile for one user.
func (c *Client) UserRiskProfile(ctx context.Context, userID string) (*models.RiskProfile, error) {
	var out models.RiskProfile
	if err := c.get(ctx, fmt.Sprintf("/api/v1/ml-fraud/user/%s/risk-profile", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var out models.HealthStatus
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
