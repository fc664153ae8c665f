package client

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"bastion/internal/models"
)

// Fake is an in-memory API implementation seeded with generated data.
// It stands in for the backend in local mode and in tests, so consumers
// exercise exactly the code path they use in production.
type Fake struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    time.Time
	users  []*models.User
	stores []models.Store
	claims []fakeClaim
}

type fakeClaim struct {
	models.Claim
	UserID       string
	StoreID      string
	EmailAtStore string
}

var _ API = (*Fake)(nil)

var fakeCategories = []string{"electronics", "clothing", "jewelry", "gaming", "beauty", "sports"}

var fakeItems = map[string][]string{
	"electronics": {"Wireless Earbuds", "4K Monitor", "Mechanical Keyboard"},
	"clothing":    {"Denim Jacket", "Running Shoes", "Wool Coat"},
	"jewelry":     {"Silver Necklace", "Gold Ring"},
	"gaming":      {"Game Console", "VR Headset"},
	"beauty":      {"Perfume Set", "Skincare Kit"},
	"sports":      {"Yoga Mat", "Tennis Racket"},
}

// NewFake builds a fake populated with users, stores and claims derived
// deterministically from seed.
func NewFake(seed int64, userCount int) *Fake {
	f := &Fake{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
	f.seedStores()
	f.seedUsers(userCount)
	return f
}

func (f *Fake) seedStores() {
	for _, name := range []string{"Acme Outlet", "Northwind Goods", "Blue Harbor", "Kite & Co"} {
		f.stores = append(f.stores, models.Store{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: f.now.AddDate(-1, 0, 0),
		})
	}
}

func (f *Fake) seedUsers(count int) {
	for i := 0; i < count; i++ {
		u := &models.User{
			ID:        uuid.NewString(),
			KYCEmail:  fmt.Sprintf("customer%03d@example.com", i+1),
			FullName:  fmt.Sprintf("Customer %03d", i+1),
			DOB:       fmt.Sprintf("19%02d-0%d-1%d", 60+f.rng.Intn(40), 1+f.rng.Intn(9), f.rng.Intn(9)),
			RiskScore: f.rng.Intn(101),
			CreatedAt: f.now.AddDate(0, -f.rng.Intn(18), -f.rng.Intn(28)),
		}
		u.IsFlagged = u.RiskScore >= 85
		f.users = append(f.users, u)

		for c := 0; c < f.rng.Intn(6); c++ {
			f.claims = append(f.claims, f.generateClaim(u))
		}
	}
}

func (f *Fake) generateClaim(u *models.User) fakeClaim {
	store := f.stores[f.rng.Intn(len(f.stores))]
	category := fakeCategories[f.rng.Intn(len(fakeCategories))]
	names := fakeItems[category]
	items := models.ItemList{{
		ItemName: names[f.rng.Intn(len(names))],
		Category: category,
		Price:    10 + f.rng.Float64()*990,
		Quantity: 1 + f.rng.Intn(3),
	}}
	status := models.ClaimPending
	switch f.rng.Intn(3) {
	case 1:
		status = models.ClaimApproved
	case 2:
		status = models.ClaimDenied
	}
	return fakeClaim{
		Claim: models.Claim{
			ID:        uuid.NewString(),
			Status:    status,
			ClaimData: items,
			RiskScore: u.RiskScore,
			IsFlagged: u.IsFlagged,
			CreatedAt: f.now.AddDate(0, 0, -f.rng.Intn(120)),
		},
		UserID:       u.ID,
		StoreID:      store.ID,
		EmailAtStore: u.KYCEmail,
	}
}

func (f *Fake) userByID(id string) *models.User {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *Fake) storeByID(id string) *models.Store {
	for i := range f.stores {
		if f.stores[i].ID == id {
			return &f.stores[i]
		}
	}
	return nil
}

func (f *Fake) userClaims(userID string) []fakeClaim {
	var out []fakeClaim
	for _, c := range f.claims {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *Fake) summary(u *models.User) models.UserSummary {
	s := models.UserSummary{
		ID:        u.ID,
		KYCEmail:  u.KYCEmail,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		RiskScore: u.RiskScore,
		IsFlagged: u.IsFlagged,
	}
	for _, c := range f.userClaims(u.ID) {
		s.TotalDisputes++
		switch c.Status {
		case models.ClaimApproved:
			s.ApprovedDisputes++
		case models.ClaimDenied:
			s.DeniedDisputes++
		default:
			s.PendingDisputes++
		}
		if s.LastActivity == nil || c.CreatedAt.After(*s.LastActivity) {
			t := c.CreatedAt
			s.LastActivity = &t
		}
	}
	return s
}

func (f *Fake) detail(c fakeClaim) models.ClaimDetail {
	storeName := "Unknown"
	if st := f.storeByID(c.StoreID); st != nil {
		storeName = st.Name
	}
	return models.ClaimDetail{
		ID:           c.ID,
		UserID:       c.UserID,
		StoreID:      c.StoreID,
		StoreName:    storeName,
		EmailAtStore: c.EmailAtStore,
		Status:       c.Status,
		Items:        c.ClaimData,
		TotalValue:   c.ClaimData.TotalValue(),
		RiskScore:    c.RiskScore,
		IsFlagged:    c.IsFlagged,
		CreatedAt:    c.CreatedAt,
	}
}

// titleCase uppercases the first rune of a category name.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func httpError(endpoint string, status int, detail string) error {
	return &RequestError{Endpoint: endpoint, Kind: KindHTTP, StatusCode: status, Detail: detail}
}

func notFound(endpoint, detail string) error {
	return httpError(endpoint, http.StatusNotFound, detail)
}

// DashboardMetrics buckets generated claims by day within the window.
func (f *Fake) DashboardMetrics(ctx context.Context, timeRange models.TimeRange) (*models.DashboardMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := f.now.AddDate(0, 0, -timeRange.Days())
	suspicious := map[string]int{}
	approved := map[string]int{}
	for _, c := range f.claims {
		if c.CreatedAt.Before(start) {
			continue
		}
		key := c.CreatedAt.Format("Jan 02")
		suspicious[key]++
		if c.Status == models.ClaimApproved {
			approved[key]++
		}
	}
	out := &models.DashboardMetrics{}
	for key, n := range suspicious {
		out.SuspiciousDisputes = append(out.SuspiciousDisputes, models.MetricPoint{Date: key, Value: n})
		out.ApprovedDisputes = append(out.ApprovedDisputes, models.MetricPoint{Date: key, Value: approved[key]})
	}
	sort.Slice(out.SuspiciousDisputes, func(i, j int) bool {
		return out.SuspiciousDisputes[i].Date < out.SuspiciousDisputes[j].Date
	})
	sort.Slice(out.ApprovedDisputes, func(i, j int) bool {
		return out.ApprovedDisputes[i].Date < out.ApprovedDisputes[j].Date
	})
	return out, nil
}

// CategoryDistribution returns category percentages across all claims.
func (f *Fake) CategoryDistribution(ctx context.Context) ([]models.CategoryData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]int{}
	total := 0
	for _, c := range f.claims {
		for _, item := range c.ClaimData {
			counts[titleCase(item.Category)]++
			total++
		}
	}
	out := []models.CategoryData{}
	for name, n := range counts {
		pct := 0
		if total > 0 {
			pct = int(float64(n)/float64(total)*100 + 0.5)
		}
		out = append(out, models.CategoryData{Name: name, Value: pct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	colors := []string{"hsl(var(--chart-1))", "hsl(var(--chart-2))", "hsl(var(--chart-3))", "hsl(var(--chart-4))", "hsl(var(--chart-5))"}
	for i := range out {
		out[i].Color = colors[i%len(colors)]
	}
	return out, nil
}

// TopDisputedItems returns the most frequently claimed items.
func (f *Fake) TopDisputedItems(ctx context.Context, limit int) ([]models.TopDisputedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byItem := map[string]*models.TopDisputedItem{}
	for _, c := range f.claims {
		for _, item := range c.ClaimData {
			entry, ok := byItem[item.ItemName]
			if !ok {
				entry = &models.TopDisputedItem{
					Item:        item.ItemName,
					Category:    titleCase(item.Category),
					ProductLink: "https://example.com/products/" + strings.ReplaceAll(strings.ToLower(item.ItemName), " ", "-"),
				}
				byItem[item.ItemName] = entry
			}
			entry.Disputes++
			if day := c.CreatedAt.Format("2006-01-02"); day > entry.LastDispute {
				entry.LastDispute = day
			}
		}
	}
	out := []models.TopDisputedItem{}
	for _, entry := range byItem {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Disputes > out[j].Disputes })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SummaryStats returns aggregate totals for the window.
func (f *Fake) SummaryStats(ctx context.Context, timeRange models.TimeRange) (*models.SummaryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := f.now.AddDate(0, 0, -timeRange.Days())
	stats := &models.SummaryStats{}
	for _, c := range f.claims {
		if c.CreatedAt.Before(start) {
			continue
		}
		stats.TotalSuspiciousDisputes++
		if c.Status == models.ClaimApproved {
			stats.TotalApprovedDisputes++
		}
	}
	if stats.TotalSuspiciousDisputes > 0 {
		rate := float64(stats.TotalApprovedDisputes) / float64(stats.TotalSuspiciousDisputes) * 100
		stats.ApprovalRate = float64(int(rate*10+0.5)) / 10
	}
	return stats, nil
}

func (f *Fake) pageUsers(users []*models.User, page, limit int) *models.UserListResponse {
	total := len(users)
	pages := models.TotalPages(total, limit)
	page = models.ClampPage(page, pages)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start, end = total, total
	} else if end > total {
		end = total
	}
	out := &models.UserListResponse{
		Users:      []models.UserSummary{},
		Pagination: models.NewPagination(page, limit, total),
	}
	for _, u := range users[start:end] {
		out.Users = append(out.Users, f.summary(u))
	}
	return out
}

// UsersList returns one page of generated users with dispute counters.
func (f *Fake) UsersList(ctx context.Context, page, limit int) (*models.UserListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageUsers(f.users, page, limit), nil
}

// SearchUsers filters by name/email substring, then paginates.
func (f *Fake) SearchUsers(ctx context.Context, query string, page, limit int) (*models.UserListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := strings.ToLower(query)
	var matched []*models.User
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.FullName), q) || strings.Contains(strings.ToLower(u.KYCEmail), q) {
			matched = append(matched, u)
		}
	}
	return f.pageUsers(matched, page, limit), nil
}

// UserDetails returns the profile plus full claim history.
func (f *Fake) UserDetails(ctx context.Context, userID string) (*models.UserDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.userByID(userID)
	if u == nil {
		return nil, notFound("/api/v1/admin/users/"+userID+"/details", "User not found")
	}
	out := &models.UserDetail{
		User:   models.UserDetailProfile{UserSummary: f.summary(u)},
		Claims: []models.ClaimHistory{},
	}
	for _, c := range f.userClaims(userID) {
		d := f.detail(c)
		out.Claims = append(out.Claims, models.ClaimHistory{
			ID:         d.ID,
			Status:     d.Status,
			CreatedAt:  d.CreatedAt,
			StoreName:  d.StoreName,
			Items:      d.Items,
			TotalValue: d.TotalValue,
		})
		out.User.TotalClaimValue += d.TotalValue
	}
	return out, nil
}

// UserDisputes returns one page of a user's dispute rows.
func (f *Fake) UserDisputes(ctx context.Context, userID string, page, limit int) (*models.DisputeListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.userByID(userID) == nil {
		return nil, notFound("/api/v1/admin/users/"+userID+"/disputes", "User not found")
	}
	claims := f.userClaims(userID)
	total := len(claims)
	pages := models.TotalPages(total, limit)
	page = models.ClampPage(page, pages)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start, end = total, total
	} else if end > total {
		end = total
	}
	out := &models.DisputeListResponse{
		Disputes:   []models.DisputeRow{},
		Pagination: models.NewPagination(page, limit, total),
	}
	for _, c := range claims[start:end] {
		d := f.detail(c)
		categories := map[string]bool{}
		for _, item := range d.Items {
			categories[titleCase(item.Category)] = true
		}
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)
		out.Disputes = append(out.Disputes, models.DisputeRow{
			Date:     c.CreatedAt.Format("2006-01-02"),
			Company:  d.StoreName,
			Category: strings.Join(names, ", "),
			ItemLink: "https://example-store.com/claim/" + c.ID,
		})
	}
	return out, nil
}

// SubmitClaim records a new PENDING claim and scores it from the owner's
// current risk score.
func (f *Fake) SubmitClaim(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.userByID(sub.UserID)
	if u == nil {
		return nil, notFound("/api/v1/claims/submit", fmt.Sprintf("User with ID %s not found", sub.UserID))
	}
	if f.storeByID(sub.ClaimContext.StoreID) == nil {
		return nil, notFound("/api/v1/claims/submit", fmt.Sprintf("Store with ID %s not found", sub.ClaimContext.StoreID))
	}
	c := fakeClaim{
		Claim: models.Claim{
			ID:        uuid.NewString(),
			Status:    models.ClaimPending,
			ClaimData: sub.ClaimContext.ClaimData,
			RiskScore: u.RiskScore,
			IsFlagged: u.IsFlagged,
			CreatedAt: f.now,
		},
		UserID:       sub.UserID,
		StoreID:      sub.ClaimContext.StoreID,
		EmailAtStore: sub.ClaimContext.EmailAtStore,
	}
	f.claims = append(f.claims, c)
	return &models.ClaimResponse{
		ClaimID:   c.ID,
		UserID:    sub.UserID,
		Status:    models.ClaimPending,
		RiskScore: u.RiskScore,
		IsFlagged: u.IsFlagged,
		Message:   fmt.Sprintf("Claim submitted (score %d/100).", u.RiskScore),
	}, nil
}

// FlaggedClaims returns claims belonging to flagged users.
func (f *Fake) FlaggedClaims(ctx context.Context, limit int) (*models.FlaggedClaimsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &models.FlaggedClaimsResponse{FlaggedClaims: []models.ClaimDetail{}}
	for _, c := range f.claims {
		if u := f.userByID(c.UserID); u != nil && u.IsFlagged {
			out.FlaggedClaims = append(out.FlaggedClaims, f.detail(c))
		}
		if limit > 0 && len(out.FlaggedClaims) >= limit {
			break
		}
	}
	out.Total = len(out.FlaggedClaims)
	return out, nil
}

// Claim returns one claim by id.
func (f *Fake) Claim(ctx context.Context, claimID string) (*models.ClaimDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.claims {
		if c.ID == claimID {
			d := f.detail(c)
			return &d, nil
		}
	}
	return nil, notFound("/api/v1/admin/"+claimID, "Claim not found")
}

// UpdateClaimStatus resolves a pending claim. Resolved claims are terminal,
// same as the live API.
func (f *Fake) UpdateClaimStatus(ctx context.Context, claimID string, status models.ClaimStatus) (*models.ClaimStatusUpdated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	endpoint := "/api/v1/admin/" + claimID + "/status"
	if !status.Resolved() {
		return nil, httpError(endpoint, http.StatusBadRequest, "Status must be APPROVED or DENIED")
	}

	for i := range f.claims {
		if f.claims[i].ID == claimID {
			if f.claims[i].Status.Resolved() {
				return nil, httpError(endpoint, http.StatusConflict, "Claim has already been resolved")
			}
			f.claims[i].Status = status
			return &models.ClaimStatusUpdated{ClaimID: claimID, Status: status, UpdatedAt: f.now}, nil
		}
	}
	return nil, notFound(endpoint, "Claim not found or update failed")
}

// Stores lists all generated stores.
func (f *Fake) Stores(ctx context.Context) ([]models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Store, len(f.stores))
	copy(out, f.stores)
	return out, nil
}

// CreateStore registers a new store.
func (f *Fake) CreateStore(ctx context.Context, name string) (*models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	store := models.Store{ID: uuid.NewString(), Name: name, CreatedAt: f.now}
	f.stores = append(f.stores, store)
	return &store, nil
}

// StoreClaims lists claims filed against one store.
func (f *Fake) StoreClaims(ctx context.Context, storeID string, limit int) (*models.StoreClaimsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeByID(storeID) == nil {
		return nil, notFound("/api/v1/stores/"+storeID+"/claims", "Store not found")
	}
	out := &models.StoreClaimsResponse{StoreID: storeID, Claims: []models.ClaimDetail{}}
	for _, c := range f.claims {
		if c.StoreID == storeID {
			out.Claims = append(out.Claims, f.detail(c))
		}
		if limit > 0 && len(out.Claims) >= limit {
			break
		}
	}
	out.Total = len(out.Claims)
	return out, nil
}

// AnalyzeFraud scores a prospective claim from the user's current state.
func (f *Fake) AnalyzeFraud(ctx context.Context, req models.FraudAnalysisRequest) (*models.FraudAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.userByID(req.UserID)
	if u == nil {
		return nil, notFound("/api/v1/ml-fraud/analyze", fmt.Sprintf("User with ID %s not found", req.UserID))
	}
	return &models.FraudAnalysis{
		FraudScore:       u.RiskScore,
		Confidence:       0.8,
		BehaviorAnalysis: "Generated profile; no live model behind the fake.",
		UserProfile: models.RiskUserProfile{
			RiskScore:   u.RiskScore,
			IsFlagged:   u.IsFlagged,
			TotalClaims: len(f.userClaims(u.ID)),
			CreatedAt:   u.CreatedAt.Format(time.RFC3339),
			Email:       u.KYCEmail,
			Name:        u.FullName,
		},
		HistoricalSummary: f.history(u.ID),
	}, nil
}

// SubmitClaimWithML behaves like SubmitClaim in the fake.
func (f *Fake) SubmitClaimWithML(ctx context.Context, sub models.ClaimSubmission) (*models.ClaimResponse, error) {
	return f.SubmitClaim(ctx, sub)
}

// UserRiskProfile returns the generated user's risk profile.
func (f *Fake) UserRiskProfile(ctx context.Context, userID string) (*models.RiskProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.userByID(userID)
	if u == nil {
		return nil, notFound("/api/v1/ml-fraud/user/"+userID+"/risk-profile", fmt.Sprintf("User with ID %s not found", userID))
	}
	history := f.history(userID)
	frequency := "Low"
	if history.RecentClaims30d > 5 {
		frequency = "High"
	} else if history.RecentClaims30d > 2 {
		frequency = "Medium"
	}
	return &models.RiskProfile{
		UserID: userID,
		UserProfile: models.RiskUserProfile{
			RiskScore:   u.RiskScore,
			IsFlagged:   u.IsFlagged,
			TotalClaims: history.TotalClaims,
			CreatedAt:   u.CreatedAt.Format(time.RFC3339),
			Email:       u.KYCEmail,
			Name:        u.FullName,
		},
		HistoricalSummary: history,
		RiskIndicators: models.RiskIndicators{
			CurrentRiskScore: u.RiskScore,
			IsFlagged:        u.IsFlagged,
			ClaimFrequency:   frequency,
			AvgClaimValue:    history.AvgClaimValue,
		},
	}, nil
}

func (f *Fake) history(userID string) models.HistoricalSummary {
	claims := f.userClaims(userID)
	summary := models.HistoricalSummary{TotalClaims: len(claims), MostCommonCategories: []models.CategoryCount{}}
	counts := map[string]int{}
	cutoff := f.now.AddDate(0, 0, -30)
	for _, c := range claims {
		summary.TotalValue += c.ClaimData.TotalValue()
		for _, item := range c.ClaimData {
			counts[item.Category]++
		}
		if c.CreatedAt.After(cutoff) {
			summary.RecentClaims30d++
		}
	}
	if len(claims) > 0 {
		summary.AvgClaimValue = summary.TotalValue / float64(len(claims))
	}
	for category, n := range counts {
		summary.MostCommonCategories = append(summary.MostCommonCategories, models.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(summary.MostCommonCategories, func(i, j int) bool {
		return summary.MostCommonCategories[i].Count > summary.MostCommonCategories[j].Count
	})
	if len(summary.MostCommonCategories) > 5 {
		summary.MostCommonCategories = summary.MostCommonCategories[:5]
	}
	return summary
}

// Health always reports healthy.
func (f *Fake) Health(ctx context.Context) (*models.HealthStatus, error) {
	return &models.HealthStatus{
		Status:    "healthy",
		Service:   "Project BASTION API (fake)",
		Version:   "1.0.0",
		Timestamp: f.now.Format(time.RFC3339),
	}, nil
}
