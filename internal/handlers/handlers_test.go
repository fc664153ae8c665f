package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bastion/internal/logging"
	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAPIKey = "test-api-key"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Store{}, &models.StoreAccount{},
		&models.Claim{}, &models.Admin{}, &models.APIKey{},
	))
	require.NoError(t, db.Create(&models.APIKey{Key: testAPIKey, Name: "test"}).Error)

	app := fiber.New()
	routes.SetupRoutes(app, routes.Deps{
		DB:     db,
		Cache:  repositories.NewMemoryCacheRepository(),
		Logger: logging.NewLogger("error", "test", "test"),
	})

	return &testEnv{app: app, db: db}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *testEnv) seedUser(t *testing.T, name, email string) models.User {
	t.Helper()
	user := models.User{KYCEmail: email, FullName: name}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) seedStore(t *testing.T, name string) models.Store {
	t.Helper()
	store := models.Store{Name: name}
	require.NoError(t, e.db.Create(&store).Error)
	return store
}

func (e *testEnv) seedClaim(t *testing.T, user models.User, store models.Store,
	status models.ClaimStatus, flagged bool, createdAt time.Time, items ...models.ItemData) models.Claim {
	t.Helper()

	account := models.StoreAccount{UserID: user.ID, StoreID: store.ID, EmailAtStore: "shop@x.com"}
	err := e.db.Where("user_id = ? AND store_id = ?", user.ID, store.ID).FirstOrCreate(&account).Error
	require.NoError(t, err)

	claim := models.Claim{
		StoreAccountID: account.ID,
		Status:         status,
		ClaimData:      items,
		IsFlagged:      flagged,
		RiskScore:      50,
		CreatedAt:      createdAt,
	}
	require.NoError(t, e.db.Create(&claim).Error)
	return claim
}

func TestHealthNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health models.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "bastion-api", health.Service)
}

func TestMissingAPIKeyIsRejectedWithDetail(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/", nil)
	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["detail"], "API key")
}

func TestSubmitClaimStartsPending(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")
	store := env.seedStore(t, "Amazon")

	resp, raw := env.request(t, http.MethodPost, "/api/v1/claims/submit", models.ClaimSubmission{
		UserID: user.ID,
		ClaimContext: models.ClaimContext{
			StoreID:      store.ID,
			EmailAtStore: "jane+amz@example.com",
			ClaimData: models.ItemList{
				{ItemName: "Book", Category: "books", Price: 15.99, Quantity: 1},
			},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created models.ClaimResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, models.ClaimPending, created.Status)
	assert.Equal(t, user.ID, created.UserID)
	assert.False(t, created.IsFlagged)
	assert.NotEmpty(t, created.ClaimID)

	// The claim is retrievable through the admin view.
	resp, raw = env.request(t, http.MethodGet, "/api/v1/admin/"+created.ClaimID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var detail models.ClaimDetail
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, "Amazon", detail.StoreName)
	assert.InDelta(t, 15.99, detail.TotalValue, 0.001)
}

func TestSubmitClaimUnknownStore(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")

	resp, raw := env.request(t, http.MethodPost, "/api/v1/claims/submit", models.ClaimSubmission{
		UserID: user.ID,
		ClaimContext: models.ClaimContext{
			StoreID:   "00000000-0000-0000-0000-000000000000",
			ClaimData: models.ItemList{{ItemName: "Book", Category: "books", Price: 10, Quantity: 1}},
		},
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Store not found", body["detail"])
}

func TestUsersListPaginationEnvelope(t *testing.T) {
	env := newTestEnv(t)
	store := env.seedStore(t, "Target")
	for i := 0; i < 15; i++ {
		user := env.seedUser(t, fmt.Sprintf("User %02d", i), fmt.Sprintf("u%02d@example.com", i))
		if i == 0 {
			env.seedClaim(t, user, store, models.ClaimApproved, false, time.Now().AddDate(0, 0, -1),
				models.ItemData{ItemName: "TV", Category: "electronics", Price: 500, Quantity: 1})
			env.seedClaim(t, user, store, models.ClaimPending, false, time.Now(),
				models.ItemData{ItemName: "Mug", Category: "home", Price: 12, Quantity: 1})
		}
	}

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/users/list?page=2&limit=10", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var list models.UserListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Users, 5)
	assert.Equal(t, 2, list.Pagination.Page)
	assert.Equal(t, 15, list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.Pages)

	// Counters satisfy the invariant on page 1 too.
	_, raw = env.request(t, http.MethodGet, "/api/v1/admin/users/list?page=1&limit=20", nil, nil)
	require.NoError(t, json.Unmarshal(raw, &list))
	for _, u := range list.Users {
		assert.Equal(t, u.TotalDisputes, u.PendingDisputes+u.ApprovedDisputes+u.DeniedDisputes)
		if u.TotalDisputes == 2 {
			require.NotNil(t, u.LastActivity)
		}
	}
}

func TestUserDisputesView(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")
	store := env.seedStore(t, "Best Buy")
	env.seedClaim(t, user, store, models.ClaimDenied, false, time.Now().AddDate(0, 0, -2),
		models.ItemData{ItemName: "Phone", Category: "electronics", Price: 900, Quantity: 1},
		models.ItemData{ItemName: "Case", Category: "accessories", Price: 30, Quantity: 1})

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/users/"+user.ID+"/disputes", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var disputes models.DisputeListResponse
	require.NoError(t, json.Unmarshal(raw, &disputes))
	require.Len(t, disputes.Disputes, 1)
	row := disputes.Disputes[0]
	assert.Equal(t, "Best Buy", row.Company)
	assert.Equal(t, "Accessories, Electronics", row.Category)
	assert.Contains(t, row.ItemLink, "https://example-store.com/claim/")
	assert.Equal(t, 1, disputes.Pagination.Pages)
}

func TestUserDetailsAggregatesHistory(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")
	store := env.seedStore(t, "Costco")
	env.seedClaim(t, user, store, models.ClaimApproved, false, time.Now().AddDate(0, 0, -5),
		models.ItemData{ItemName: "Blender", Category: "home", Price: 80, Quantity: 2})

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/users/"+user.ID+"/details", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var detail models.UserDetail
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, 1, detail.User.TotalDisputes)
	assert.Equal(t, 1, detail.User.ApprovedDisputes)
	assert.InDelta(t, 160, detail.User.TotalClaimValue, 0.001)
	require.Len(t, detail.Claims, 1)
	assert.Equal(t, "Costco", detail.Claims[0].StoreName)
}

func TestUnknownUserIs404(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodGet,
		"/api/v1/admin/users/00000000-0000-0000-0000-000000000000/details", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "User not found", body["detail"])
}

func TestFlaggedClaimsListsPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Riska Flaggard", "risk@example.com")
	store := env.seedStore(t, "Walmart")
	env.seedClaim(t, user, store, models.ClaimPending, true, time.Now(),
		models.ItemData{ItemName: "Laptop", Category: "electronics", Price: 1200, Quantity: 1})
	env.seedClaim(t, user, store, models.ClaimDenied, true, time.Now().AddDate(0, 0, -1),
		models.ItemData{ItemName: "Ring", Category: "jewelry", Price: 800, Quantity: 1})

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/flagged-claims", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var flagged models.FlaggedClaimsResponse
	require.NoError(t, json.Unmarshal(raw, &flagged))
	require.Equal(t, 1, flagged.Total)
	assert.Equal(t, models.ClaimPending, flagged.FlaggedClaims[0].Status)
}

func TestUpdateClaimStatusIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")
	store := env.seedStore(t, "Amazon")
	claim := env.seedClaim(t, user, store, models.ClaimPending, false, time.Now(),
		models.ItemData{ItemName: "Book", Category: "books", Price: 20, Quantity: 1})

	resp, raw := env.request(t, http.MethodPut, "/api/v1/admin/"+claim.ID+"/status",
		models.ClaimStatusUpdate{Status: models.ClaimApproved}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var updated models.ClaimStatusUpdated
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, models.ClaimApproved, updated.Status)

	// A resolved claim cannot be resolved again.
	resp, _ = env.request(t, http.MethodPut, "/api/v1/admin/"+claim.ID+"/status",
		models.ClaimStatusUpdate{Status: models.ClaimDenied}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// And PENDING is not a valid target.
	resp, _ = env.request(t, http.MethodPut, "/api/v1/admin/"+claim.ID+"/status",
		models.ClaimStatusUpdate{Status: models.ClaimPending}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.request(t, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Email:    "reviewer@bastion.local",
		Password: "super-secret-1",
		FullName: "Reviewer One",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = env.request(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    "reviewer@bastion.local",
		Password: "super-secret-1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token.AccessToken)
	assert.Equal(t, "bearer", login.Token.TokenType)

	// The bearer token alone grants admin access.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/list", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token.AccessToken)
	adminResp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, adminResp.StatusCode)

	// Wrong password is rejected.
	resp, _ = env.request(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    "reviewer@bastion.local",
		Password: "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAnalyticsSummaryStats(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jane Doe", "jane@example.com")
	store := env.seedStore(t, "Amazon")
	env.seedClaim(t, user, store, models.ClaimApproved, false, time.Now().AddDate(0, 0, -1),
		models.ItemData{ItemName: "Book", Category: "books", Price: 20, Quantity: 1})
	env.seedClaim(t, user, store, models.ClaimPending, false, time.Now().AddDate(0, 0, -2),
		models.ItemData{ItemName: "Mug", Category: "home", Price: 10, Quantity: 1})

	resp, raw := env.request(t, http.MethodGet, "/api/v1/analytics/summary-stats?time_range=7d", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var stats models.SummaryStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 2, stats.TotalSuspiciousDisputes)
	assert.Equal(t, 1, stats.TotalApprovedDisputes)
	assert.Equal(t, 50.0, stats.ApprovalRate)

	resp, _ = env.request(t, http.MethodGet, "/api/v1/analytics/summary-stats?time_range=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Alice Smith", "alice@example.com")
	env.seedUser(t, "Bob Jones", "bob@example.com")

	resp, _ := env.request(t, http.MethodGet, "/api/v1/admin/users/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/users/search?q=alice", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var list models.UserListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Users, 1)
	assert.Equal(t, "Alice Smith", list.Users[0].FullName)
}

func TestUserDisputesMultibyteCategory(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Jeanne Dupont", "jeanne@example.com")
	store := env.seedStore(t, "La Boutique")
	env.seedClaim(t, user, store, models.ClaimPending, false, time.Now(),
		models.ItemData{ItemName: "Lampe", Category: "électronique", Price: 60, Quantity: 1})

	resp, raw := env.request(t, http.MethodGet, "/api/v1/admin/users/"+user.ID+"/disputes", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var disputes models.DisputeListResponse
	require.NoError(t, json.Unmarshal(raw, &disputes))
	require.Len(t, disputes.Disputes, 1)
	assert.Equal(t, "Électronique", disputes.Disputes[0].Category)
}
