package fraud

import (
	"testing"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubUsers struct {
	repositories.UserRepository
	user *models.User
}

func (s *stubUsers) GetByID(id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, repositories.ErrUserNotFound
	}
	return s.user, nil
}

type stubClaims struct {
	repositories.ClaimRepository
	history []repositories.ClaimRecord
}

func (s *stubClaims) ListByUser(userID string) ([]repositories.ClaimRecord, error) {
	return s.history, nil
}

func newTestService(user *models.User, history []repositories.ClaimRecord) *service {
	return &service{
		users:  &stubUsers{user: user},
		claims: &stubClaims{history: history},
		now:    func() time.Time { return testNow },
	}
}

func record(storeID, email string, createdAt time.Time, items ...models.ItemData) repositories.ClaimRecord {
	return repositories.ClaimRecord{
		Claim: models.Claim{
			ID:        "c-" + createdAt.Format("20060102150405"),
			Status:    models.ClaimPending,
			ClaimData: items,
			CreatedAt: createdAt,
		},
		UserID:       "u1",
		StoreID:      storeID,
		EmailAtStore: email,
		StoreName:    "Store",
	}
}

func item(category string, price float64) models.ItemData {
	return models.ItemData{ItemName: "item", Category: category, Price: price, Quantity: 1}
}

func TestFrequencyRiskTiers(t *testing.T) {
	assert.Equal(t, 0, frequencyRisk(0))
	assert.Equal(t, 20, frequencyRisk(2))
	assert.Equal(t, 50, frequencyRisk(5))
	assert.Equal(t, 75, frequencyRisk(10))
	assert.Equal(t, 100, frequencyRisk(11))
}

func TestValueRiskNewUser(t *testing.T) {
	assert.Equal(t, 60, valueRisk(1500, nil))
	assert.Equal(t, 30, valueRisk(700, nil))
	assert.Equal(t, 10, valueRisk(100, nil))
}

func TestValueRiskDeviationFromAverage(t *testing.T) {
	history := []repositories.ClaimRecord{
		record("s1", "a@x.com", testNow.AddDate(0, -3, 0), item("clothing", 100)),
		record("s1", "a@x.com", testNow.AddDate(0, -2, 0), item("clothing", 100)),
	}

	assert.Equal(t, 10, valueRisk(120, history))  // ratio 1.2
	assert.Equal(t, 30, valueRisk(250, history))  // ratio 2.5
	assert.Equal(t, 60, valueRisk(450, history))  // ratio 4.5
	assert.Equal(t, 90, valueRisk(1000, history)) // ratio 10
}

func TestEmailRiskCountsDistinctAddresses(t *testing.T) {
	history := []repositories.ClaimRecord{
		record("s1", "a@x.com", testNow.AddDate(0, -1, 0), item("clothing", 50)),
		record("s2", "b@x.com", testNow.AddDate(0, -2, 0), item("clothing", 50)),
		record("s3", "c@x.com", testNow.AddDate(0, -3, 0), item("clothing", 50)),
	}

	assert.Equal(t, 10, emailRisk(nil, "a@x.com"))
	assert.Equal(t, 25, emailRisk(history, "a@x.com")) // 3 distinct
	assert.Equal(t, 25, emailRisk(history, "d@x.com")) // 4 distinct
}

func TestCategoryRiskRatios(t *testing.T) {
	assert.Equal(t, 0, categoryRisk(nil))
	assert.Equal(t, 70, categoryRisk(models.ItemList{item("electronics", 1), item("Jewelry", 1)}))
	assert.Equal(t, 50, categoryRisk(models.ItemList{item("electronics", 1), item("books", 1)}))
	assert.Equal(t, 30, categoryRisk(models.ItemList{item("clothing", 1), item("beauty", 1)}))
	assert.Equal(t, 10, categoryRisk(models.ItemList{item("books", 1), item("garden", 1)}))
}

func TestStoreRiskConcentration(t *testing.T) {
	concentrated := make([]repositories.ClaimRecord, 0, 5)
	for i := 0; i < 5; i++ {
		concentrated = append(concentrated, record("s1", "a@x.com", testNow.AddDate(0, 0, -i), item("clothing", 50)))
	}

	assert.Equal(t, 5, storeRisk(nil, "s1"))
	assert.Equal(t, 60, storeRisk(concentrated, "s1"))
	assert.Equal(t, 10, storeRisk(concentrated, "s2"))
}

func TestShouldFlagThresholds(t *testing.T) {
	assert.True(t, shouldFlag(85, false))
	assert.True(t, shouldFlag(75, false))
	assert.False(t, shouldFlag(74, false))
	assert.True(t, shouldFlag(60, true))
	assert.False(t, shouldFlag(59, true))
}

func TestScoreClaimCleanUserStaysLow(t *testing.T) {
	user := &models.User{ID: "u1", CreatedAt: testNow.AddDate(-1, 0, 0)}
	svc := newTestService(user, nil)

	got, err := svc.ScoreClaim("u1", models.ItemList{item("books", 40)}, "a@x.com", "s1")
	require.NoError(t, err)

	assert.False(t, got.Flagged)
	assert.Less(t, got.Score, 20)
}

func TestScoreClaimHighRiskUserGetsFlagged(t *testing.T) {
	user := &models.User{ID: "u1", IsFlagged: true}
	history := make([]repositories.ClaimRecord, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history,
			record("s1", "email"+string(rune('a'+i))+"@x.com", testNow.AddDate(0, 0, -i), item("clothing", 50)))
	}
	svc := newTestService(user, history)

	got, err := svc.ScoreClaim("u1", models.ItemList{item("electronics", 2000)}, "new@x.com", "s1")
	require.NoError(t, err)

	assert.True(t, got.Flagged)
	assert.GreaterOrEqual(t, got.Score, 60)
}

func TestScoreClaimUnknownUser(t *testing.T) {
	svc := newTestService(&models.User{ID: "u1"}, nil)

	_, err := svc.ScoreClaim("missing", nil, "a@x.com", "s1")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestAnalyzeReportsHistoricalSummary(t *testing.T) {
	user := &models.User{ID: "u1", RiskScore: 20, CreatedAt: testNow.AddDate(-1, 0, 0)}
	history := []repositories.ClaimRecord{
		record("s1", "a@x.com", testNow.AddDate(0, 0, -3), item("electronics", 800), item("electronics", 200)),
		record("s1", "a@x.com", testNow.AddDate(0, -2, 0), item("clothing", 100)),
	}
	svc := newTestService(user, history)

	got, err := svc.Analyze(models.FraudAnalysisRequest{
		UserID:    "u1",
		StoreID:   "s1",
		ClaimData: models.ItemList{item("electronics", 3000)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, got.HistoricalSummary.TotalClaims)
	assert.Equal(t, 1, got.HistoricalSummary.RecentClaims30d)
	require.NotEmpty(t, got.HistoricalSummary.MostCommonCategories)
	assert.Equal(t, "electronics", got.HistoricalSummary.MostCommonCategories[0].Category)
	assert.NotEmpty(t, got.Recommendations)
	assert.GreaterOrEqual(t, got.FraudScore, 40)
	assert.LessOrEqual(t, got.FraudScore, 100)
}

func TestRiskProfileIndicators(t *testing.T) {
	user := &models.User{ID: "u1", KYCEmail: "kyc@x.com", FullName: "Test User", RiskScore: 55, IsFlagged: true}
	history := []repositories.ClaimRecord{
		record("s1", "a@x.com", testNow.AddDate(0, -1, 0), item("clothing", 100)),
		record("s2", "a@x.com", testNow.AddDate(0, -2, 0), item("clothing", 200)),
	}
	svc := newTestService(user, history)

	got, err := svc.RiskProfile("u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 55, got.RiskIndicators.CurrentRiskScore)
	assert.True(t, got.RiskIndicators.IsFlagged)
	assert.Equal(t, "Occasional returner", got.RiskIndicators.ClaimFrequency)
	assert.Equal(t, 150.0, got.RiskIndicators.AvgClaimValue)
	assert.Equal(t, "kyc@x.com", got.UserProfile.Email)
}
