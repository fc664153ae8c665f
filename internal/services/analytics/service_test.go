package analytics

import (
	"testing"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type stubClaims struct {
	repositories.ClaimRepository
	records []repositories.ClaimRecord
}

func (s *stubClaims) ListSince(since time.Time) ([]repositories.ClaimRecord, error) {
	if since.IsZero() {
		return s.records, nil
	}
	var out []repositories.ClaimRecord
	for _, rec := range s.records {
		if !rec.Claim.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newTestService(records []repositories.ClaimRecord) *service {
	return &service{
		claims: &stubClaims{records: records},
		now:    func() time.Time { return testNow },
	}
}

func claim(status models.ClaimStatus, createdAt time.Time, items ...models.ItemData) repositories.ClaimRecord {
	return repositories.ClaimRecord{
		Claim: models.Claim{
			ID:        "c-" + createdAt.Format("20060102"),
			Status:    status,
			ClaimData: items,
			CreatedAt: createdAt,
		},
	}
}

func item(name, category string) models.ItemData {
	return models.ItemData{ItemName: name, Category: category, Price: 100, Quantity: 1}
}

func TestDashboardMetricsDailyBuckets(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimApproved, testNow.AddDate(0, 0, -1), item("Phone", "electronics")),
		claim(models.ClaimPending, testNow.AddDate(0, 0, -1), item("Ring", "jewelry")),
		claim(models.ClaimDenied, testNow.AddDate(0, 0, -3), item("Shirt", "clothing")),
		// Outside the 7d window; must not appear.
		claim(models.ClaimApproved, testNow.AddDate(0, 0, -20), item("Old", "clothing")),
	})

	got, err := svc.DashboardMetrics(models.Range7Days)
	require.NoError(t, err)

	require.Len(t, got.SuspiciousDisputes, 2)
	require.Len(t, got.ApprovedDisputes, 2)

	// Buckets are chronological.
	assert.Equal(t, "Jun 12", got.SuspiciousDisputes[0].Date)
	assert.Equal(t, 1, got.SuspiciousDisputes[0].Value)
	assert.Equal(t, "Jun 14", got.SuspiciousDisputes[1].Date)
	assert.Equal(t, 2, got.SuspiciousDisputes[1].Value)
	assert.Equal(t, 1, got.ApprovedDisputes[1].Value)
}

func TestDashboardMetricsYearlyBucketsByMonth(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimApproved, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), item("A", "clothing")),
		claim(models.ClaimPending, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), item("B", "clothing")),
		claim(models.ClaimPending, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), item("C", "clothing")),
	})

	got, err := svc.DashboardMetrics(models.Range1Year)
	require.NoError(t, err)

	require.Len(t, got.SuspiciousDisputes, 2)
	assert.Equal(t, "Mar 2025", got.SuspiciousDisputes[0].Date)
	assert.Equal(t, 2, got.SuspiciousDisputes[0].Value)
	assert.Equal(t, "May 2025", got.SuspiciousDisputes[1].Date)
}

func TestCategoryDistributionPercentages(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimPending, testNow,
			item("Phone", "electronics"), item("Laptop", "electronics"), item("TV", "electronics")),
		claim(models.ClaimPending, testNow, item("Shirt", "clothing")),
	})

	got, err := svc.CategoryDistribution()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Electronics", got[0].Name)
	assert.Equal(t, 75, got[0].Value)
	assert.Equal(t, "Clothing", got[1].Name)
	assert.Equal(t, 25, got[1].Value)
	assert.NotEmpty(t, got[0].Color)
}

func TestCategoryDistributionEmpty(t *testing.T) {
	svc := newTestService(nil)

	got, err := svc.CategoryDistribution()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTopDisputedItems(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimPending, testNow.AddDate(0, 0, -5), item("AirPods Pro", "electronics")),
		claim(models.ClaimPending, testNow.AddDate(0, 0, -2), item("AirPods Pro", "electronics")),
		claim(models.ClaimPending, testNow.AddDate(0, 0, -1), item("Silk Dress", "clothing")),
	})

	got, err := svc.TopDisputedItems(5)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "AirPods Pro", got[0].Item)
	assert.Equal(t, 2, got[0].Disputes)
	assert.Equal(t, testNow.AddDate(0, 0, -2).Format("2006-01-02"), got[0].LastDispute)
	assert.Equal(t, "https://example.com/products/airpods-pro", got[0].ProductLink)

	limited, err := svc.TopDisputedItems(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSummaryStats(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimApproved, testNow.AddDate(0, 0, -1), item("A", "clothing")),
		claim(models.ClaimPending, testNow.AddDate(0, 0, -2), item("B", "clothing")),
		claim(models.ClaimDenied, testNow.AddDate(0, 0, -3), item("C", "clothing")),
	})

	got, err := svc.SummaryStats(models.Range7Days)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalSuspiciousDisputes)
	assert.Equal(t, 1, got.TotalApprovedDisputes)
	assert.Equal(t, 33.3, got.ApprovalRate)
}

func TestSummaryStatsEmptyWindow(t *testing.T) {
	svc := newTestService(nil)

	got, err := svc.SummaryStats(models.Range1Month)
	require.NoError(t, err)

	assert.Zero(t, got.TotalSuspiciousDisputes)
	assert.Zero(t, got.ApprovalRate)
}

func TestCategoryDistributionMultibyteNames(t *testing.T) {
	svc := newTestService([]repositories.ClaimRecord{
		claim(models.ClaimPending, testNow, item("Lampe", "électronique")),
	})

	got, err := svc.CategoryDistribution()
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Électronique", got[0].Name)
}
