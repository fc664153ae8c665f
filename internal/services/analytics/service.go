// Package analytics builds the dashboard series and aggregate stats from
// claim history.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"bastion/internal/models"
	"bastion/internal/repositories"
)

var chartColors = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// Service computes the analytics endpoints from persisted claims.
type Service interface {
	DashboardMetrics(timeRange models.TimeRange) (*models.DashboardMetrics, error)
	CategoryDistribution() ([]models.CategoryData, error)
	TopDisputedItems(limit int) ([]models.TopDisputedItem, error)
	SummaryStats(timeRange models.TimeRange) (*models.SummaryStats, error)
}

type service struct {
	claims repositories.ClaimRepository
	now    func() time.Time
}

// NewService creates an analytics service.
func NewService(claims repositories.ClaimRepository) Service {
	return &service{claims: claims, now: time.Now}
}

type bucket struct {
	start      time.Time
	suspicious int
	approved   int
}

func (s *service) DashboardMetrics(timeRange models.TimeRange) (*models.DashboardMetrics, error) {
	now := s.now()
	records, err := s.claims.ListSince(now.AddDate(0, 0, -timeRange.Days()))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*bucket)
	for _, rec := range records {
		start, key := bucketFor(timeRange, rec.Claim.CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: start}
			buckets[key] = b
		}
		// Every dispute in the window counts as suspicious.
		b.suspicious++
		if rec.Status == models.ClaimApproved {
			b.approved++
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return buckets[keys[i]].start.Before(buckets[keys[j]].start)
	})

	metrics := &models.DashboardMetrics{
		SuspiciousDisputes: make([]models.MetricPoint, 0, len(keys)),
		ApprovedDisputes:   make([]models.MetricPoint, 0, len(keys)),
	}
	for _, key := range keys {
		b := buckets[key]
		metrics.SuspiciousDisputes = append(metrics.SuspiciousDisputes,
			models.MetricPoint{Date: key, Value: b.suspicious})
		metrics.ApprovedDisputes = append(metrics.ApprovedDisputes,
			models.MetricPoint{Date: key, Value: b.approved})
	}
	return metrics, nil
}

// bucketFor maps a claim date to its chart bucket: daily for 7d, weekly for
// 1m, fortnightly for 3m, monthly for 1y.
func bucketFor(timeRange models.TimeRange, t time.Time) (time.Time, string) {
	switch timeRange {
	case models.Range1Month:
		// Week starts on Monday.
		offset := (int(t.Weekday()) + 6) % 7
		start := t.AddDate(0, 0, -offset).Truncate(24 * time.Hour)
		return start, start.Format("Jan 02")
	case models.Range3Months:
		days := int(t.Sub(time.Unix(0, 0).UTC()).Hours() / 24)
		start := time.Unix(0, 0).UTC().AddDate(0, 0, (days/14)*14)
		return start, start.Format("Jan 02")
	case models.Range1Year:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return start, start.Format("Jan 2006")
	default:
		start := t.Truncate(24 * time.Hour)
		return start, start.Format("Jan 02")
	}
}

func (s *service) CategoryDistribution() ([]models.CategoryData, error) {
	records, err := s.claims.ListSince(time.Time{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var totalItems int
	for _, rec := range records {
		for _, item := range rec.ClaimData {
			if item.Category == "" {
				continue
			}
			counts[titleCase(item.Category)]++
			totalItems++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	distribution := make([]models.CategoryData, 0, len(names))
	for i, name := range names {
		percentage := 0
		if totalItems > 0 {
			percentage = int(float64(counts[name])/float64(totalItems)*100 + 0.5)
		}
		distribution = append(distribution, models.CategoryData{
			Name:  name,
			Value: percentage,
			Color: chartColors[i%len(chartColors)],
		})
	}
	return distribution, nil
}

func (s *service) TopDisputedItems(limit int) ([]models.TopDisputedItem, error) {
	records, err := s.claims.ListSince(time.Time{})
	if err != nil {
		return nil, err
	}

	type itemStats struct {
		category    string
		disputes    int
		lastDispute time.Time
	}
	stats := make(map[string]*itemStats)
	for _, rec := range records {
		for _, item := range rec.ClaimData {
			if item.ItemName == "" {
				continue
			}
			st, ok := stats[item.ItemName]
			if !ok {
				category := item.Category
				if category == "" {
					category = "Unknown"
				}
				st = &itemStats{category: titleCase(category)}
				stats[item.ItemName] = st
			}
			st.disputes++
			if rec.Claim.CreatedAt.After(st.lastDispute) {
				st.lastDispute = rec.Claim.CreatedAt
			}
		}
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats[names[i]].disputes != stats[names[j]].disputes {
			return stats[names[i]].disputes > stats[names[j]].disputes
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}

	top := make([]models.TopDisputedItem, 0, len(names))
	for _, name := range names {
		st := stats[name]
		top = append(top, models.TopDisputedItem{
			Item:        name,
			Category:    st.category,
			Disputes:    st.disputes,
			LastDispute: st.lastDispute.Format("2006-01-02"),
			ProductLink: productLink(name),
		})
	}
	return top, nil
}

func (s *service) SummaryStats(timeRange models.TimeRange) (*models.SummaryStats, error) {
	records, err := s.claims.ListSince(s.now().AddDate(0, 0, -timeRange.Days()))
	if err != nil {
		return nil, err
	}

	total := len(records)
	var approved int
	for _, rec := range records {
		if rec.Status == models.ClaimApproved {
			approved++
		}
	}

	var rate float64
	if total > 0 {
		rate = float64(approved) / float64(total) * 100
		rate = float64(int(rate*10+0.5)) / 10
	}

	return &models.SummaryStats{
		TotalSuspiciousDisputes: total,
		TotalApprovedDisputes:   approved,
		ApprovalRate:            rate,
	}, nil
}

func productLink(itemName string) string {
	slug := strings.ReplaceAll(strings.ToLower(itemName), " ", "-")
	return fmt.Sprintf("https://example.com/products/%s", slug)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
