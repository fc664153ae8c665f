package fraud

import (
	"sort"
	"strings"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
)

// Weighted factors of the rule-based risk score.
const (
	weightFrequency = 0.30
	weightValue     = 0.25
	weightEmail     = 0.20
	weightCategory  = 0.15
	weightStore     = 0.10
)

// Flagging thresholds. Previously flagged users trip at a lower score.
const (
	flagAlways      = 85
	flagStandard    = 75
	flagRepeat      = 60
	recentWindow    = 30 * 24 * time.Hour
	topCategorySize = 5
)

var highRiskCategories = map[string]bool{
	"electronics": true,
	"jewelry":     true,
	"luxury":      true,
	"designer":    true,
	"gaming":      true,
}

var mediumRiskCategories = map[string]bool{
	"clothing":    true,
	"accessories": true,
	"sports":      true,
	"beauty":      true,
}

// frequencyRisk scores how many claims were filed in the last 30 days.
func frequencyRisk(recentClaims int) int {
	switch {
	case recentClaims == 0:
		return 0
	case recentClaims <= 2:
		return 20
	case recentClaims <= 5:
		return 50
	case recentClaims <= 10:
		return 75
	default:
		return 100
	}
}

// valueRisk scores the current claim value against the user's history.
func valueRisk(currentValue float64, history []repositories.ClaimRecord) int {
	if len(history) == 0 {
		switch {
		case currentValue > 1000:
			return 60
		case currentValue > 500:
			return 30
		default:
			return 10
		}
	}

	avg := averageClaimValue(history)
	if avg == 0 {
		if currentValue > 500 {
			return 20
		}
		return 10
	}

	ratio := currentValue / avg
	switch {
	case ratio <= 1.5:
		return 10
	case ratio <= 3:
		return 30
	case ratio <= 5:
		return 60
	default:
		return 90
	}
}

// emailRisk scores how many distinct store emails the user has claimed under,
// including the email on the claim being scored.
func emailRisk(history []repositories.ClaimRecord, emailAtStore string) int {
	if len(history) == 0 {
		return 10
	}

	emails := map[string]bool{emailAtStore: true}
	for _, claim := range history {
		if claim.EmailAtStore != "" {
			emails[claim.EmailAtStore] = true
		}
	}

	switch count := len(emails); {
	case count <= 2:
		return 5
	case count <= 4:
		return 25
	case count <= 6:
		return 50
	default:
		return 80
	}
}

// categoryRisk scores the mix of item categories in the claim.
func categoryRisk(items models.ItemList) int {
	if len(items) == 0 {
		return 0
	}

	var high, medium int
	for _, item := range items {
		cat := strings.ToLower(item.Category)
		if highRiskCategories[cat] {
			high++
		} else if mediumRiskCategories[cat] {
			medium++
		}
	}

	total := float64(len(items))
	highRatio := float64(high) / total
	mediumRatio := float64(medium) / total

	switch {
	case highRatio >= 0.8:
		return 70
	case highRatio >= 0.5:
		return 50
	case mediumRatio >= 0.8:
		return 30
	default:
		return 10
	}
}

// storeRisk scores how concentrated the user's claims are on one store.
func storeRisk(history []repositories.ClaimRecord, storeID string) int {
	total := len(history)
	if total == 0 {
		return 5
	}

	var atStore int
	for _, claim := range history {
		if claim.StoreID == storeID {
			atStore++
		}
	}

	ratio := float64(atStore) / float64(total)
	switch {
	case ratio >= 0.8 && total >= 5:
		return 60
	case ratio >= 0.6 && total >= 3:
		return 40
	default:
		return 10
	}
}

// shouldFlag applies the flagging thresholds to a computed score.
func shouldFlag(score int, previouslyFlagged bool) bool {
	if score >= flagAlways {
		return true
	}
	if previouslyFlagged {
		return score >= flagRepeat
	}
	return score >= flagStandard
}

func averageClaimValue(history []repositories.ClaimRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	var total float64
	for _, claim := range history {
		total += claim.ClaimData.TotalValue()
	}
	return total / float64(len(history))
}

func countRecent(history []repositories.ClaimRecord, now time.Time) int {
	cutoff := now.Add(-recentWindow)
	var recent int
	for _, claim := range history {
		if !claim.Claim.CreatedAt.Before(cutoff) {
			recent++
		}
	}
	return recent
}

func frequencyPattern(totalClaims int) string {
	switch {
	case totalClaims <= 1:
		return "New customer"
	case totalClaims <= 3:
		return "Occasional returner"
	case totalClaims <= 10:
		return "Regular returner"
	default:
		return "Frequent returner"
	}
}

func summarizeHistory(history []repositories.ClaimRecord, now time.Time) models.HistoricalSummary {
	summary := models.HistoricalSummary{
		MostCommonCategories: []models.CategoryCount{},
	}
	if len(history) == 0 {
		return summary
	}

	categoryCounts := make(map[string]int)
	var totalValue float64
	for _, claim := range history {
		for _, item := range claim.ClaimData {
			totalValue += item.TotalValue()
			name := item.Category
			if name == "" {
				name = "unknown"
			}
			categoryCounts[name]++
		}
	}

	names := make([]string, 0, len(categoryCounts))
	for name := range categoryCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if categoryCounts[names[i]] != categoryCounts[names[j]] {
			return categoryCounts[names[i]] > categoryCounts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > topCategorySize {
		names = names[:topCategorySize]
	}
	for _, name := range names {
		summary.MostCommonCategories = append(summary.MostCommonCategories,
			models.CategoryCount{Category: name, Count: categoryCounts[name]})
	}

	summary.TotalClaims = len(history)
	summary.TotalValue = round2(totalValue)
	summary.AvgClaimValue = round2(totalValue / float64(len(history)))
	summary.RecentClaims30d = countRecent(history, now)
	return summary
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
