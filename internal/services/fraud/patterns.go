package fraud

import (
	"fmt"
	"strings"

	"bastion/internal/models"
	"bastion/internal/repositories"
)

// behaviorStats are the aggregates the pattern matcher works from.
type behaviorStats struct {
	totalClaims    int
	recentClaims   int
	currentValue   float64
	avgValue       float64
	highRiskRatio  float64
	distinctEmails int
	storeRatio     float64
}

// indicator is one matched fraud pattern and its contribution.
type indicator struct {
	pattern    string
	relevance  float64
	riskWeight int
}

const maxAdjustment = 20

// matchPatterns evaluates the known fraud patterns against the stats.
// Matched patterns raise the base score by a bounded adjustment.
func matchPatterns(stats behaviorStats) []indicator {
	var matched []indicator

	if stats.recentClaims >= 3 {
		matched = append(matched, indicator{
			pattern:    "Multiple returns within a short time period",
			relevance:  0.8,
			riskWeight: 25,
		})
	}
	if stats.avgValue > 0 && stats.currentValue > 2*stats.avgValue {
		matched = append(matched, indicator{
			pattern:    "Return value significantly exceeds historical spending pattern",
			relevance:  0.7,
			riskWeight: 20,
		})
	}
	if stats.highRiskRatio >= 0.5 {
		matched = append(matched, indicator{
			pattern:    "Returns of high-risk categories like electronics, jewelry, or luxury items",
			relevance:  0.75,
			riskWeight: 25,
		})
	}
	if stats.distinctEmails >= 3 {
		matched = append(matched, indicator{
			pattern:    "Unusual email usage with multiple different addresses",
			relevance:  0.6,
			riskWeight: 10,
		})
	}
	if stats.totalClaims >= 5 && stats.storeRatio >= 0.8 {
		matched = append(matched, indicator{
			pattern:    "Returns concentrated on a single store",
			relevance:  0.65,
			riskWeight: 15,
		})
	}

	return matched
}

// patternAdjustment converts matched indicators into a score adjustment
// clamped to [-maxAdjustment, maxAdjustment].
func patternAdjustment(indicators []indicator) int {
	if len(indicators) == 0 {
		return 0
	}

	var totalRelevance float64
	for _, ind := range indicators {
		totalRelevance += ind.relevance
	}
	if totalRelevance < 0.1 {
		totalRelevance = 0.1
	}

	var adjustment float64
	for _, ind := range indicators {
		adjustment += float64(ind.riskWeight) * (ind.relevance / totalRelevance)
	}

	if adjustment > maxAdjustment {
		adjustment = maxAdjustment
	}
	if adjustment < -maxAdjustment {
		adjustment = -maxAdjustment
	}
	return int(adjustment)
}

func confidence(indicators []indicator) float64 {
	if len(indicators) == 0 {
		return 0.5
	}
	var sum float64
	for _, ind := range indicators {
		sum += ind.relevance
	}
	avg := sum / float64(len(indicators))
	if avg > 1 {
		avg = 1
	}
	return avg
}

func recommendations(score int, indicators []indicator) []string {
	var recs []string
	switch {
	case score >= 80:
		recs = append(recs, "HIGH RISK: recommend manual review and additional verification")
	case score >= 60:
		recs = append(recs, "MEDIUM RISK: flag for closer monitoring")
	case score >= 40:
		recs = append(recs, "LOW-MEDIUM RISK: monitor for patterns")
	default:
		recs = append(recs, "LOW RISK: standard processing recommended")
	}

	for _, ind := range indicators {
		if ind.relevance <= 0.7 {
			continue
		}
		if strings.Contains(ind.pattern, "short time period") {
			recs = append(recs, "Review return frequency limits for this customer")
		} else if strings.Contains(ind.pattern, "spending pattern") {
			recs = append(recs, "Consider purchase history verification before approval")
		}
	}
	return recs
}

func describeBehavior(user *models.User, stats behaviorStats, history []repositories.ClaimRecord) string {
	return fmt.Sprintf(
		"Customer has %d historical returns (%d in the last 30 days). "+
			"Current return value $%.2f against a historical average of $%.2f. "+
			"Current risk score %d, previously flagged: %t. Pattern: %s.",
		stats.totalClaims, stats.recentClaims,
		stats.currentValue, stats.avgValue,
		user.RiskScore, user.IsFlagged,
		frequencyPattern(len(history)),
	)
}
