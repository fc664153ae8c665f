// Package fraud implements the rule-based risk scoring used when claims
// are submitted and the behavioral analysis behind the ml-fraud endpoints.
package fraud

import (
	"strings"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
)

// Assessment is the outcome of scoring one claim submission.
type Assessment struct {
	Score   int
	Flagged bool
}

// Service scores claims and builds user risk profiles.
type Service interface {
	// ScoreClaim computes the weighted risk score for a prospective claim
	// and decides whether it should be flagged for review.
	ScoreClaim(userID string, items models.ItemList, emailAtStore, storeID string) (Assessment, error)

	// Analyze runs the full behavioral analysis for a claim.
	Analyze(req models.FraudAnalysisRequest) (*models.FraudAnalysis, error)

	// RiskProfile summarizes a user's standing risk indicators.
	RiskProfile(userID string) (*models.RiskProfile, error)
}

type service struct {
	users  repositories.UserRepository
	claims repositories.ClaimRepository
	now    func() time.Time
}

// NewService creates a fraud scoring service.
func NewService(users repositories.UserRepository, claims repositories.ClaimRepository) Service {
	return &service{users: users, claims: claims, now: time.Now}
}

func (s *service) ScoreClaim(userID string, items models.ItemList, emailAtStore, storeID string) (Assessment, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return Assessment{}, err
	}
	history, err := s.claims.ListByUser(userID)
	if err != nil {
		return Assessment{}, err
	}

	now := s.now()
	currentValue := items.TotalValue()

	factors := []models.RiskFactor{
		{Name: "frequency", Score: frequencyRisk(countRecent(history, now)), Weight: weightFrequency},
		{Name: "value", Score: valueRisk(currentValue, history), Weight: weightValue},
		{Name: "email", Score: emailRisk(history, emailAtStore), Weight: weightEmail},
		{Name: "category", Score: categoryRisk(items), Weight: weightCategory},
		{Name: "store", Score: storeRisk(history, storeID), Weight: weightStore},
	}

	var total float64
	for _, f := range factors {
		total += float64(f.Score) * f.Weight
	}
	score := clampScore(int(total))

	return Assessment{Score: score, Flagged: shouldFlag(score, user.IsFlagged)}, nil
}

func (s *service) Analyze(req models.FraudAnalysisRequest) (*models.FraudAnalysis, error) {
	user, err := s.users.GetByID(req.UserID)
	if err != nil {
		return nil, err
	}
	history, err := s.claims.ListByUser(req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := s.collectStats(user, req, history, now)
	indicators := matchPatterns(stats)

	base := s.baseScore(user, req.ClaimData, stats)
	score := clampScore(base + patternAdjustment(indicators))

	factors := make([]models.RiskFactor, 0, len(indicators))
	for _, ind := range indicators {
		factors = append(factors, models.RiskFactor{
			Name:   ind.pattern,
			Score:  ind.riskWeight,
			Weight: ind.relevance,
		})
	}

	return &models.FraudAnalysis{
		FraudScore:        score,
		Confidence:        confidence(indicators),
		RiskFactors:       factors,
		Recommendations:   recommendations(score, indicators),
		BehaviorAnalysis:  describeBehavior(user, stats, history),
		UserProfile:       profileOf(user, len(history)),
		HistoricalSummary: summarizeHistory(history, now),
	}, nil
}

func (s *service) RiskProfile(userID string) (*models.RiskProfile, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	history, err := s.claims.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := summarizeHistory(history, s.now())
	return &models.RiskProfile{
		UserID:            userID,
		UserProfile:       profileOf(user, len(history)),
		HistoricalSummary: summary,
		RiskIndicators: models.RiskIndicators{
			CurrentRiskScore: user.RiskScore,
			IsFlagged:        user.IsFlagged,
			ClaimFrequency:   frequencyPattern(len(history)),
			AvgClaimValue:    summary.AvgClaimValue,
		},
	}, nil
}

// baseScore weights frequency, value deviation, category mix, and the user's
// standing risk score into the behavioral base score.
func (s *service) baseScore(user *models.User, items models.ItemList, stats behaviorStats) int {
	frequencyScore := stats.recentClaims * 20
	if frequencyScore > 100 {
		frequencyScore = 100
	}

	var valueScore float64
	if stats.avgValue > 0 {
		valueScore = (stats.currentValue/stats.avgValue - 1) * 30
		if valueScore < 0 {
			valueScore = 0
		}
		if valueScore > 100 {
			valueScore = 100
		}
	} else if stats.currentValue > 500 {
		valueScore = 30
	} else {
		valueScore = 10
	}

	categoryScore := stats.highRiskRatio * 80

	total := float64(frequencyScore)*0.30 +
		valueScore*0.25 +
		categoryScore*0.25 +
		float64(user.RiskScore)*0.20
	return int(total)
}

func (s *service) collectStats(user *models.User, req models.FraudAnalysisRequest, history []repositories.ClaimRecord, now time.Time) behaviorStats {
	emails := make(map[string]bool)
	var atStore int
	for _, claim := range history {
		if claim.EmailAtStore != "" {
			emails[claim.EmailAtStore] = true
		}
		if req.StoreID != "" && claim.StoreID == req.StoreID {
			atStore++
		}
	}

	var highRisk int
	for _, item := range req.ClaimData {
		if highRiskCategories[strings.ToLower(item.Category)] {
			highRisk++
		}
	}
	var highRiskRatio float64
	if len(req.ClaimData) > 0 {
		highRiskRatio = float64(highRisk) / float64(len(req.ClaimData))
	}

	var storeRatio float64
	if len(history) > 0 {
		storeRatio = float64(atStore) / float64(len(history))
	}

	return behaviorStats{
		totalClaims:    len(history),
		recentClaims:   countRecent(history, now),
		currentValue:   req.ClaimData.TotalValue(),
		avgValue:       averageClaimValue(history),
		highRiskRatio:  highRiskRatio,
		distinctEmails: len(emails),
		storeRatio:     storeRatio,
	}
}

func profileOf(user *models.User, totalClaims int) models.RiskUserProfile {
	return models.RiskUserProfile{
		RiskScore:   user.RiskScore,
		IsFlagged:   user.IsFlagged,
		TotalClaims: totalClaims,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
		Email:       user.KYCEmail,
		Name:        user.FullName,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
