package models

// FraudAnalysisRequest asks for a risk assessment of a prospective claim.
type FraudAnalysisRequest struct {
	UserID    string   `json:"user_id"`
	ClaimData ItemList `json:"claim_data"`
	StoreID   string   `json:"store_id,omitempty"`
}

// RiskFactor is one weighted contribution to a fraud score.
type RiskFactor struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// FraudAnalysis is the scoring result for a single claim.
type FraudAnalysis struct {
	FraudScore        int               `json:"fraud_score"`
	Confidence        float64           `json:"confidence"`
	RiskFactors       []RiskFactor      `json:"risk_factors"`
	Recommendations   []string          `json:"recommendations"`
	BehaviorAnalysis  string            `json:"behavior_analysis"`
	UserProfile       RiskUserProfile   `json:"user_profile"`
	HistoricalSummary HistoricalSummary `json:"historical_summary"`
}

// RiskUserProfile is the per-user block embedded in fraud responses.
type RiskUserProfile struct {
	RiskScore   int    `json:"risk_score"`
	IsFlagged   bool   `json:"is_flagged"`
	TotalClaims int    `json:"total_claims"`
	CreatedAt   string `json:"created_at"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

// CategoryCount pairs a category with how often it appears.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HistoricalSummary aggregates a user's past claims.
type HistoricalSummary struct {
	TotalClaims          int             `json:"total_claims"`
	TotalValue           float64         `json:"total_value"`
	AvgClaimValue        float64         `json:"avg_claim_value"`
	MostCommonCategories []CategoryCount `json:"most_common_categories"`
	RecentClaims30d      int             `json:"recent_claims_30d"`
}

// RiskIndicators summarizes how risky a user currently looks.
type RiskIndicators struct {
	CurrentRiskScore int     `json:"current_risk_score"`
	IsFlagged        bool    `json:"is_flagged"`
	ClaimFrequency   string  `json:"claim_frequency"`
	AvgClaimValue    float64 `json:"avg_claim_value"`
}

// RiskProfile is the /ml-fraud/user/{id}/risk-profile response.
type RiskProfile struct {
	UserID            string            `json:"user_id"`
	UserProfile       RiskUserProfile   `json:"user_profile"`
	HistoricalSummary HistoricalSummary `json:"historical_summary"`
	RiskIndicators    RiskIndicators    `json:"risk_indicators"`
}
