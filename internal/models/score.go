package models

import "time"

// Grade is the band a FICO-range score falls into
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeVeryGood  Grade = "Very Good"
	GradeGood      Grade = "Good"
	GradeFair      Grade = "Fair"
	GradePoor      Grade = "Poor"
)

// FactorScore is one weighted sub-score (0-100)
type FactorScore struct {
	Score   float64                `json:"score"`
	Weight  float64                `json:"weight"`
	Details map[string]interface{} `json:"details"`
}

// ScoreFactors holds the five scoring factors
type ScoreFactors struct {
	PaymentHistory    FactorScore `json:"payment_history"`
	CreditUtilization FactorScore `json:"credit_utilization"`
	CreditAge         FactorScore `json:"credit_age"`
	CreditMix         FactorScore `json:"credit_mix"`
	NewCredit         FactorScore `json:"new_credit"`
}

// ScoreResult is the output of score calculation
type ScoreResult struct {
	Score   int          `json:"score"`
	Grade   Grade        `json:"grade"`
	Factors ScoreFactors `json:"factors"`
}

// ScoreImpact compares a profile against a what-if variant
type ScoreImpact struct {
	CurrentScore int `json:"current_score"`
	NewScore     int `json:"new_score"`
	Impact       int `json:"impact"`
}

// ScoreSnapshot is a persisted score calculation
type ScoreSnapshot struct {
	ID           string        `json:"id"`
	UserID       int64         `json:"user_id"`
	Source       string        `json:"source"`
	Result       ScoreResult   `json:"result"`
	BureauScores []BureauScore `json:"bureau_scores,omitempty"`
	WeakFactors  []string      `json:"weak_factors,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
