// Package scoring estimates a FICO-range credit score from a credit profile.
//
// Five factors are scored 0-100 and blended with fixed weights:
//   - payment history: 35%
//   - credit utilization: 30%
//   - credit age: 15%
//   - credit mix: 10%
//   - new credit: 10%
//
// The weighted total is scaled onto 300-850.
package scoring

import (
	"math"
	"time"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

const (
	MinScore = 300
	MaxScore = 850

	WeightPaymentHistory    = 0.35
	WeightCreditUtilization = 0.30
	WeightCreditAge         = 0.15
	WeightCreditMix         = 0.10
	WeightNewCredit         = 0.10

	daysPerMonth = 30
)

// Calculator scores credit profiles relative to a clock
type Calculator struct {
	now func() time.Time
}

// Option configures a Calculator
type Option func(*Calculator)

// WithClock fixes the reference time used for account age and recency
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// NewCalculator creates a calculator using the wall clock unless overridden
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCalculator = NewCalculator()

// CalculateCreditScore scores a profile against the current time
func CalculateCreditScore(profile models.CreditProfile) models.ScoreResult {
	return defaultCalculator.CalculateCreditScore(profile)
}

// CalculateScoreImpact compares a profile with a what-if variant against the current time
func CalculateScoreImpact(current models.CreditProfile, changes models.ProfileChanges) models.ScoreImpact {
	return defaultCalculator.CalculateScoreImpact(current, changes)
}

// CalculateCreditScore maps a profile to a 300-850 score with its factor breakdown
func (c *Calculator) CalculateCreditScore(profile models.CreditProfile) models.ScoreResult {
	now := c.now()

	factors := models.ScoreFactors{
		PaymentHistory:    paymentHistoryFactor(profile.Accounts, profile.PublicRecords),
		CreditUtilization: utilizationFactor(profile.Accounts),
		CreditAge:         creditAgeFactor(profile.Accounts, now),
		CreditMix:         creditMixFactor(profile.Accounts),
		NewCredit:         newCreditFactor(profile.Accounts, profile.Inquiries, now),
	}

	weighted := factors.PaymentHistory.Score*factors.PaymentHistory.Weight +
		factors.CreditUtilization.Score*factors.CreditUtilization.Weight +
		factors.CreditAge.Score*factors.CreditAge.Weight +
		factors.CreditMix.Score*factors.CreditMix.Weight +
		factors.NewCredit.Score*factors.NewCredit.Weight

	score := ScaleToFICO(weighted)
	return models.ScoreResult{
		Score:   score,
		Grade:   GradeFor(score),
		Factors: factors,
	}
}

// CalculateScoreImpact overlays changes on current and reports the score delta
func (c *Calculator) CalculateScoreImpact(current models.CreditProfile, changes models.ProfileChanges) models.ScoreImpact {
	next := current
	if changes.Accounts != nil {
		next.Accounts = *changes.Accounts
	}
	if changes.Inquiries != nil {
		next.Inquiries = *changes.Inquiries
	}
	if changes.PublicRecords != nil {
		next.PublicRecords = *changes.PublicRecords
	}

	currentScore := c.CalculateCreditScore(current).Score
	newScore := c.CalculateCreditScore(next).Score
	return models.ScoreImpact{
		CurrentScore: currentScore,
		NewScore:     newScore,
		Impact:       newScore - currentScore,
	}
}

// ScaleToFICO maps a 0-100 weighted score onto 300-850
func ScaleToFICO(weighted float64) int {
	score := int(math.Round(MinScore + weighted/100*(MaxScore-MinScore)))
	return clampInt(score, MinScore, MaxScore)
}

// GradeFor returns the grade band for a score
func GradeFor(score int) models.Grade {
	switch {
	case score >= 800:
		return models.GradeExcellent
	case score >= 740:
		return models.GradeVeryGood
	case score >= 670:
		return models.GradeGood
	case score >= 580:
		return models.GradeFair
	default:
		return models.GradePoor
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
