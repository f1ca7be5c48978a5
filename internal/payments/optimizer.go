// Package payments recommends when to pay a revolving account so that the balance
// reported at statement close is as low as possible.
package payments

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// days before the statement date
	optimalLeadDays     = 4
	windowOpenLeadDays  = 5
	windowCloseLeadDays = 2

	// typical gap between statement close and payment due date
	statementToDueDays = 23

	highUtilization     = 30.0
	moderateUtilization = 10.0
)

// CalculateOptimalPaymentDate recommends paying four days before the statement closes.
// A planned payment of zero (or less) means paying the full balance. Negative balances
// are treated as zero and a non-positive limit reports zero utilization.
func CalculateOptimalPaymentDate(accountName string, statementDate, dueDate time.Time, currentBalance, creditLimit, plannedPayment float64) models.PaymentRecommendation {
	balance := math.Max(0, currentBalance)
	payment := plannedPayment
	if payment <= 0 {
		payment = balance
	}

	afterBalance := math.Max(0, balance-payment)
	current := utilization(balance, creditLimit)
	after := utilization(afterBalance, creditLimit)

	optimal := statementDate.AddDate(0, 0, -optimalLeadDays)
	window := models.DateWindow{
		Start: statementDate.AddDate(0, 0, -windowOpenLeadDays),
		End:   statementDate.AddDate(0, 0, -windowCloseLeadDays),
	}

	impact := models.UtilizationImpact{
		Current:      round1(current),
		AfterPayment: round1(after),
		Improvement:  round1(current - after),
	}

	return models.PaymentRecommendation{
		AccountName:          accountName,
		StatementDate:        statementDate,
		DueDate:              dueDate,
		OptimalPaymentDate:   optimal,
		OptimalPaymentWindow: window,
		Reasoning:            reasoning(statementDate, dueDate, optimal, window, payment, impact),
		UtilizationImpact:    impact,
	}
}

// CalculateAllPaymentDates builds a recommendation for every account with a positive
// credit limit, ordered by optimal payment date. Accounts without a statement date
// get one estimated from the due date.
func CalculateAllPaymentDates(accounts []models.LiveAccount) []models.PaymentRecommendation {
	recs := make([]models.PaymentRecommendation, 0, len(accounts))
	for _, acc := range accounts {
		if acc.CreditLimit <= 0 {
			continue
		}
		recs = append(recs, RecommendationFor(acc))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].OptimalPaymentDate.Before(recs[j].OptimalPaymentDate)
	})
	return recs
}

// RecommendationFor computes the recommendation for a tracked account, estimating
// the statement date when it is unknown
func RecommendationFor(acc models.LiveAccount) models.PaymentRecommendation {
	statement := acc.StatementDate
	if statement.IsZero() {
		statement = EstimateStatementDate(acc.DueDate)
	}
	return CalculateOptimalPaymentDate(
		acc.Name, statement, acc.DueDate, acc.CurrentBalance, acc.CreditLimit, acc.PlannedPayment,
	)
}

// EstimateStatementDate guesses the statement close from the due date
func EstimateStatementDate(dueDate time.Time) time.Time {
	return dueDate.AddDate(0, 0, -statementToDueDays)
}

func utilization(balance, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return balance / limit * 100
}

func reasoning(statement, due, optimal time.Time, window models.DateWindow, payment float64, impact models.UtilizationImpact) string {
	timing := fmt.Sprintf(
		"Pay $%.2f on %s, inside the window %s to %s, so it posts before your statement closes on %s. The payment itself is not due until %s.",
		payment, optimal.Format(dateLayout), window.Start.Format(dateLayout), window.End.Format(dateLayout),
		statement.Format(dateLayout), due.Format(dateLayout),
	)

	switch {
	case impact.Current > highUtilization:
		return fmt.Sprintf(
			"Your utilization of %.1f%% is high and is hurting your score. %s Bureaus will then see %.1f%% utilization, an improvement of %.1f points.",
			impact.Current, timing, impact.AfterPayment, impact.Improvement,
		)
	case impact.Current >= moderateUtilization:
		return fmt.Sprintf(
			"Your utilization of %.1f%% is moderate. %s Reporting %.1f%% instead gains %.1f points of utilization and moves you toward the under 10%% range.",
			impact.Current, timing, impact.AfterPayment, impact.Improvement,
		)
	default:
		return fmt.Sprintf(
			"Your utilization of %.1f%% is already excellent. %s This keeps the reported utilization at %.1f%%.",
			impact.Current, timing, impact.AfterPayment,
		)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
