package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

func paymentHistoryFactor(accounts []models.AccountData, records []models.PublicRecordData) models.FactorScore {
	var total, onTime, late30, late60, late90, chargeOffs int
	for _, acct := range accounts {
		if len(acct.PaymentHistory) > 0 {
			for _, p := range acct.PaymentHistory {
				total++
				switch p.Status {
				case models.PaymentOnTime:
					onTime++
				case models.PaymentLate30:
					late30++
				case models.PaymentLate60:
					late60++
				case models.PaymentLate90:
					late90++
				case models.PaymentChargeOff:
					chargeOffs++
				}
			}
			continue
		}
		lates := acct.LatePayments30 + acct.LatePayments60 + acct.LatePayments90
		total += acct.MonthsReviewed
		onTime += max(0, acct.MonthsReviewed-lates)
		late30 += acct.LatePayments30
		late60 += acct.LatePayments60
		late90 += acct.LatePayments90
	}

	onTimeRate := 100.0
	if total > 0 {
		onTimeRate = float64(onTime) / float64(total) * 100
	}

	// charge-offs weigh the same as 90-day lates
	penalty := 2*late30 + 5*late60 + 10*(late90+chargeOffs) + 25*len(records)
	score := math.Max(0, float64(100-penalty))

	return models.FactorScore{
		Score:  score,
		Weight: WeightPaymentHistory,
		Details: map[string]interface{}{
			"onTimePercentage": round1(onTimeRate),
			"totalPayments":    total,
			"latePayments30":   late30,
			"latePayments60":   late60,
			"latePayments90":   late90,
			"chargeOffs":       chargeOffs,
			"publicRecords":    len(records),
		},
	}
}

// UtilizationScore is the piecewise 0-100 score for an overall utilization percentage
func UtilizationScore(util float64) float64 {
	switch {
	case util <= 10:
		return 100
	case util <= 30:
		return 100 - (util-10)*1.5
	case util <= 50:
		return 70 - (util-30)*2
	case util <= 75:
		return 30 - (util-50)*0.8
	default:
		return math.Max(0, 10-(util-75)*0.4)
	}
}

func utilizationFactor(accounts []models.AccountData) models.FactorScore {
	var totalBalance, totalLimit float64
	var revolving, overLimit int
	for _, acct := range accounts {
		limit := acct.Limit()
		if acct.AccountType != models.AccountTypeCreditCard || limit <= 0 {
			continue
		}
		balance := math.Max(0, acct.CurrentBalance)
		revolving++
		totalBalance += balance
		totalLimit += limit
		if balance/limit*100 > 100 {
			overLimit++
		}
	}

	if totalLimit <= 0 {
		return models.FactorScore{
			Score:  100,
			Weight: WeightCreditUtilization,
			Details: map[string]interface{}{
				"overallUtilization": 0.0,
				"totalBalance":       0.0,
				"totalLimit":         0.0,
				"revolvingAccounts":  0,
				"accountsOverLimit":  0,
			},
		}
	}

	util := totalBalance / totalLimit * 100
	score := math.Max(0, UtilizationScore(util)-15*float64(overLimit))

	return models.FactorScore{
		Score:  score,
		Weight: WeightCreditUtilization,
		Details: map[string]interface{}{
			"overallUtilization": round1(util),
			"totalBalance":       totalBalance,
			"totalLimit":         totalLimit,
			"revolvingAccounts":  revolving,
			"accountsOverLimit":  overLimit,
		},
	}
}

// AccountAgeMonths is the age of an account at now (or at its close date), never negative
func AccountAgeMonths(acct models.AccountData, now time.Time) float64 {
	end := now
	if acct.CloseDate != nil {
		end = *acct.CloseDate
	}
	months := end.Sub(acct.OpenDate).Hours() / 24 / daysPerMonth
	return math.Max(0, months)
}

// agePoints awards up to 50 points for a month count
func agePoints(months float64) float64 {
	switch {
	case months >= 120:
		return 50
	case months >= 84:
		return 40
	case months >= 60:
		return 30
	case months >= 36:
		return 20
	case months >= 24:
		return 10
	default:
		return months / 24 * 10
	}
}

func creditAgeFactor(accounts []models.AccountData, now time.Time) models.FactorScore {
	var ages []float64
	for _, acct := range accounts {
		if acct.OpenDate.IsZero() {
			continue
		}
		ages = append(ages, AccountAgeMonths(acct, now))
	}

	if len(ages) == 0 {
		return models.FactorScore{
			Score:  0,
			Weight: WeightCreditAge,
			Details: map[string]interface{}{
				"averageAgeMonths": 0.0,
				"oldestAgeMonths":  0.0,
				"datedAccounts":    0,
			},
		}
	}

	var sum, oldest float64
	for _, a := range ages {
		sum += a
		oldest = math.Max(oldest, a)
	}
	avg := sum / float64(len(ages))
	score := math.Min(100, agePoints(avg)+agePoints(oldest))

	return models.FactorScore{
		Score:  score,
		Weight: WeightCreditAge,
		Details: map[string]interface{}{
			"averageAgeMonths": round1(avg),
			"oldestAgeMonths":  round1(oldest),
			"datedAccounts":    len(ages),
		},
	}
}

func creditMixFactor(accounts []models.AccountData) models.FactorScore {
	present := make(map[models.AccountType]bool)
	for _, acct := range accounts {
		present[acct.AccountType] = true
	}

	score := 0.0
	if present[models.AccountTypeCreditCard] {
		score += 30
	}
	if present[models.AccountTypeAutoLoan] || present[models.AccountTypePersonalLoan] || present[models.AccountTypeStudentLoan] {
		score += 30
	}
	if present[models.AccountTypeMortgage] {
		score += 20
	}

	switch distinct := len(present); {
	case distinct >= 4:
		score += 20
	case distinct == 3:
		score += 15
	case distinct == 2:
		score += 10
	}
	score = math.Min(100, score)

	types := make([]string, 0, len(present))
	for t := range present {
		types = append(types, string(t))
	}
	sort.Strings(types)

	return models.FactorScore{
		Score:  score,
		Weight: WeightCreditMix,
		Details: map[string]interface{}{
			"accountTypes":  types,
			"distinctTypes": len(types),
		},
	}
}

func newCreditFactor(accounts []models.AccountData, inquiries []models.InquiryData, now time.Time) models.FactorScore {
	cutoff := now.AddDate(-1, 0, 0)

	recentInquiries := 0
	for _, inq := range inquiries {
		if !inq.Date.Before(cutoff) {
			recentInquiries++
		}
	}
	recentAccounts := 0
	for _, acct := range accounts {
		if !acct.OpenDate.IsZero() && !acct.OpenDate.Before(cutoff) {
			recentAccounts++
		}
	}

	score := 100 - math.Min(50, 5*float64(recentInquiries)) - math.Min(30, 8*float64(recentAccounts))
	score = clamp(score, 0, 100)

	return models.FactorScore{
		Score:  score,
		Weight: WeightNewCredit,
		Details: map[string]interface{}{
			"inquiriesLast12Months":      recentInquiries,
			"accountsOpenedLast12Months": recentAccounts,
		},
	}
}
