package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestCalculator() *Calculator {
	return NewCalculator(WithClock(func() time.Time { return fixedNow }))
}

func ptr(v float64) *float64 {
	return &v
}

func daysAgo(days int) time.Time {
	return fixedNow.AddDate(0, 0, -days)
}

func card(balance, limit float64, openedDaysAgo int) models.AccountData {
	return models.AccountData{
		AccountType:    models.AccountTypeCreditCard,
		CurrentBalance: balance,
		CreditLimit:    ptr(limit),
		Status:         models.AccountStatusCurrent,
		OpenDate:       daysAgo(openedDaysAgo),
	}
}

func account(t models.AccountType, openedDaysAgo int) models.AccountData {
	return models.AccountData{
		AccountType: t,
		Status:      models.AccountStatusCurrent,
		OpenDate:    daysAgo(openedDaysAgo),
	}
}

func TestCalculateCreditScore_EmptyProfile(t *testing.T) {
	result := newTestCalculator().CalculateCreditScore(models.CreditProfile{})

	assert.Equal(t, 100.0, result.Factors.CreditUtilization.Score)
	assert.Equal(t, 0.0, result.Factors.CreditAge.Score)
	assert.Equal(t, 100.0, result.Factors.PaymentHistory.Score)
	assert.Equal(t, 0.0, result.Factors.CreditMix.Score)
	assert.Equal(t, 100.0, result.Factors.NewCredit.Score)
	// 35 + 30 + 0 + 0 + 10 = 75 -> 300 + 412.5
	assert.Equal(t, 713, result.Score)
	assert.Equal(t, models.GradeGood, result.Grade)
	assert.GreaterOrEqual(t, result.Score, MinScore)
	assert.LessOrEqual(t, result.Score, MaxScore)
}

func TestCalculateCreditScore_PerfectProfile(t *testing.T) {
	profile := models.CreditProfile{
		Accounts: []models.AccountData{
			card(0, 10000, 150*30),
			account(models.AccountTypeMortgage, 150*30),
			account(models.AccountTypeAutoLoan, 150*30),
			account(models.AccountTypeStudentLoan, 150*30),
		},
	}

	result := newTestCalculator().CalculateCreditScore(profile)
	assert.Equal(t, 850, result.Score)
	assert.Equal(t, models.GradeExcellent, result.Grade)
}

func TestCalculateCreditScore_FactorWeights(t *testing.T) {
	result := newTestCalculator().CalculateCreditScore(models.CreditProfile{})
	f := result.Factors
	total := f.PaymentHistory.Weight + f.CreditUtilization.Weight + f.CreditAge.Weight + f.CreditMix.Weight + f.NewCredit.Weight
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.35, f.PaymentHistory.Weight)
	assert.Equal(t, 0.30, f.CreditUtilization.Weight)
	assert.Equal(t, 0.15, f.CreditAge.Weight)
	assert.Equal(t, 0.10, f.CreditMix.Weight)
	assert.Equal(t, 0.10, f.NewCredit.Weight)
}

func TestPaymentHistory(t *testing.T) {
	t.Run("aggregate counters", func(t *testing.T) {
		acct := card(0, 1000, 400)
		acct.MonthsReviewed = 24
		acct.LatePayments30 = 1
		acct.LatePayments60 = 1
		acct.LatePayments90 = 1
		f := paymentHistoryFactor([]models.AccountData{acct}, []models.PublicRecordData{{Type: models.PublicRecordJudgment}})

		assert.Equal(t, 58.0, f.Score)
		assert.Equal(t, 87.5, f.Details["onTimePercentage"])
		assert.Equal(t, 24, f.Details["totalPayments"])
	})

	t.Run("itemized history replaces counters", func(t *testing.T) {
		acct := card(0, 1000, 400)
		acct.LatePayments90 = 5
		acct.MonthsReviewed = 60
		acct.PaymentHistory = []models.PaymentRecord{
			{Date: daysAgo(60), Status: models.PaymentOnTime},
			{Date: daysAgo(30), Status: models.PaymentLate30},
		}
		f := paymentHistoryFactor([]models.AccountData{acct}, nil)

		assert.Equal(t, 98.0, f.Score)
		assert.Equal(t, 2, f.Details["totalPayments"])
		assert.Equal(t, 0, f.Details["latePayments90"])
	})

	t.Run("charge off counts as ninety days late", func(t *testing.T) {
		acct := card(0, 1000, 400)
		acct.PaymentHistory = []models.PaymentRecord{{Date: daysAgo(30), Status: models.PaymentChargeOff}}
		f := paymentHistoryFactor([]models.AccountData{acct}, nil)
		assert.Equal(t, 90.0, f.Score)
	})

	t.Run("floored at zero", func(t *testing.T) {
		records := make([]models.PublicRecordData, 5)
		f := paymentHistoryFactor(nil, records)
		assert.Equal(t, 0.0, f.Score)
	})
}

func TestUtilizationScore_Breakpoints(t *testing.T) {
	tests := []struct {
		util float64
		want float64
	}{
		{0, 100},
		{10, 100},
		{20, 85},
		{30, 70},
		{40, 50},
		{50, 30},
		{75, 10},
		{100, 0},
		{150, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, UtilizationScore(tt.util), 1e-9, "util %.1f", tt.util)
	}
}

func TestUtilizationScore_MonotonicNonIncreasing(t *testing.T) {
	prev := UtilizationScore(0)
	for util := 0.25; util <= 200; util += 0.25 {
		got := UtilizationScore(util)
		require.LessOrEqual(t, got, prev, "utilization %.2f", util)
		prev = got
	}
}

func TestUtilizationFactor(t *testing.T) {
	t.Run("no revolving accounts is neutral best", func(t *testing.T) {
		loan := account(models.AccountTypeAutoLoan, 400)
		loan.CurrentBalance = 9000
		f := utilizationFactor([]models.AccountData{loan})
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("zero limit cards are skipped", func(t *testing.T) {
		f := utilizationFactor([]models.AccountData{card(500, 0, 400)})
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("aggregate across cards", func(t *testing.T) {
		f := utilizationFactor([]models.AccountData{card(1500, 5000, 400), card(500, 5000, 400)})
		assert.InDelta(t, 85.0, f.Score, 1e-9)
		assert.Equal(t, 20.0, f.Details["overallUtilization"])
	})

	t.Run("over limit penalty", func(t *testing.T) {
		f := utilizationFactor([]models.AccountData{card(1500, 1000, 400), card(0, 1000, 400)})
		assert.Equal(t, 0.0, f.Score)
		assert.Equal(t, 1, f.Details["accountsOverLimit"])

		f = utilizationFactor([]models.AccountData{card(1100, 1000, 400), card(0, 9000, 400)})
		// 11% overall -> 98.5, minus 15
		assert.InDelta(t, 83.5, f.Score, 1e-9)
	})
}

func TestCreditAgeFactor(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, creditAgeFactor(nil, fixedNow).Score)
	})

	t.Run("old accounts cap at 100", func(t *testing.T) {
		f := creditAgeFactor([]models.AccountData{card(0, 1, 130*30)}, fixedNow)
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("average and oldest scored separately", func(t *testing.T) {
		f := creditAgeFactor([]models.AccountData{card(0, 1, 120*30), card(0, 1, 12*30)}, fixedNow)
		// average 66 months -> 30, oldest 120 -> 50
		assert.Equal(t, 80.0, f.Score)
	})

	t.Run("young account proportional", func(t *testing.T) {
		f := creditAgeFactor([]models.AccountData{card(0, 1, 12*30)}, fixedNow)
		assert.InDelta(t, 10.0, f.Score, 1e-9)
	})

	t.Run("closed accounts age until close", func(t *testing.T) {
		acct := card(0, 1, 200*30)
		closed := daysAgo(100 * 30)
		acct.CloseDate = &closed
		f := creditAgeFactor([]models.AccountData{acct}, fixedNow)
		assert.Equal(t, 80.0, f.Score)
	})

	t.Run("future open date floors at zero", func(t *testing.T) {
		acct := card(0, 1, -60)
		assert.Equal(t, 0.0, AccountAgeMonths(acct, fixedNow))
	})
}

func TestCreditMixFactor(t *testing.T) {
	tests := []struct {
		name  string
		types []models.AccountType
		want  float64
	}{
		{"none", nil, 0},
		{"card only", []models.AccountType{models.AccountTypeCreditCard}, 30},
		{"card and other", []models.AccountType{models.AccountTypeCreditCard, models.AccountTypeOther}, 40},
		{"card auto mortgage", []models.AccountType{models.AccountTypeCreditCard, models.AccountTypeAutoLoan, models.AccountTypeMortgage}, 95},
		{"four types", []models.AccountType{models.AccountTypeCreditCard, models.AccountTypeStudentLoan, models.AccountTypePersonalLoan, models.AccountTypeMortgage}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var accounts []models.AccountData
			for _, typ := range tt.types {
				accounts = append(accounts, account(typ, 400))
			}
			assert.Equal(t, tt.want, creditMixFactor(accounts).Score)
		})
	}
}

func TestNewCreditFactor(t *testing.T) {
	inquiries := []models.InquiryData{
		{Date: daysAgo(10)}, {Date: daysAgo(100)}, {Date: daysAgo(300)}, {Date: daysAgo(500)},
	}
	accounts := []models.AccountData{card(0, 1, 30), card(0, 1, 200), card(0, 1, 900)}

	f := newCreditFactor(accounts, inquiries, fixedNow)
	assert.Equal(t, 69.0, f.Score)
	assert.Equal(t, 3, f.Details["inquiriesLast12Months"])
	assert.Equal(t, 2, f.Details["accountsOpenedLast12Months"])

	many := make([]models.InquiryData, 20)
	for i := range many {
		many[i] = models.InquiryData{Date: daysAgo(5)}
	}
	recent := []models.AccountData{card(0, 1, 1), card(0, 1, 2), card(0, 1, 3), card(0, 1, 4), card(0, 1, 5)}
	assert.Equal(t, 20.0, newCreditFactor(recent, many, fixedNow).Score)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  models.Grade
	}{
		{850, models.GradeExcellent},
		{800, models.GradeExcellent},
		{799, models.GradeVeryGood},
		{740, models.GradeVeryGood},
		{739, models.GradeGood},
		{670, models.GradeGood},
		{669, models.GradeFair},
		{580, models.GradeFair},
		{579, models.GradePoor},
		{300, models.GradePoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestScaleToFICO(t *testing.T) {
	assert.Equal(t, 300, ScaleToFICO(0))
	assert.Equal(t, 850, ScaleToFICO(100))
	assert.Equal(t, 575, ScaleToFICO(50))
	assert.Equal(t, 300, ScaleToFICO(-10))
	assert.Equal(t, 850, ScaleToFICO(120))
}

func TestCalculateScoreImpact(t *testing.T) {
	calc := newTestCalculator()
	current := models.CreditProfile{
		Accounts:  []models.AccountData{card(4500, 5000, 2000)},
		Inquiries: []models.InquiryData{{Date: daysAgo(30), Creditor: "Amex"}},
	}

	t.Run("identical changes have no impact", func(t *testing.T) {
		accounts := current.Accounts
		inquiries := current.Inquiries
		impact := calc.CalculateScoreImpact(current, models.ProfileChanges{Accounts: &accounts, Inquiries: &inquiries})
		assert.Equal(t, 0, impact.Impact)
		assert.Equal(t, impact.CurrentScore, impact.NewScore)
	})

	t.Run("empty changes fall back to current", func(t *testing.T) {
		impact := calc.CalculateScoreImpact(current, models.ProfileChanges{})
		assert.Equal(t, 0, impact.Impact)
	})

	t.Run("paying down balance raises score", func(t *testing.T) {
		paid := []models.AccountData{card(250, 5000, 2000)}
		impact := calc.CalculateScoreImpact(current, models.ProfileChanges{Accounts: &paid})
		assert.Greater(t, impact.Impact, 0)
		assert.Equal(t, impact.NewScore-impact.CurrentScore, impact.Impact)
	})

	t.Run("explicit empty slice overrides", func(t *testing.T) {
		none := []models.InquiryData{}
		impact := calc.CalculateScoreImpact(current, models.ProfileChanges{Inquiries: &none})
		assert.GreaterOrEqual(t, impact.Impact, 0)
	})
}
