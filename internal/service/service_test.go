package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/bureau"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/cache"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/letters"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/middleware"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/parser"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/repository"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/scoring"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
)

type mockStore struct {
	snapshots []*models.ScoreSnapshot
	imported  []models.CSVAccountData
	live      []models.LiveAccount
	saveErr   error
}

func (m *mockStore) SaveScoreSnapshot(_ context.Context, snap *models.ScoreSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	snap.ID = "snap-1"
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockStore) LatestScoreSnapshot(_ context.Context, userID int64) (*models.ScoreSnapshot, error) {
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].UserID == userID {
			return m.snapshots[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStore) SaveImportedAccounts(_ context.Context, _ int64, rows []models.CSVAccountData) error {
	m.imported = rows
	return m.saveErr
}

func (m *mockStore) ListImportedAccounts(context.Context, int64) ([]models.CSVAccountData, error) {
	out := make([]models.CSVAccountData, len(m.imported))
	copy(out, m.imported)
	return out, nil
}

func (m *mockStore) ReplaceLiveAccounts(_ context.Context, userID int64, accounts []models.LiveAccount) error {
	for i := range accounts {
		accounts[i].UserID = userID
	}
	m.live = accounts
	return m.saveErr
}

type mockCache struct {
	entries map[string][]models.BureauScore
	getErr  error
	sets    int
}

func cacheKey(userID int64, known models.Bureau, score, accounts int) string {
	return fmt.Sprintf("%d:%s:%d:%d", userID, known, score, accounts)
}

func (m *mockCache) GetBureauScores(_ context.Context, userID int64, known models.Bureau, score, accounts int) ([]models.BureauScore, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	scores, ok := m.entries[cacheKey(userID, known, score, accounts)]
	if !ok {
		return nil, cache.ErrMiss
	}
	return scores, nil
}

func (m *mockCache) SetBureauScores(_ context.Context, userID int64, known models.Bureau, score, accounts int, scores []models.BureauScore) error {
	m.sets++
	m.entries[cacheKey(userID, known, score, accounts)] = scores
	return nil
}

var fixedNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *mockStore, c cache.BureauCache) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	key, err := utils.DeriveKey("test-secret")
	require.NoError(t, err)

	return NewService(store, c, key, logger,
		WithCalculator(scoring.NewCalculator(scoring.WithClock(func() time.Time { return fixedNow }))),
		WithSimulator(bureau.NewSeededSimulator(1)),
	)
}

func authed() context.Context {
	return middleware.WithUserID(context.Background(), 42)
}

const sampleReport = `ACCOUNTS
Credit Card - Chase Freedom
Balance: $500
Credit Limit: $1000
Opened: 01/15/2015
INQUIRIES
Capital One 03/10/2024
`

func TestAnalyzeReportText(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)

	analysis, err := svc.AnalyzeReportText(authed(), sampleReport, &KnownBureau{Bureau: "Experian", Score: 700})
	require.NoError(t, err)

	require.Len(t, analysis.Report.Accounts, 1)
	assert.Equal(t, models.AccountTypeCreditCard, analysis.Report.Accounts[0].AccountType)
	assert.Len(t, analysis.Report.Inquiries, 1)
	assert.Equal(t, "snap-1", analysis.SnapshotID)

	require.Len(t, analysis.BureauScores, 3)
	assert.Equal(t, 700, analysis.BureauScores[1].Score)
	assert.False(t, analysis.BureauScores[1].IsSimulated)

	require.Len(t, store.snapshots, 1)
	snap := store.snapshots[0]
	assert.Equal(t, int64(42), snap.UserID)
	assert.Equal(t, "text", snap.Source)
	assert.Equal(t, analysis.Result, snap.Result)
	assert.Equal(t, analysis.BureauScores, snap.BureauScores)
}

func TestAnalyzeReportText_DefaultsKnownScore(t *testing.T) {
	svc := newTestService(t, &mockStore{}, nil)

	analysis, err := svc.AnalyzeReportText(authed(), sampleReport, &KnownBureau{Bureau: "equifax"})
	require.NoError(t, err)
	assert.Equal(t, analysis.Result.Score, analysis.BureauScores[0].Score)
}

func TestAnalyzeReportText_Errors(t *testing.T) {
	svc := newTestService(t, &mockStore{}, nil)

	_, err := svc.AnalyzeReportText(context.Background(), sampleReport, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.AnalyzeReportText(authed(), sampleReport, &KnownBureau{Bureau: "innovis"})
	assert.ErrorIs(t, err, bureau.ErrUnknownBureau)

	failing := newTestService(t, &mockStore{saveErr: errors.New("db down")}, nil)
	_, err = failing.AnalyzeReportText(authed(), sampleReport, nil)
	assert.EqualError(t, err, "db down")
}

func TestAnalyzeReportXML(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)

	xml := `<CreditReport><Tradelines><Tradeline><Creditor>Chase</Creditor><AccountType>Credit Card</AccountType>` +
		`<Balance>500</Balance><CreditLimit>1000</CreditLimit></Tradeline></Tradelines></CreditReport>`
	analysis, err := svc.AnalyzeReportXML(authed(), []byte(xml), nil)
	require.NoError(t, err)
	require.Len(t, analysis.Report.Accounts, 1)
	assert.Empty(t, analysis.BureauScores)
	assert.Equal(t, "xml", store.snapshots[0].Source)

	_, err = svc.AnalyzeReportXML(authed(), []byte(`<CreditReport bureau=></CreditReport>`), nil)
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestCalculateScoreAndLatest(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)

	_, err := svc.LatestScore(authed())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	snap, err := svc.CalculateScore(authed(), models.CreditProfile{})
	require.NoError(t, err)
	assert.Equal(t, 713, snap.Result.Score)
	assert.Equal(t, []string{"credit_age", "credit_mix"}, snap.WeakFactors)

	latest, err := svc.LatestScore(authed())
	require.NoError(t, err)
	assert.Equal(t, snap, latest)
}

func TestScoreImpact_IdenticalChanges(t *testing.T) {
	svc := newTestService(t, &mockStore{}, nil)
	profile := models.CreditProfile{Inquiries: []models.InquiryData{{Date: fixedNow.AddDate(0, -1, 0), Creditor: "Chase"}}}

	impact := svc.ScoreImpact(profile, models.ProfileChanges{Inquiries: &profile.Inquiries})
	assert.Equal(t, 0, impact.Impact)

	none := []models.InquiryData{}
	impact = svc.ScoreImpact(profile, models.ProfileChanges{Inquiries: &none})
	assert.Greater(t, impact.Impact, 0)
}

func TestSimulateBureaus_Cache(t *testing.T) {
	c := &mockCache{entries: map[string][]models.BureauScore{}}
	svc := newTestService(t, &mockStore{}, c)

	first, err := svc.SimulateBureaus(authed(), KnownBureau{Bureau: "transunion", Score: 690}, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, models.ConfidenceHigh, first[0].Confidence)

	second, err := svc.SimulateBureaus(authed(), KnownBureau{Bureau: "transunion", Score: 690}, 12)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.sets)
}

func TestSimulateBureaus_CacheKeyedByAccountCount(t *testing.T) {
	c := &mockCache{entries: map[string][]models.BureauScore{}}
	svc := newTestService(t, &mockStore{}, c)

	thin, err := svc.SimulateBureaus(authed(), KnownBureau{Bureau: "transunion", Score: 690}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceLow, thin[0].Confidence)

	thick, err := svc.SimulateBureaus(authed(), KnownBureau{Bureau: "transunion", Score: 690}, 20)
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceHigh, thick[0].Confidence)
	assert.Equal(t, models.ConfidenceHigh, thick[2].Confidence)
	assert.Equal(t, 2, c.sets)
	assert.Len(t, c.entries, 2)
}

func TestSimulateBureaus_CacheFailureFallsBack(t *testing.T) {
	c := &mockCache{entries: map[string][]models.BureauScore{}, getErr: errors.New("redis down")}
	svc := newTestService(t, &mockStore{}, c)

	scores, err := svc.SimulateBureaus(authed(), KnownBureau{Bureau: "experian", Score: 720}, 4)
	require.NoError(t, err)
	assert.Len(t, scores, 3)
}

func TestImportAccountsCSV(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)

	csv := "Account Name,Account Number,Balance\nVisa,4111222233334444,\"$1,200\"\nAuto,,$300\n"
	rows, err := svc.ImportAccountsCSV(authed(), csv)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].AccountNumber)
	assert.Equal(t, "****4444", *rows[0].AccountNumber)
	assert.Equal(t, "1200", *rows[0].Balance)
	assert.Nil(t, rows[1].AccountNumber)

	require.Len(t, store.imported, 2)
	key, err := utils.DeriveKey("test-secret")
	require.NoError(t, err)
	plain, err := utils.Open(*store.imported[0].AccountNumber, key)
	require.NoError(t, err)
	assert.Equal(t, "4111222233334444", plain)

	_, err = svc.ImportAccountsCSV(authed(), "Account Name,Balance\n")
	assert.ErrorIs(t, err, parser.ErrInsufficientCSVRows)
}

func TestImportedAccounts(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)

	_, err := svc.ImportAccountsCSV(authed(), "Account Name,Account Number,Balance\nVisa,4111222233334444,$50\nAuto,,$300\n")
	require.NoError(t, err)

	rows, err := svc.ImportedAccounts(authed())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].AccountNumber)
	assert.Equal(t, "****4444", *rows[0].AccountNumber)
	assert.Nil(t, rows[1].AccountNumber)
	assert.NotEqual(t, "****4444", *store.imported[0].AccountNumber, "stored rows stay sealed")

	_, err = svc.ImportedAccounts(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestImportedAccounts_WrongKey(t *testing.T) {
	store := &mockStore{}
	_, err := newTestService(t, store, nil).ImportAccountsCSV(authed(), "Account Name,Account Number\nVisa,4111222233334444\n")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	other, err := utils.DeriveKey("rotated-secret")
	require.NoError(t, err)

	_, err = NewService(store, nil, other, logger).ImportedAccounts(authed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Visa")
}

func TestPaymentPlan(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, store, nil)
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	accounts := []models.LiveAccount{
		{Name: "Late", StatementDate: day(time.March, 25), DueDate: day(time.April, 19), CurrentBalance: 100, CreditLimit: 1000},
		{Name: "Early", StatementDate: day(time.March, 5), DueDate: day(time.March, 30), CurrentBalance: 100, CreditLimit: 1000},
		{Name: "Loan", DueDate: day(time.March, 30), CurrentBalance: 100},
	}

	recs, err := svc.PaymentPlan(authed(), accounts)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Early", recs[0].AccountName)
	assert.Equal(t, "Late", recs[1].AccountName)

	require.Len(t, store.live, 3)
	assert.Equal(t, int64(42), store.live[0].UserID)
}

func TestOptimalPayment(t *testing.T) {
	svc := newTestService(t, &mockStore{}, nil)
	due := time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC)

	rec := svc.OptimalPayment(models.LiveAccount{Name: "Visa", DueDate: due, CurrentBalance: 5000, CreditLimit: 10000, PlannedPayment: 3000})
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), rec.StatementDate)
	assert.Equal(t, 30.0, rec.UtilizationImpact.Improvement)
}

func TestGenerateLetter(t *testing.T) {
	svc := newTestService(t, &mockStore{}, nil)
	in := models.LetterInput{ConsumerName: "Jane Doe", Bureau: models.BureauEquifax, CreditorName: "Acme"}

	letter, err := svc.GenerateLetter(authed(), models.LetterNotMine, in)
	require.NoError(t, err)
	assert.Equal(t, models.LetterNotMine, letter.Type)

	_, err = svc.GenerateLetter(authed(), "goodwill", in)
	assert.ErrorIs(t, err, letters.ErrUnknownLetterType)
}

func TestWeakFactors(t *testing.T) {
	f := models.ScoreFactors{
		PaymentHistory:    models.FactorScore{Score: 100},
		CreditUtilization: models.FactorScore{Score: 69.9},
		CreditAge:         models.FactorScore{Score: 70},
		CreditMix:         models.FactorScore{Score: 0},
		NewCredit:         models.FactorScore{Score: 95},
	}
	assert.Equal(t, []string{"credit_utilization", "credit_mix"}, WeakFactors(f))
	assert.Nil(t, WeakFactors(models.ScoreFactors{
		PaymentHistory: models.FactorScore{Score: 100}, CreditUtilization: models.FactorScore{Score: 100},
		CreditAge: models.FactorScore{Score: 100}, CreditMix: models.FactorScore{Score: 100},
		NewCredit: models.FactorScore{Score: 100},
	}))
}
