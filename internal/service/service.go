package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/bureau"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/cache"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/letters"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/metrics"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/middleware"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/parser"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/payments"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/scoring"
	"github.com/bloXbandit/CreditKadabbra-sub000/internal/utils"
)

// weakFactorThreshold marks factors worth working on
const weakFactorThreshold = 70.0

var (
	// ErrUnauthenticated is returned when the context carries no user
	ErrUnauthenticated = errors.New("user ID not found in context")
	// ErrInvalidReport is returned for a report that cannot be parsed at all
	ErrInvalidReport = errors.New("invalid credit report")
)

// Store is the persistence the service depends on
type Store interface {
	SaveScoreSnapshot(ctx context.Context, snap *models.ScoreSnapshot) error
	LatestScoreSnapshot(ctx context.Context, userID int64) (*models.ScoreSnapshot, error)
	SaveImportedAccounts(ctx context.Context, userID int64, rows []models.CSVAccountData) error
	ListImportedAccounts(ctx context.Context, userID int64) ([]models.CSVAccountData, error)
	ReplaceLiveAccounts(ctx context.Context, userID int64, accounts []models.LiveAccount) error
}

// KnownBureau is a score the consumer pulled from one bureau
type KnownBureau struct {
	Bureau string `json:"bureau"`
	Score  int    `json:"score,omitempty"`
}

// ReportAnalysis is the result of analysing an uploaded report
type ReportAnalysis struct {
	SnapshotID   string                    `json:"snapshot_id"`
	Report       models.ParsedCreditReport `json:"report"`
	Result       models.ScoreResult        `json:"result"`
	BureauScores []models.BureauScore      `json:"bureau_scores,omitempty"`
}

// Service handles business logic
type Service struct {
	repo       Store
	cache      cache.BureauCache
	calculator *scoring.Calculator
	simulator  *bureau.Simulator
	sealKey    []byte
	log        *logrus.Logger
}

// Option customises a Service
type Option func(*Service)

// WithCalculator replaces the default score calculator
func WithCalculator(c *scoring.Calculator) Option {
	return func(s *Service) { s.calculator = c }
}

// WithSimulator replaces the default bureau simulator
func WithSimulator(sim *bureau.Simulator) Option {
	return func(s *Service) { s.simulator = sim }
}

// NewService initializes a new service. bureauCache may be nil.
func NewService(repo Store, bureauCache cache.BureauCache, sealKey []byte, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		cache:      bureauCache,
		calculator: scoring.NewCalculator(),
		simulator:  bureau.NewSimulator(nil),
		sealKey:    sealKey,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func userFromContext(ctx context.Context) (int64, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

// AnalyzeReportText parses a free-text report, scores it and stores the snapshot
func (s *Service) AnalyzeReportText(ctx context.Context, text string, known *KnownBureau) (*ReportAnalysis, error) {
	report := parser.ParseCreditReportText(text)
	metrics.ReportsParsed.WithLabelValues("text").Inc()
	return s.analyze(ctx, "text", report, known)
}

// AnalyzeReportXML parses a bureau XML export, scores it and stores the snapshot
func (s *Service) AnalyzeReportXML(ctx context.Context, data []byte, known *KnownBureau) (*ReportAnalysis, error) {
	report, err := parser.ParseCreditReportXML(data)
	if err != nil {
		metrics.ParseFailures.WithLabelValues("xml").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	metrics.ReportsParsed.WithLabelValues("xml").Inc()
	return s.analyze(ctx, "xml", report, known)
}

func (s *Service) analyze(ctx context.Context, source string, report models.ParsedCreditReport, known *KnownBureau) (*ReportAnalysis, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result := s.score(source, report.Profile())
	analysis := &ReportAnalysis{Report: report, Result: result}

	if known != nil && known.Bureau != "" {
		knownScore := known.Score
		if knownScore == 0 {
			knownScore = result.Score
		}
		scores, err := s.simulate(ctx, userID, known.Bureau, knownScore, len(report.Accounts))
		if err != nil {
			return nil, err
		}
		analysis.BureauScores = scores
	}

	snap := &models.ScoreSnapshot{
		UserID:       userID,
		Source:       source,
		Result:       result,
		BureauScores: analysis.BureauScores,
		WeakFactors:  WeakFactors(result.Factors),
	}
	if err := s.repo.SaveScoreSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	analysis.SnapshotID = snap.ID

	s.log.Infof("Report analysed for user %d: source=%s accounts=%d score=%d",
		userID, source, len(report.Accounts), result.Score)
	return analysis, nil
}

// CalculateScore scores a profile and stores the snapshot
func (s *Service) CalculateScore(ctx context.Context, profile models.CreditProfile) (*models.ScoreSnapshot, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result := s.score("profile", profile)
	snap := &models.ScoreSnapshot{
		UserID:      userID,
		Source:      "profile",
		Result:      result,
		WeakFactors: WeakFactors(result.Factors),
	}
	if err := s.repo.SaveScoreSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	s.log.Infof("Score calculated for user %d: %d (%s)", userID, result.Score, result.Grade)
	return snap, nil
}

func (s *Service) score(source string, profile models.CreditProfile) models.ScoreResult {
	result := s.calculator.CalculateCreditScore(profile)
	metrics.ScoresCalculated.WithLabelValues(source).Inc()
	metrics.ScoreDistribution.Observe(float64(result.Score))
	return result
}

// ScoreImpact compares a profile with a what-if variant
func (s *Service) ScoreImpact(profile models.CreditProfile, changes models.ProfileChanges) models.ScoreImpact {
	impact := s.calculator.CalculateScoreImpact(profile, changes)
	s.log.Infof("Score impact calculated: %d -> %d", impact.CurrentScore, impact.NewScore)
	return impact
}

// LatestScore returns the caller's most recent snapshot
func (s *Service) LatestScore(ctx context.Context) (*models.ScoreSnapshot, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.LatestScoreSnapshot(ctx, userID)
}

// SimulateBureaus estimates the two bureau scores the caller did not pull
func (s *Service) SimulateBureaus(ctx context.Context, known KnownBureau, accountCount int) ([]models.BureauScore, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.simulate(ctx, userID, known.Bureau, known.Score, accountCount)
}

func (s *Service) simulate(ctx context.Context, userID int64, bureauName string, knownScore, accountCount int) ([]models.BureauScore, error) {
	known, err := bureau.ParseBureau(bureauName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		scores, err := s.cache.GetBureauScores(ctx, userID, known, knownScore, accountCount)
		switch {
		case err == nil:
			metrics.BureauSimulations.WithLabelValues(string(known), "hit").Inc()
			return scores, nil
		case !errors.Is(err, cache.ErrMiss):
			s.log.Warnf("Bureau cache read failed for user %d: %v", userID, err)
		}
	}

	scores, err := s.simulator.SimulateMissingBureauScores(known, knownScore, accountCount)
	if err != nil {
		return nil, err
	}
	metrics.BureauSimulations.WithLabelValues(string(known), "miss").Inc()

	if s.cache != nil {
		if err := s.cache.SetBureauScores(ctx, userID, known, knownScore, accountCount, scores); err != nil {
			s.log.Warnf("Bureau cache write failed for user %d: %v", userID, err)
		}
	}

	s.log.Infof("Bureau scores simulated for user %d from %s %d", userID, known, knownScore)
	return scores, nil
}

// ImportAccountsCSV parses a spreadsheet export, stores the rows with sealed
// account numbers and returns them with masked account numbers
func (s *Service) ImportAccountsCSV(ctx context.Context, text string) ([]models.CSVAccountData, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := parser.ParseAccountsCSV(text)
	if err != nil {
		metrics.ParseFailures.WithLabelValues("csv").Inc()
		return nil, err
	}
	metrics.ReportsParsed.WithLabelValues("csv").Inc()

	stored := make([]models.CSVAccountData, len(rows))
	masked := make([]models.CSVAccountData, len(rows))
	for i, row := range rows {
		stored[i], masked[i] = row, row
		if row.AccountNumber == nil {
			continue
		}
		sealed, err := utils.Seal(*row.AccountNumber, s.sealKey)
		if err != nil {
			return nil, fmt.Errorf("failed to seal account number: %w", err)
		}
		display := utils.MaskAccountNumber(*row.AccountNumber)
		stored[i].AccountNumber = &sealed
		masked[i].AccountNumber = &display
	}

	if err := s.repo.SaveImportedAccounts(ctx, userID, stored); err != nil {
		return nil, err
	}

	s.log.Infof("Imported %d accounts for user %d", len(rows), userID)
	return masked, nil
}

// ImportedAccounts returns the caller's imported rows. Stored account numbers
// are unsealed only to be masked again.
func (s *Service) ImportedAccounts(ctx context.Context) ([]models.CSVAccountData, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListImportedAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].AccountNumber == nil {
			continue
		}
		plain, err := utils.Open(*rows[i].AccountNumber, s.sealKey)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal account number for %s: %w", rows[i].AccountName, err)
		}
		display := utils.MaskAccountNumber(plain)
		rows[i].AccountNumber = &display
	}

	s.log.Infof("Listed %d imported accounts for user %d", len(rows), userID)
	return rows, nil
}

// OptimalPayment recommends a payment date for one account
func (s *Service) OptimalPayment(acc models.LiveAccount) models.PaymentRecommendation {
	rec := payments.RecommendationFor(acc)
	s.log.Infof("Payment date calculated for %s: %s", rec.AccountName, rec.OptimalPaymentDate.Format("2006-01-02"))
	return rec
}

// PaymentPlan stores the caller's tracked accounts for reminders and returns
// their recommendations in payment order
func (s *Service) PaymentPlan(ctx context.Context, accounts []models.LiveAccount) ([]models.PaymentRecommendation, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceLiveAccounts(ctx, userID, accounts); err != nil {
		return nil, err
	}
	recs := payments.CalculateAllPaymentDates(accounts)

	s.log.Infof("Payment plan built for user %d: %d of %d accounts", userID, len(recs), len(accounts))
	return recs, nil
}

// GenerateLetter renders a dispute letter
func (s *Service) GenerateLetter(ctx context.Context, letterType models.LetterType, in models.LetterInput) (models.DisputeLetter, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return models.DisputeLetter{}, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	letter, err := letters.Generate(letterType, in)
	if err != nil {
		return models.DisputeLetter{}, err
	}
	metrics.LettersGenerated.WithLabelValues(string(letterType)).Inc()

	s.log.Infof("Dispute letter %s generated for user %d: %s", letter.Reference, userID, letterType)
	return letter, nil
}

// WeakFactors names the factors scoring below 70, in weight order
func WeakFactors(f models.ScoreFactors) []string {
	named := []struct {
		name   string
		factor models.FactorScore
	}{
		{"payment_history", f.PaymentHistory},
		{"credit_utilization", f.CreditUtilization},
		{"credit_age", f.CreditAge},
		{"credit_mix", f.CreditMix},
		{"new_credit", f.NewCredit},
	}

	var weak []string
	for _, n := range named {
		if n.factor.Score < weakFactorThreshold {
			weak = append(weak, n.name)
		}
	}
	return weak
}
