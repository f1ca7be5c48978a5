package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bloXbandit/CreditKadabbra-sub000/internal/models"
)

// ErrNotFound is returned when a lookup matches no rows
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveScoreSnapshot stores a score calculation, assigning an ID when it has none
func (r *Repository) SaveScoreSnapshot(ctx context.Context, snap *models.ScoreSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	factors, err := json.Marshal(snap.Result.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}
	bureaus, err := json.Marshal(snap.BureauScores)
	if err != nil {
		return fmt.Errorf("failed to encode bureau scores: %w", err)
	}

	query := `
		INSERT INTO credit.score_snapshots (id, user_id, source, score, grade, factors, weak_factors, bureau_scores, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		snap.ID, snap.UserID, snap.Source, snap.Result.Score, string(snap.Result.Grade),
		factors, pq.Array(snap.WeakFactors), bureaus,
	).Scan(&snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save score snapshot: %w", err)
	}
	return nil
}

// LatestScoreSnapshot returns the most recent snapshot for a user
func (r *Repository) LatestScoreSnapshot(ctx context.Context, userID int64) (*models.ScoreSnapshot, error) {
	snap := &models.ScoreSnapshot{}
	var (
		grade            string
		factors, bureaus []byte
	)
	query := `
		SELECT id, user_id, source, score, grade, factors, weak_factors, bureau_scores, created_at
		FROM credit.score_snapshots
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&snap.ID, &snap.UserID, &snap.Source, &snap.Result.Score, &grade,
		&factors, pq.Array(&snap.WeakFactors), &bureaus, &snap.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("score snapshot for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find score snapshot: %w", err)
	}

	snap.Result.Grade = models.Grade(grade)
	if err := json.Unmarshal(factors, &snap.Result.Factors); err != nil {
		return nil, fmt.Errorf("failed to decode factors: %w", err)
	}
	if len(bureaus) > 0 {
		if err := json.Unmarshal(bureaus, &snap.BureauScores); err != nil {
			return nil, fmt.Errorf("failed to decode bureau scores: %w", err)
		}
	}
	return snap, nil
}

// SaveImportedAccounts stores CSV rows in one transaction. Account numbers must
// already be sealed by the caller.
func (r *Repository) SaveImportedAccounts(ctx context.Context, userID int64, rows []models.CSVAccountData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO credit.imported_accounts
			(user_id, account_name, account_number, account_type, balance, credit_limit,
			 interest_rate, minimum_payment, due_date, statement_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP)`
	for _, row := range rows {
		_, err := tx.ExecContext(ctx, query,
			userID, row.AccountName, row.AccountNumber, row.AccountType, row.Balance, row.CreditLimit,
			row.InterestRate, row.MinimumPayment, row.DueDate, row.StatementDate, row.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to save imported account %s: %w", row.AccountName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit imported accounts: %w", err)
	}
	return nil
}

// ListImportedAccounts returns a user's imported rows oldest first. Account
// numbers come back sealed.
func (r *Repository) ListImportedAccounts(ctx context.Context, userID int64) ([]models.CSVAccountData, error) {
	query := `
		SELECT account_name, account_number, account_type, balance::text, credit_limit::text,
		       interest_rate::text, minimum_payment::text, due_date::text, statement_date::text, status
		FROM credit.imported_accounts
		WHERE user_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list imported accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.CSVAccountData{}
	for rows.Next() {
		var (
			row    models.CSVAccountData
			fields [9]sql.NullString
		)
		if err := rows.Scan(
			&row.AccountName, &fields[0], &fields[1], &fields[2], &fields[3],
			&fields[4], &fields[5], &fields[6], &fields[7], &fields[8],
		); err != nil {
			return nil, fmt.Errorf("failed to scan imported account: %w", err)
		}
		row.AccountNumber = stringPtr(fields[0])
		row.AccountType = stringPtr(fields[1])
		row.Balance = stringPtr(fields[2])
		row.CreditLimit = stringPtr(fields[3])
		row.InterestRate = stringPtr(fields[4])
		row.MinimumPayment = stringPtr(fields[5])
		row.DueDate = stringPtr(fields[6])
		row.StatementDate = stringPtr(fields[7])
		row.Status = stringPtr(fields[8])
		accounts = append(accounts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list imported accounts: %w", err)
	}
	return accounts, nil
}

// ReplaceLiveAccounts swaps a user's tracked revolving accounts for the given set
func (r *Repository) ReplaceLiveAccounts(ctx context.Context, userID int64, accounts []models.LiveAccount) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM credit.live_accounts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear live accounts: %w", err)
	}

	query := `
		INSERT INTO credit.live_accounts
			(user_id, name, statement_date, due_date, current_balance, credit_limit, planned_payment, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id`
	for i := range accounts {
		acc := &accounts[i]
		err := tx.QueryRowContext(ctx, query,
			userID, acc.Name, nullTime(acc.StatementDate), acc.DueDate,
			acc.CurrentBalance, acc.CreditLimit, acc.PlannedPayment,
		).Scan(&acc.ID)
		if err != nil {
			return fmt.Errorf("failed to save live account %s: %w", acc.Name, err)
		}
		acc.UserID = userID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit live accounts: %w", err)
	}
	return nil
}

// ListLiveAccounts returns every tracked account with its owner's contact details
func (r *Repository) ListLiveAccounts(ctx context.Context) ([]models.LiveAccount, error) {
	query := `
		SELECT a.id, a.user_id, u.email, u.name, a.name, a.statement_date, a.due_date,
		       a.current_balance, a.credit_limit, a.planned_payment
		FROM credit.live_accounts a
		JOIN credit.users u ON u.id = a.user_id
		ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list live accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.LiveAccount
	for rows.Next() {
		var (
			acc       models.LiveAccount
			statement sql.NullTime
		)
		if err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.OwnerEmail, &acc.OwnerName, &acc.Name, &statement, &acc.DueDate,
			&acc.CurrentBalance, &acc.CreditLimit, &acc.PlannedPayment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan live account: %w", err)
		}
		if statement.Valid {
			acc.StatementDate = statement.Time
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list live accounts: %w", err)
	}
	return accounts, nil
}

// MarkReminderSent records a reminder for an account and payment date. It reports
// false when one was already recorded.
func (r *Repository) MarkReminderSent(ctx context.Context, accountID int64, paymentDate time.Time) (bool, error) {
	query := `
		INSERT INTO credit.payment_reminders (live_account_id, payment_date, sent_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (live_account_id, payment_date) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, accountID, paymentDate)
	if err != nil {
		return false, fmt.Errorf("failed to record reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record reminder: %w", err)
	}
	return n > 0, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
