package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/fee-reminder/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListAccounts loads every account together with all of its installments
func (r *Repository) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT id, full_name, mobile, course, status, total_fees, paid_fees,
		       old_paid_fees, admission_date
		FROM fees.accounts
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	byID := make(map[string]*models.Account)
	for rows.Next() {
		account := &models.Account{}
		var status string
		var admission sql.NullString
		if err := rows.Scan(&account.ID, &account.FullName, &account.Mobile, &account.Course,
			&status, &account.TotalFees, &account.PaidFees, &account.OldPaidFees, &admission); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Status = models.AccountStatus(status)
		account.AdmissionDate = admission.String
		accounts = append(accounts, account)
		byID[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	if err := r.attachInstallments(ctx, byID); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *Repository) attachInstallments(ctx context.Context, byID map[string]*models.Account) error {
	query := `
		SELECT account_id, paid_on, amount
		FROM fees.installments
		ORDER BY account_id, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID string
		var paidOn sql.NullString
		var inst models.Installment
		if err := rows.Scan(&accountID, &paidOn, &inst.Amount); err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}
		inst.Date = paidOn.String
		if account, ok := byID[accountID]; ok {
			account.Installments = append(account.Installments, inst)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate installments: %w", err)
	}
	return nil
}

// GetRunState returns the last recorded audit run, or nil if there is none
func (r *Repository) GetRunState(ctx context.Context) (*models.RunState, error) {
	query := `
		SELECT last_run_date, last_run_count, updated_at
		FROM fees.run_state
		WHERE id = 1`
	state := &models.RunState{}
	err := r.db.QueryRowContext(ctx, query).Scan(&state.LastRunDate, &state.LastRunCount, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}
	return state, nil
}

// PutRunState overwrites the run state row
func (r *Repository) PutRunState(ctx context.Context, state *models.RunState) error {
	query := `
		INSERT INTO fees.run_state (id, last_run_date, last_run_count, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET last_run_date = EXCLUDED.last_run_date,
		    last_run_count = EXCLUDED.last_run_count,
		    updated_at = EXCLUDED.updated_at`
	// date sent as text so the session time zone cannot shift the day
	_, err := r.db.ExecContext(ctx, query, state.LastRunDate.Format("2006-01-02"), state.LastRunCount, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put run state: %w", err)
	}
	return nil
}
