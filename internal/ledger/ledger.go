// Package ledger is a SQLite-backed points ledger implementing the contract
// the market consumes: deduction, rollback and transaction id generation.
// Deployments with a central points service swap it out behind market.Ledger.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pointmint/market/internal/market"
)

// Response codes and messages.
const (
	codeOK           = 200
	codeInsufficient = 402
	codeNoAccount    = 404

	msgOK           = "ok"
	msgInsufficient = "积分不足"
	msgNoAccount    = "积分账户不存在"
)

// Transaction statuses.
const (
	statusCommitted  = "committed"
	statusRolledBack = "rolled_back"
)

// Ledger keeps per-user point balances and a transaction log in SQLite.
type Ledger struct {
	db *sql.DB
}

var _ market.Ledger = (*Ledger)(nil)

// New creates a ledger over an opened database.
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// GenerateTransactionID returns a fresh opaque transaction id.
func (l *Ledger) GenerateTransactionID() string {
	return uuid.NewString()
}

// Reduce deducts points from a user's balance under the given transaction id.
// A transaction id that was already processed is accepted again without a
// second deduction. Business failures (unknown account, insufficient balance)
// come back as non-2xx codes, not errors.
func (l *Ledger) Reduce(ctx context.Context, userID, transactionID string, amount int64, src string) (market.LedgerResult, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return market.LedgerResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM points_transactions WHERE id = ?`, transactionID,
	).Scan(&status)
	if err == nil {
		// Already processed; deduct nothing.
		return market.LedgerResult{Code: codeOK, Msg: msgOK}, nil
	}
	if err != sql.ErrNoRows {
		return market.LedgerResult{}, fmt.Errorf("checking transaction: %w", err)
	}

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM points_accounts WHERE user_id = ?`, userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return market.LedgerResult{Code: codeNoAccount, Msg: msgNoAccount}, nil
	}
	if err != nil {
		return market.LedgerResult{}, fmt.Errorf("checking balance: %w", err)
	}
	if balance < amount {
		return market.LedgerResult{Code: codeInsufficient, Msg: msgInsufficient}, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE points_accounts SET balance = balance - ? WHERE user_id = ?`,
		amount, userID,
	); err != nil {
		return market.LedgerResult{}, fmt.Errorf("deducting points: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO points_transactions (id, user_id, amount, source, status)
		 VALUES (?, ?, ?, ?, ?)`,
		transactionID, userID, amount, src, statusCommitted,
	); err != nil {
		return market.LedgerResult{}, fmt.Errorf("recording transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return market.LedgerResult{}, fmt.Errorf("committing deduction: %w", err)
	}
	return market.LedgerResult{Code: codeOK, Msg: msgOK}, nil
}

// Rollback refunds a committed deduction. Unknown or already rolled-back
// transaction ids are a no-op, so callers may compensate defensively.
func (l *Ledger) Rollback(ctx context.Context, userID, transactionID, src string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var amount int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT amount, status FROM points_transactions WHERE id = ? AND user_id = ?`,
		transactionID, userID,
	).Scan(&amount, &status)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up transaction: %w", err)
	}
	if status == statusRolledBack {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE points_accounts SET balance = balance + ? WHERE user_id = ?`,
		amount, userID,
	); err != nil {
		return fmt.Errorf("refunding points: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE points_transactions SET status = ? WHERE id = ?`,
		statusRolledBack, transactionID,
	); err != nil {
		return fmt.Errorf("marking transaction rolled back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rollback: %w", err)
	}
	return nil
}

// UserName returns the display name for a user, or "" if unknown.
func (l *Ledger) UserName(ctx context.Context, userID string) (string, error) {
	var username sql.NullString
	err := l.db.QueryRowContext(ctx,
		`SELECT username FROM points_accounts WHERE user_id = ?`, userID,
	).Scan(&username)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting username: %w", err)
	}
	return username.String, nil
}

// Deposit adds points to a user's balance, creating the account if needed.
func (l *Ledger) Deposit(ctx context.Context, userID, username string, amount int64) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO points_accounts (user_id, username, balance) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET balance = balance + ?, username = ?`,
		userID, username, amount, amount, username,
	)
	if err != nil {
		return fmt.Errorf("depositing points: %w", err)
	}
	return nil
}

// Balance returns a user's point balance, or -1 for an unknown account.
func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := l.db.QueryRowContext(ctx,
		`SELECT balance FROM points_accounts WHERE user_id = ?`, userID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return balance, nil
}
