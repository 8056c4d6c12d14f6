// Package storage keeps a local SQLite mirror of fetched transaction
// histories. The sync worker refreshes it; the report CLI can serve reports
// from it offline, so the repository also satisfies the source ports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blueshirts/cofi/internal/core"
	"github.com/blueshirts/cofi/internal/source"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ source.TransactionSource = (*Repository)(nil)
	_ source.AccountSource     = (*Repository)(nil)
)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceTransactions swaps the cached history for uid with the given one.
// Full-refresh semantics: the upstream list is authoritative, so stale rows
// are dropped rather than merged. A transaction whose time does not parse
// aborts the whole replace.
func (r *Repository) ReplaceTransactions(ctx context.Context, uid int64, transactions []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(uid, transaction_id, account_id, merchant, raw_merchant, amount_cents, transaction_time, transaction_unix_ms, is_pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range transactions {
		ts, err := t.Timestamp()
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			uid, t.ID, t.AccountID, t.Merchant, t.RawMerchant, t.Amount, t.Time, ts.UnixMilli(), t.IsPending); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Replaced cached transactions", "uid", uid, "transaction_count", len(transactions))
	return nil
}

// ReplaceAccounts swaps the cached account list for uid.
func (r *Repository) ReplaceAccounts(ctx context.Context, uid int64, accounts []core.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	for _, a := range accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (uid, account_id, name, institution_id, balance_cents)
			VALUES (?, ?, ?, ?, ?)`,
			uid, a.ID, a.Name, a.InstitutionID, a.Balance); err != nil {
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Replaced cached accounts", "uid", uid, "account_count", len(accounts))
	return nil
}

// Transactions implements source.TransactionSource from the local cache,
// ascending by transaction time as the engine expects.
func (r *Repository) Transactions(ctx context.Context, creds source.Credentials) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, account_id, merchant, raw_merchant, amount_cents, transaction_time, is_pending
		FROM transactions
		WHERE uid = ?
		ORDER BY transaction_unix_ms ASC, transaction_id ASC`, creds.UID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Merchant, &t.RawMerchant, &t.Amount, &t.Time, &t.IsPending); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Accounts implements source.AccountSource from the local cache.
func (r *Repository) Accounts(ctx context.Context, creds source.Credentials) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, name, institution_id, balance_cents
		FROM accounts
		WHERE uid = ?
		ORDER BY account_id ASC`, creds.UID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.InstitutionID, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}
