package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"

	_ "modernc.org/sqlite"
)

const expenseColumns = "id, amount, category, description, date, created_at"

// SQLiteRepository is a ledger.Ledger persisted in a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
	// mu serializes read-modify-write sequences (update, delete)
	mu sync.Mutex
}

var _ ledger.Ledger = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts e. An existing id is overwritten and keeps its position.
func (r *SQLiteRepository) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	// The default date is the local calendar day, as in the memory store.
	e = ledger.FillDefaults(e, time.Now(), uuid.NewString)
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			category = excluded.category,
			description = excluded.description,
			date = excluded.date,
			created_at = excluded.created_at`,
		e.ID, e.Amount.String(), e.Category, e.Description, e.Date.String(), formatTimestamp(e.CreatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"expense_id", e.ID,
		"category", e.Category,
		"amount", e.Amount.String(),
		"date", e.Date.String())

	return e, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NotFound(id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// List pushes the category and date predicates into SQL; amount bounds are
// compared as decimals after the scan.
func (r *SQLiteRepository) List(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.HasDateRange() {
		where = append(where, "date BETWEEN ? AND ?")
		args = append(args, f.Start.String(), f.End.String())
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	all, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	out := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if f.MatchesAmount(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	e, err := scanExpense(tx.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NotFound(id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense for update: %w", err)
	}

	e = p.Apply(e)
	_, err = tx.ExecContext(ctx, `
		UPDATE expenses SET amount = ?, category = ?, description = ?, date = ?
		WHERE id = ?`,
		e.Amount.String(), e.Category, e.Description, e.Date.String(), id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return core.NotFound(id)
	}

	slog.DebugContext(ctx, "Expense deleted from SQLite", "expense_id", id)
	return nil
}

func (r *SQLiteRepository) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	all, err := r.query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	return ledger.SummarizeByCategory(all), nil
}

func (r *SQLiteRepository) PeriodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error) {
	rows, err := r.query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE date BETWEEN ? AND ? ORDER BY seq`,
		start.String(), end.String())
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("period summary: %w", err)
	}
	return ledger.SummarizePeriod(rows, start, end), nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                        core.Expense
		amount, date, createdAt string
	)
	if err := row.Scan(&e.ID, &amount, &e.Category, &e.Description, &date, &createdAt); err != nil {
		return core.Expense{}, err
	}

	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q of %s: %w", amount, e.ID, err)
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("parse date of %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at of %s: %w", e.ID, err)
	}
	return e, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
