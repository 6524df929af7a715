// Package postgres is the PostgreSQL-backed ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS expenses (
    seq         BIGSERIAL PRIMARY KEY,
    id          TEXT        NOT NULL UNIQUE,
    amount      NUMERIC     NOT NULL,
    category    TEXT        NOT NULL,
    description TEXT        NOT NULL DEFAULT '',
    date        DATE        NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);
CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);
`

const selectExpense = `SELECT id, amount::text, category, description, date, created_at FROM expenses`

// Repository is a ledger.Ledger stored in PostgreSQL through a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

var _ ledger.Ledger = (*Repository)(nil)

// NewRepository connects to url and makes sure the schema exists.
func NewRepository(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// EnsureSchema creates the expenses table and its indexes when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	// Date defaults to the local day. timestamptz keeps microseconds, so
	// truncate to make the returned record match what is stored.
	e = ledger.FillDefaults(e, time.Now(), uuid.NewString)
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Microsecond)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (id, amount, category, description, date, created_at)
		VALUES ($1, $2::text::numeric, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			created_at = EXCLUDED.created_at`,
		e.ID, e.Amount.String(), e.Category, e.Description, e.Date.Time, e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to Postgres",
		"expense_id", e.ID,
		"category", e.Category,
		"amount", e.Amount.String())
	return e, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx, selectExpense+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.NotFound(id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// List pushes every predicate into SQL; NUMERIC comparison is exact.
func (r *Repository) List(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.HasDateRange() {
		where = append(where, "date BETWEEN "+arg(f.Start.Time)+" AND "+arg(f.End.Time))
	}
	if f.MinAmount != nil {
		where = append(where, "amount >= "+arg(f.MinAmount.String())+"::text::numeric")
	}
	if f.MaxAmount != nil {
		where = append(where, "amount <= "+arg(f.MaxAmount.String())+"::text::numeric")
	}

	query := selectExpense
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	out, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	e, err := scanExpense(tx.QueryRow(ctx, selectExpense+` WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.NotFound(id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense for update: %w", err)
	}

	e = p.Apply(e)
	_, err = tx.Exec(ctx, `
		UPDATE expenses SET amount = $1::text::numeric, category = $2, description = $3, date = $4
		WHERE id = $5`,
		e.Amount.String(), e.Category, e.Description, e.Date.Time, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound(id)
	}
	return nil
}

func (r *Repository) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	all, err := r.query(ctx, selectExpense+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	return ledger.SummarizeByCategory(all), nil
}

func (r *Repository) PeriodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error) {
	rows, err := r.query(ctx, selectExpense+` WHERE date BETWEEN $1 AND $2 ORDER BY seq`, start.Time, end.Time)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("period summary: %w", err)
	}
	return ledger.SummarizePeriod(rows, start, end), nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]core.Expense, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
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

func scanExpense(row pgx.Row) (core.Expense, error) {
	var (
		e         core.Expense
		amount    string
		date      time.Time
		createdAt time.Time
	)
	if err := row.Scan(&e.ID, &amount, &e.Category, &e.Description, &date, &createdAt); err != nil {
		return core.Expense{}, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse amount %q of %s: %w", amount, e.ID, err)
	}
	e.Amount = a
	e.Date = core.DateOf(date)
	e.CreatedAt = createdAt.UTC()
	return e, nil
}
