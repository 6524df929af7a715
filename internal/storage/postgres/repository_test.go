package postgres

import (
	"context"
	"os"
	"testing"

	"expenses/internal/ledger"
	"expenses/internal/ledger/ledgertest"
)

// Set LEDGER_TEST_POSTGRES_URL to a disposable database to run these tests.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("LEDGER_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	repo, err := NewRepository(ctx, url)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	if _, err := repo.pool.Exec(ctx, `TRUNCATE expenses RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryConformance(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		return newTestRepository(t)
	})
}
