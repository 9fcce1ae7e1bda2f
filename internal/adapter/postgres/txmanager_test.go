package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/familytree-names/internal/adapter/postgres"
	"github.com/heartmarshall/familytree-names/internal/adapter/postgres/testhelper"
)

func insertSurname(ctx context.Context, q postgres.Querier, id uuid.UUID, name string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO ref_surnames (id, country, name) VALUES ($1, $2, $3)`,
		id, "TX", name,
	)
	return err
}

// surnameExists checks whether a surname row with the given ID exists.
func surnameExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM ref_surnames WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("surnameExists query: %v", err)
	}
	return exists
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return insertSurname(ctx, postgres.QuerierFromCtx(ctx, pool), id, "commit-"+id.String())
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !surnameExists(t, pool, id) {
		t.Fatal("expected surname to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := insertSurname(ctx, postgres.QuerierFromCtx(ctx, pool), id, "rollback-"+id.String()); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if surnameExists(t, pool, id) {
		t.Fatal("expected surname NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()

	defer func() {
		r := recover()
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}
		if surnameExists(t, pool, id) {
			t.Fatal("expected surname NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := insertSurname(ctx, postgres.QuerierFromCtx(ctx, pool), id, "panic-"+id.String()); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_UncommittedInvisibleOutside(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if err := insertSurname(ctx, q, id, "ctx-"+id.String()); err != nil {
			return err
		}

		var inside bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ref_surnames WHERE id = $1)`, id).Scan(&inside); err != nil {
			return err
		}
		if !inside {
			t.Fatal("expected surname to be visible within the transaction")
		}
		if surnameExists(t, pool, id) {
			t.Fatal("expected surname NOT to be visible outside before commit")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !surnameExists(t, pool, id) {
		t.Fatal("expected surname to exist after committed transaction")
	}
}
