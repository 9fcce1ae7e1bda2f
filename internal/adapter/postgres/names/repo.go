// Package names implements the name catalog repository using PostgreSQL.
// It owns the ref_forenames and ref_surnames tables.
package names

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/familytree-names/internal/adapter/postgres"
	"github.com/heartmarshall/familytree-names/internal/domain"
)

const (
	forenamesTable = "ref_forenames"
	surnamesTable  = "ref_surnames"

	defaultBatchSize = 500
)

// Repo provides name catalog persistence backed by PostgreSQL.
type Repo struct {
	pool      *pgxpool.Pool
	txm       *postgres.TxManager
	batchSize int
}

// New creates a new name catalog repository. batchSize bounds the number of
// rows sent per pgx.Batch by the Replace methods; values <= 0 mean 500.
func New(pool *pgxpool.Pool, txm *postgres.TxManager, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Repo{pool: pool, txm: txm, batchSize: batchSize}
}

// BulkInsertForenames inserts forenames using pgx.Batch. Names already
// stored for the same country, region and gender are skipped.
// Returns the number of actually inserted rows.
func (r *Repo) BulkInsertForenames(ctx context.Context, names []domain.Forename) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, n := range names {
		batch.Queue(
			`INSERT INTO ref_forenames (id, country, region, gender, rank, name, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (country, region, gender, name) DO NOTHING`,
			n.ID, n.Country, n.Region, n.Gender, n.Rank, n.Name, n.CreatedAt,
		)
	}

	n, err := r.sendBatchExec(ctx, batch)
	return n, postgres.MapError(err, forenamesTable, "insert")
}

// BulkInsertSurnames inserts surnames using pgx.Batch. Names already
// stored for the same country are skipped.
func (r *Repo) BulkInsertSurnames(ctx context.Context, names []domain.Surname) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, n := range names {
		batch.Queue(
			`INSERT INTO ref_surnames (id, country, rank, count, name, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (country, name) DO NOTHING`,
			n.ID, n.Country, n.Rank, n.Count, n.Name, n.CreatedAt,
		)
	}

	n, err := r.sendBatchExec(ctx, batch)
	return n, postgres.MapError(err, surnamesTable, "insert")
}

// ReplaceForenames deletes every stored forename and inserts names in one
// transaction, batchSize rows per batch. On error the previous content is kept.
func (r *Repo) ReplaceForenames(ctx context.Context, names []domain.Forename) (int, error) {
	return replace(ctx, r, forenamesTable, names, r.BulkInsertForenames)
}

// ReplaceSurnames deletes every stored surname and inserts names in one
// transaction.
func (r *Repo) ReplaceSurnames(ctx context.Context, names []domain.Surname) (int, error) {
	return replace(ctx, r, surnamesTable, names, r.BulkInsertSurnames)
}

func replace[T any](
	ctx context.Context,
	r *Repo,
	table string,
	names []T,
	insert func(context.Context, []T) (int, error),
) (int, error) {
	var inserted int
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.truncate(ctx, table); err != nil {
			return err
		}
		for chunk := range slices.Chunk(names, r.batchSize) {
			n, err := insert(ctx, chunk)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// CountByCountry returns the number of stored names per country of dataset.
func (r *Repo) CountByCountry(ctx context.Context, dataset domain.Dataset) (map[string]int, error) {
	table, err := tableFor(dataset)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Builder.
		Select("country", "COUNT(*)").
		From(table).
		GroupBy("country").
		OrderBy("country").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, table, "count")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			country string
			n       int
		)
		if err := rows.Scan(&country, &n); err != nil {
			return nil, fmt.Errorf("scan country count: %w", err)
		}
		counts[country] = n
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, table, "count")
	}

	return counts, nil
}

// truncate removes every row of table within the transaction in ctx.
func (r *Repo) truncate(ctx context.Context, table string) error {
	sql, args, err := postgres.Builder.Delete(table).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, table, "delete")
	}
	return nil
}

// sendBatchExec sends a pgx.Batch and counts affected rows from Exec results.
func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	results := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

func tableFor(dataset domain.Dataset) (string, error) {
	switch dataset {
	case domain.DatasetForenames:
		return forenamesTable, nil
	case domain.DatasetSurnames:
		return surnamesTable, nil
	}
	return "", fmt.Errorf("dataset %q: %w", dataset, domain.ErrValidation)
}
