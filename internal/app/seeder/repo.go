// Package seeder defines interfaces and orchestration for loading reconciled
// name datasets into the catalog database.
package seeder

import (
	"context"

	"github.com/heartmarshall/familytree-names/internal/domain"
)

// NameCatalogRepo defines the batch repository contract consumed by the seeder pipeline.
// All methods use only domain types. Implemented by names.Repo.
type NameCatalogRepo interface {
	// Batch inserts: ON CONFLICT DO NOTHING, return the number of new rows.
	BulkInsertForenames(ctx context.Context, names []domain.Forename) (int, error)
	BulkInsertSurnames(ctx context.Context, names []domain.Surname) (int, error)

	// Replace: delete the whole table and insert names in one transaction.
	ReplaceForenames(ctx context.Context, names []domain.Forename) (int, error)
	ReplaceSurnames(ctx context.Context, names []domain.Surname) (int, error)

	// CountByCountry returns the number of stored names per country.
	CountByCountry(ctx context.Context, dataset domain.Dataset) (map[string]int, error)
}
