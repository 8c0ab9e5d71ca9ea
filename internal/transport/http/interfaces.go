package http

import (
	"context"

	"screenapi/internal/catalog"
	"screenapi/internal/rules"
	"screenapi/internal/selection"
)

// SelectionService is the rules/pricing seam the handlers call through
type SelectionService interface {
	Validate(ctx context.Context, serviceIDs []string) (rules.Result, error)
	Price(ctx context.Context, serviceIDs []string) (selection.PriceBreakdown, error)
	CanAdd(ctx context.Context, serviceIDs []string, candidateID string) (rules.Decision, error)
	CanRemove(ctx context.Context, serviceIDs []string, targetID string) (rules.RemovalImpact, error)
}

// CatalogProvider exposes the catalog snapshot and its reload operation
type CatalogProvider interface {
	Snapshot() *catalog.Catalog
	Reload(ctx context.Context) error
}
