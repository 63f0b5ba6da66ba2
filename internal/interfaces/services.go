package interfaces

import (
	"context"

	"github.com/Ranjith-H7/backend/internal/models"
)

// UpdateService runs the recurring asset-mutate + portfolio-revalue cycle.
// Scheduled and manual invocations share the same Run contract.
type UpdateService interface {
	// Run executes one full cycle: mutate and persist every asset's price,
	// then revalue and persist every user's portfolio against the new prices.
	Run(ctx context.Context) (*models.CycleReport, error)

	// Status derives cycle timing from the last cycle start. Not persisted.
	Status() models.CycleStatus
}

// SeedService provisions initial data and runs maintenance repairs.
type SeedService interface {
	// EnsureAssets inserts the default asset set when the collection is empty.
	EnsureAssets(ctx context.Context) (int, error)

	// BackfillHistory regenerates a synthetic recent price history for every
	// asset, spaced at the nominal cycle interval.
	BackfillHistory(ctx context.Context, points int) (int, error)

	// CleanupPortfolios purges holdings whose asset no longer exists, across
	// all users, without running a full revaluation.
	CleanupPortfolios(ctx context.Context) (int, error)
}
