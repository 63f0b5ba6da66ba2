package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/models"
)

// AssetStore persists assets in the "asset" table.
type AssetStore struct {
	db      *surrealdb.DB
	logger  *common.Logger
	timeout time.Duration
}

func NewAssetStore(db *surrealdb.DB, logger *common.Logger, timeout time.Duration) *AssetStore {
	return &AssetStore{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

func (s *AssetStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *AssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	asset, err := surrealdb.Select[models.Asset](ctx, s.db, surrealmodels.NewRecordID("asset", id))
	if err != nil {
		return nil, fmt.Errorf("failed to select asset: %w", err)
	}
	if asset == nil {
		return nil, fmt.Errorf("asset not found")
	}
	return asset, nil
}

func (s *AssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	sql := "SELECT * FROM asset ORDER BY name"

	results, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Asset
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *AssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	sql := "UPSERT $rid CONTENT $asset"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("asset", asset.ID), "asset": asset}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save asset after retries: %w", lastErr)
}

func (s *AssetStore) CountAssets(ctx context.Context) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	type countResult struct {
		Count int `json:"count"`
	}

	sql := "SELECT count() AS count FROM asset GROUP ALL"

	results, err := surrealdb.Query[[]countResult](ctx, s.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count, nil
	}
	return 0, nil
}
