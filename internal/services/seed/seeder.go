// Package seed provisions initial asset data and runs maintenance repairs.
package seed

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
	"github.com/Ranjith-H7/backend/internal/models"
)

// Compile-time interface check
var _ interfaces.SeedService = (*Service)(nil)

// defaultAsset describes one entry of the initial asset set.
type defaultAsset struct {
	Name   string
	Type   models.AssetType
	Price  float64
	Volume int64
}

// The default instrument set inserted when the asset collection is empty.
var defaultAssets = []defaultAsset{
	{Name: "Reliance Industries", Type: models.AssetTypeStock, Price: 2450.00, Volume: 250000},
	{Name: "Tata Consultancy Services", Type: models.AssetTypeStock, Price: 3890.00, Volume: 180000},
	{Name: "HDFC Bank", Type: models.AssetTypeStock, Price: 1520.00, Volume: 320000},
	{Name: "Infosys", Type: models.AssetTypeStock, Price: 1475.00, Volume: 210000},
	{Name: "State Bank of India", Type: models.AssetTypeStock, Price: 615.00, Volume: 400000},
	{Name: "Bluechip Equity Fund", Type: models.AssetTypeFund, Price: 85.50, Volume: 90000},
	{Name: "Balanced Advantage Fund", Type: models.AssetTypeFund, Price: 42.75, Volume: 70000},
	{Name: "Index Growth Fund", Type: models.AssetTypeFund, Price: 156.20, Volume: 60000},
}

// Service implements SeedService.
type Service struct {
	storage  interfaces.StorageManager
	logger   *common.Logger
	interval time.Duration
	rng      *rand.Rand
	clock    func() time.Time
}

// NewService creates a seed service. The interval spaces backfilled history
// points the same way the live cycle would.
func NewService(storage interfaces.StorageManager, logger *common.Logger, interval time.Duration) *Service {
	return &Service{
		storage:  storage,
		logger:   logger,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:    time.Now,
	}
}

// EnsureAssets inserts the default asset set only when the collection is
// empty, so a restart never duplicates instruments. Returns the number of
// assets created.
func (s *Service) EnsureAssets(ctx context.Context) (int, error) {
	count, err := s.storage.AssetStore().CountAssets(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := s.clock()
	created := 0
	for _, d := range defaultAssets {
		asset := &models.Asset{
			ID:             uuid.NewString(),
			Name:           d.Name,
			Type:           d.Type,
			Price:          d.Price,
			ReferencePrice: d.Price,
			Volume:         d.Volume,
			PriceHistory:   []models.PricePoint{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.storage.AssetStore().SaveAsset(ctx, asset); err != nil {
			s.logger.Error().Err(err).Str("asset", d.Name).Msg("Failed to seed asset")
			continue
		}
		created++
	}

	s.logger.Info().Int("created", created).Msg("Initial asset data created")
	return created, nil
}

// BackfillHistory replaces every asset's price history with a synthetic
// recent walk: the requested number of points, spaced at the cycle interval,
// ending at the asset's current price. Returns the number of assets updated.
func (s *Service) BackfillHistory(ctx context.Context, points int) (int, error) {
	if points <= 0 {
		points = 24
	}

	assets, err := s.storage.AssetStore().ListAssets(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock()
	updated := 0

	for _, asset := range assets {
		ref := asset.ReferencePrice
		if ref <= 0 {
			ref = asset.Price
		}

		history := make([]models.PricePoint, 0, points)
		for i := points - 1; i >= 0; i-- {
			ts := now.Add(-time.Duration(i) * s.interval)
			variation := s.rng.Float64()*20 - 10
			price := asset.Price + variation
			price = math.Max(ref*0.3, math.Min(ref*3.0, price))
			history = append(history, models.PricePoint{
				Price:     math.Round(price*100) / 100,
				Volume:    int64(s.rng.Intn(1000000)) + 50000,
				Timestamp: ts,
			})
		}
		// The final point reflects the asset's actual stored price.
		history[len(history)-1].Price = asset.Price
		history[len(history)-1].Volume = asset.Volume

		asset.PriceHistory = history
		if err := s.storage.AssetStore().SaveAsset(ctx, asset); err != nil {
			s.logger.Error().Err(err).Str("asset", asset.Name).Msg("Failed to backfill history")
			continue
		}
		updated++
	}

	s.logger.Info().Int("assets", updated).Int("points", points).Msg("Price history backfilled")
	return updated, nil
}

// CleanupPortfolios drops holdings whose asset no longer exists, across all
// users, without recomputing valuations. Returns the number of holdings
// removed.
func (s *Service) CleanupPortfolios(ctx context.Context) (int, error) {
	assets, err := s.storage.AssetStore().ListAssets(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		known[a.ID] = struct{}{}
	}

	users, err := s.storage.UserStore().ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, user := range users {
		clean := user.Portfolio[:0:0]
		for _, h := range user.Portfolio {
			if _, ok := known[h.AssetID]; ok {
				clean = append(clean, h)
			}
		}
		if len(clean) == len(user.Portfolio) {
			continue
		}

		dropped := len(user.Portfolio) - len(clean)
		user.Portfolio = clean
		if err := s.storage.UserStore().SaveUser(ctx, user); err != nil {
			s.logger.Error().Err(err).Str("user", user.Email).Msg("Failed to clean portfolio")
			continue
		}
		removed += dropped
		s.logger.Info().Str("user", user.Email).Int("removed", dropped).Msg("Cleaned portfolio")
	}

	return removed, nil
}
