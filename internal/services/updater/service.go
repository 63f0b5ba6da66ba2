// Package updater orchestrates the recurring price-mutation and
// portfolio-revaluation cycle.
package updater

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
	"github.com/Ranjith-H7/backend/internal/models"
	"github.com/Ranjith-H7/backend/internal/services/market"
	"github.com/Ranjith-H7/backend/internal/services/portfolio"
)

// Compile-time interface check
var _ interfaces.UpdateService = (*Service)(nil)

// Service implements UpdateService. One cycle runs in two strictly ordered
// phases: every asset price is mutated and persisted first, then every user
// portfolio is revalued against the persisted prices. Entities are processed
// one at a time and saves are paced by a token-bucket limiter to avoid burst
// write pressure on the store.
type Service struct {
	storage   interfaces.StorageManager
	simulator *market.Simulator
	valuator  *portfolio.Valuator
	logger    *common.Logger
	interval  time.Duration
	limiter   *rate.Limiter
	clock     func() time.Time

	// runMu serializes cycles: a trigger that fires while a cycle is still
	// executing is skipped, not overlapped.
	runMu sync.Mutex

	// mu guards lastCycleStart; the cycle is its single writer.
	mu             sync.Mutex
	lastCycleStart time.Time
}

// NewService creates an update service. The last-cycle timestamp starts at
// construction time so next-update estimates are meaningful before the first
// scheduled cycle fires.
func NewService(
	storage interfaces.StorageManager,
	simulator *market.Simulator,
	valuator *portfolio.Valuator,
	logger *common.Logger,
	cfg common.UpdateConfig,
) *Service {
	writeRate := cfg.WriteRate
	if writeRate <= 0 {
		writeRate = 25
	}

	s := &Service{
		storage:   storage,
		simulator: simulator,
		valuator:  valuator,
		logger:    logger,
		interval:  cfg.GetInterval(),
		limiter:   rate.NewLimiter(rate.Limit(writeRate), writeRate),
		clock:     time.Now,
	}
	s.lastCycleStart = s.clock()
	return s
}

// Run executes one full update cycle. A cycle that starts while the store is
// unreachable, or while another cycle is still running, is reported as
// skipped without mutating any state.
func (s *Service) Run(ctx context.Context) (*models.CycleReport, error) {
	if !s.runMu.TryLock() {
		s.logger.Warn().Msg("Update cycle still running, skipping trigger")
		return &models.CycleReport{
			StartedAt:  s.clock(),
			Skipped:    true,
			SkipReason: "previous cycle still running",
		}, nil
	}
	defer s.runMu.Unlock()

	start := s.clock()
	report := &models.CycleReport{StartedAt: start}

	if err := s.storage.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Store unreachable, skipping update cycle")
		report.Skipped = true
		report.SkipReason = "store unreachable"
		report.Duration = s.clock().Sub(start)
		return report, nil
	}

	s.setLastCycleStart(start)

	prices, assetsUpdated, err := s.updateAssets(ctx)
	if err != nil {
		// Could not load the asset list at all: abort with state untouched;
		// the next scheduled cycle retries.
		report.Duration = s.clock().Sub(start)
		return report, fmt.Errorf("failed to load assets: %w", err)
	}
	report.AssetsUpdated = assetsUpdated

	usersUpdated, purged, err := s.revalueUsers(ctx, prices)
	report.UsersUpdated = usersUpdated
	report.HoldingsPurged = purged
	report.Duration = s.clock().Sub(start)
	if err != nil {
		// Asset prices are already durable; partial completion is accepted.
		return report, fmt.Errorf("failed to load users: %w", err)
	}

	s.logger.Info().
		Int("assets_updated", report.AssetsUpdated).
		Int("users_updated", report.UsersUpdated).
		Int("holdings_purged", report.HoldingsPurged).
		Dur("elapsed", report.Duration).
		Msg("Update cycle complete")

	return report, nil
}

// updateAssets mutates and persists every asset, returning the assetID →
// durable price lookup for the revaluation phase. A failed save keeps the
// asset's previous price in the lookup, since that is what remains persisted.
func (s *Service) updateAssets(ctx context.Context) (map[string]float64, int, error) {
	assets, err := s.storage.AssetStore().ListAssets(ctx)
	if err != nil {
		return nil, 0, err
	}

	prices := make(map[string]float64, len(assets))
	updated := 0

	for _, asset := range assets {
		previous := asset.Price
		s.simulator.Mutate(asset, s.clock())

		if err := s.limiter.Wait(ctx); err != nil {
			prices[asset.ID] = previous
			s.logger.Warn().Err(err).Msg("Update cycle cancelled during asset phase")
			return prices, updated, nil
		}

		if err := s.storage.AssetStore().SaveAsset(ctx, asset); err != nil {
			s.logger.Error().Err(err).
				Str("asset", asset.Name).
				Msg("Failed to save asset, continuing")
			prices[asset.ID] = previous
			continue
		}

		prices[asset.ID] = asset.Price
		updated++
	}

	return prices, updated, nil
}

// revalueUsers revalues every user against the price lookup and persists the
// ones the write-back policy selects. Per-user failures never abort the batch.
func (s *Service) revalueUsers(ctx context.Context, prices map[string]float64) (int, int, error) {
	users, err := s.storage.UserStore().ListUsers(ctx)
	if err != nil {
		return 0, 0, err
	}

	updated := 0
	purged := 0

	for _, user := range users {
		outcome := s.valuator.Revalue(user, prices, s.clock())
		purged += outcome.Purged
		if !outcome.Save {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Update cycle cancelled during user phase")
			return updated, purged, nil
		}

		if err := s.storage.UserStore().SaveUser(ctx, user); err != nil {
			s.logger.Error().Err(err).
				Str("user", user.Email).
				Msg("Failed to save user, continuing")
			continue
		}

		updated++
		s.logger.Debug().
			Str("user", user.Email).
			Float64("invested", user.TotalInvested).
			Float64("current", user.CurrentValue).
			Float64("profit_loss", user.ProfitLoss).
			Msg("User portfolio updated")
	}

	return updated, purged, nil
}

// Status derives cycle timing from the last cycle start and the configured
// interval. The estimate is recomputed on every query, never persisted.
func (s *Service) Status() models.CycleStatus {
	last := s.LastCycleStart()
	next := last.Add(s.interval)

	seconds := int64(math.Ceil(next.Sub(s.clock()).Seconds()))
	if seconds < 0 {
		seconds = 0
	}

	return models.CycleStatus{
		LastUpdate:         last,
		NextUpdate:         next,
		SecondsUntilUpdate: seconds,
	}
}

// LastCycleStart returns the start time of the most recent cycle.
func (s *Service) LastCycleStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCycleStart
}

func (s *Service) setLastCycleStart(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCycleStart = t
}
