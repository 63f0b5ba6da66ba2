// Package market generates synthetic price and volume movement for assets.
package market

import (
	"math"
	"math/rand"
	"time"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/models"
)

// Volatility and volume constants for the bounded random walk.
// Stocks move within a wider band than funds.
const (
	StockDeltaBand = 8.0 // full width: delta sampled in [-4, +4]
	FundDeltaBand  = 4.0 // full width: delta sampled in [-2, +2]

	StockBaseVolume = 200000
	FundBaseVolume  = 75000
	VolumeSwing     = 0.2   // multiplicative factor sampled in [0.8, 1.2]
	VolumeJitterMax = 50000 // additive jitter sampled in [0, 50000)

	MinPriceRatio = 0.3 // floor: 30% of the reference price
	MaxPriceRatio = 3.0 // cap: 300% of the reference price
)

// Simulator mutates asset prices via a bounded random walk. Prices are
// clamped against the asset's fixed reference price, not the rolling previous
// price, so repeated clamping cannot compound into unbounded drift.
type Simulator struct {
	historyCap int
	rng        *rand.Rand
	logger     *common.Logger
}

// NewSimulator creates a simulator with a time-seeded random source.
func NewSimulator(historyCap int, logger *common.Logger) *Simulator {
	return NewSimulatorWithRand(historyCap, rand.New(rand.NewSource(time.Now().UnixNano())), logger)
}

// NewSimulatorWithRand creates a simulator with an explicit random source,
// letting tests drive deterministic walks.
func NewSimulatorWithRand(historyCap int, rng *rand.Rand, logger *common.Logger) *Simulator {
	if historyCap <= 0 {
		historyCap = 2000
	}
	return &Simulator{
		historyCap: historyCap,
		rng:        rng,
		logger:     logger,
	}
}

// Mutate advances the asset one step: new clamped price, new volume, and a
// history entry stamped with now. The asset is always left valid; there are
// no error conditions.
func (s *Simulator) Mutate(asset *models.Asset, now time.Time) {
	// Assets persisted before the reference price existed adopt their
	// current price as the clamp anchor on first mutation.
	if asset.ReferencePrice <= 0 {
		asset.ReferencePrice = asset.Price
	}

	previous := asset.Price
	asset.Price = s.nextPrice(asset)
	asset.Volume = s.nextVolume(asset)
	asset.UpdatedAt = now

	asset.PriceHistory = append(asset.PriceHistory, models.PricePoint{
		Price:     asset.Price,
		Volume:    asset.Volume,
		Timestamp: now,
	})
	if len(asset.PriceHistory) > s.historyCap {
		asset.PriceHistory = asset.PriceHistory[len(asset.PriceHistory)-s.historyCap:]
	}

	s.logger.Debug().
		Str("asset", asset.Name).
		Str("type", string(asset.Type)).
		Float64("previous", previous).
		Float64("price", asset.Price).
		Msg("Asset price mutated")
}

// nextPrice samples a uniform delta within the type's band and clamps the
// result to [0.3, 3.0] × reference price, rounded to 2 decimals.
func (s *Simulator) nextPrice(asset *models.Asset) float64 {
	band := FundDeltaBand
	if asset.IsStock() {
		band = StockDeltaBand
	}

	delta := s.rng.Float64()*band - band/2
	raw := asset.Price + delta

	floor := asset.ReferencePrice * MinPriceRatio
	ceil := asset.ReferencePrice * MaxPriceRatio
	clamped := math.Max(floor, math.Min(ceil, raw))

	return round2(clamped)
}

// nextVolume perturbs the type's base volume by ±20% and adds a small jitter.
func (s *Simulator) nextVolume(asset *models.Asset) int64 {
	base := float64(FundBaseVolume)
	if asset.IsStock() {
		base = float64(StockBaseVolume)
	}

	factor := 1 + (s.rng.Float64()*2*VolumeSwing - VolumeSwing)
	volume := int64(math.Floor(base*factor)) + int64(s.rng.Intn(VolumeJitterMax))
	if volume < 0 {
		volume = 0
	}
	return volume
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
