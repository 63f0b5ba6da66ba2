package market

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/models"
)

func newTestSimulator(historyCap int, seed int64) *Simulator {
	return NewSimulatorWithRand(historyCap, rand.New(rand.NewSource(seed)), common.NewSilentLogger())
}

func newStock(price float64) *models.Asset {
	return &models.Asset{
		ID:             "asset-1",
		Name:           "Test Stock",
		Type:           models.AssetTypeStock,
		Price:          price,
		ReferencePrice: price,
		Volume:         200000,
	}
}

func TestMutateAppendsHistoryPoint(t *testing.T) {
	sim := newTestSimulator(2000, 1)
	asset := newStock(100.00)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	sim.Mutate(asset, now)

	require.Len(t, asset.PriceHistory, 1)
	point := asset.PriceHistory[0]
	assert.Equal(t, asset.Price, point.Price)
	assert.Equal(t, asset.Volume, point.Volume)
	assert.Equal(t, now, point.Timestamp)
	assert.Equal(t, now, asset.UpdatedAt)
}

func TestMutateStaysWithinDeltaBand(t *testing.T) {
	sim := newTestSimulator(2000, 42)
	now := time.Now()

	for i := 0; i < 1000; i++ {
		asset := newStock(100.00)
		sim.Mutate(asset, now)
		assert.InDelta(t, 100.00, asset.Price, StockDeltaBand/2+0.01)
	}

	for i := 0; i < 1000; i++ {
		asset := newStock(100.00)
		asset.Type = models.AssetTypeFund
		sim.Mutate(asset, now)
		assert.InDelta(t, 100.00, asset.Price, FundDeltaBand/2+0.01)
	}
}

func TestMutateClampsAgainstReferencePrice(t *testing.T) {
	sim := newTestSimulator(2000, 7)
	now := time.Now()

	// Price already at the floor; a downward delta cannot cross it.
	asset := newStock(100.00)
	asset.Price = 30.00
	for i := 0; i < 500; i++ {
		sim.Mutate(asset, now)
		require.GreaterOrEqual(t, asset.Price, 30.00)
		require.LessOrEqual(t, asset.Price, 300.00)
	}
	// The anchor never moves with the walk.
	assert.Equal(t, 100.00, asset.ReferencePrice)
}

func TestMutateAdoptsMissingReferencePrice(t *testing.T) {
	sim := newTestSimulator(2000, 3)
	asset := newStock(250.00)
	asset.ReferencePrice = 0

	sim.Mutate(asset, time.Now())

	assert.Equal(t, 250.00, asset.ReferencePrice)
}

func TestMutateRoundsToTwoDecimals(t *testing.T) {
	sim := newTestSimulator(2000, 11)
	now := time.Now()

	for i := 0; i < 200; i++ {
		asset := newStock(99.99)
		sim.Mutate(asset, now)
		assert.Equal(t, math.Round(asset.Price*100)/100, asset.Price)
	}
}

func TestMutateTrimsHistoryToCap(t *testing.T) {
	sim := newTestSimulator(5, 13)
	asset := newStock(100.00)
	now := time.Now()

	for i := 0; i < 20; i++ {
		sim.Mutate(asset, now.Add(time.Duration(i)*time.Minute))
	}

	require.Len(t, asset.PriceHistory, 5)
	// The retained points are the newest ones.
	last := asset.PriceHistory[len(asset.PriceHistory)-1]
	assert.Equal(t, now.Add(19*time.Minute), last.Timestamp)
	assert.Equal(t, asset.Price, last.Price)
}

func TestMutateVolumeNeverNegative(t *testing.T) {
	sim := newTestSimulator(2000, 17)
	now := time.Now()

	for i := 0; i < 500; i++ {
		asset := newStock(100.00)
		sim.Mutate(asset, now)
		assert.GreaterOrEqual(t, asset.Volume, int64(0))
	}
}

func TestNewSimulatorDefaultsHistoryCap(t *testing.T) {
	sim := NewSimulator(0, common.NewSilentLogger())
	assert.Equal(t, 2000, sim.historyCap)
}
