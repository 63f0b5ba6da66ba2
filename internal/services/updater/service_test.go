package updater

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
	"github.com/Ranjith-H7/backend/internal/models"
	"github.com/Ranjith-H7/backend/internal/services/market"
	"github.com/Ranjith-H7/backend/internal/services/portfolio"
)

// mockStorage implements interfaces.StorageManager in memory.
type mockStorage struct {
	mu      sync.Mutex
	assets  map[string]*models.Asset
	users   map[string]*models.User
	pingErr error

	// per-entity save failure injection
	failAssetSave map[string]error
	failUserSave  map[string]error

	// savedAssetPrices records the price at the moment each asset save landed,
	// letting tests verify phase ordering.
	savedAssetPrices map[string]float64
	userSaves        int

	// blockSaves, when non-nil, is closed to release a save that is holding
	// the cycle open. Used to exercise the skip-if-running policy. saveParked
	// receives once per save that reaches the block.
	blockSaves chan struct{}
	saveParked chan struct{}
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		assets:           make(map[string]*models.Asset),
		users:            make(map[string]*models.User),
		failAssetSave:    make(map[string]error),
		failUserSave:     make(map[string]error),
		savedAssetPrices: make(map[string]float64),
	}
}

func (m *mockStorage) AssetStore() interfaces.AssetStore { return (*mockAssetStore)(m) }
func (m *mockStorage) UserStore() interfaces.UserStore   { return (*mockUserStore)(m) }
func (m *mockStorage) Ping(ctx context.Context) error    { return m.pingErr }
func (m *mockStorage) Close() error                      { return nil }

type mockAssetStore mockStorage

func (s *mockAssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset not found")
	}
	return a, nil
}

func (s *mockAssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Asset
	for _, a := range s.assets {
		out = append(out, a)
	}
	return out, nil
}

func (s *mockAssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	if s.blockSaves != nil {
		s.saveParked <- struct{}{}
		<-s.blockSaves
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failAssetSave[asset.ID]; err != nil {
		return err
	}
	s.assets[asset.ID] = asset
	s.savedAssetPrices[asset.ID] = asset.Price
	return nil
}

func (s *mockAssetStore) CountAssets(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets), nil
}

type mockUserStore mockStorage

func (s *mockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (s *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (s *mockUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *mockUserStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failUserSave[user.ID]; err != nil {
		return err
	}
	s.users[user.ID] = user
	s.userSaves++
	return nil
}

func newTestService(storage interfaces.StorageManager) *Service {
	logger := common.NewSilentLogger()
	sim := market.NewSimulatorWithRand(2000, rand.New(rand.NewSource(1)), logger)
	val := portfolio.NewValuator(logger)
	cfg := common.UpdateConfig{Interval: "10m", HistoryCap: 2000, WriteRate: 1000}
	return NewService(storage, sim, val, logger, cfg)
}

func seedAsset(storage *mockStorage, id string, price float64) {
	storage.assets[id] = &models.Asset{
		ID:             id,
		Name:           "Asset " + id,
		Type:           models.AssetTypeStock,
		Price:          price,
		ReferencePrice: price,
	}
}

func seedUser(storage *mockStorage, id string, holdings ...models.Holding) {
	storage.users[id] = &models.User{
		ID:        id,
		Email:     id + "@example.com",
		Portfolio: holdings,
	}
}

func TestRunUpdatesAssetsThenUsers(t *testing.T) {
	storage := newMockStorage()
	seedAsset(storage, "a1", 100.00)
	seedUser(storage, "u1", models.Holding{AssetID: "a1", Quantity: 10, PurchasePrice: 90.00})

	svc := newTestService(storage)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, 1, report.AssetsUpdated)
	assert.Equal(t, 1, report.UsersUpdated)

	// The user's valuation reflects the price that was persisted in phase A.
	user := storage.users["u1"]
	persisted := storage.savedAssetPrices["a1"]
	assert.InDelta(t, 10*persisted, user.CurrentValue, 0.01)
	require.Len(t, storage.assets["a1"].PriceHistory, 1)
}

func TestRunSkipsWhenStoreUnreachable(t *testing.T) {
	storage := newMockStorage()
	storage.pingErr = fmt.Errorf("connection refused")
	seedAsset(storage, "a1", 100.00)

	svc := newTestService(storage)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Equal(t, "store unreachable", report.SkipReason)
	assert.Empty(t, storage.assets["a1"].PriceHistory)
}

func TestRunSkipsWhileRunning(t *testing.T) {
	storage := newMockStorage()
	seedAsset(storage, "a1", 100.00)
	storage.blockSaves = make(chan struct{})
	storage.saveParked = make(chan struct{})

	svc := newTestService(storage)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Run(context.Background())
		assert.NoError(t, err)
	}()

	// Wait for the first cycle to park inside SaveAsset.
	<-storage.saveParked

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, "previous cycle still running", report.SkipReason)

	close(storage.blockSaves)
	<-done
}

func TestRunContinuesAfterAssetSaveFailure(t *testing.T) {
	storage := newMockStorage()
	seedAsset(storage, "a1", 100.00)
	seedAsset(storage, "a2", 50.00)
	storage.failAssetSave["a1"] = fmt.Errorf("write conflict")

	// u1 holds the failing asset; its valuation must use the durable
	// (previous) price, not the in-memory mutated one.
	seedUser(storage, "u1", models.Holding{AssetID: "a1", Quantity: 2, PurchasePrice: 80.00})

	svc := newTestService(storage)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.AssetsUpdated)
	user := storage.users["u1"]
	assert.InDelta(t, 2*100.00, user.CurrentValue, 0.01)
}

func TestRunContinuesAfterUserSaveFailure(t *testing.T) {
	storage := newMockStorage()
	seedAsset(storage, "a1", 100.00)
	seedUser(storage, "u1", models.Holding{AssetID: "a1", Quantity: 1, PurchasePrice: 10.00})
	seedUser(storage, "u2", models.Holding{AssetID: "a1", Quantity: 1, PurchasePrice: 10.00})
	storage.failUserSave["u1"] = fmt.Errorf("write conflict")

	svc := newTestService(storage)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	// Only the persisted user counts.
	assert.Equal(t, 1, report.UsersUpdated)
}

func TestRunPurgesDanglingHoldings(t *testing.T) {
	storage := newMockStorage()
	seedAsset(storage, "a1", 100.00)
	seedUser(storage, "u1",
		models.Holding{AssetID: "a1", Quantity: 1, PurchasePrice: 10.00},
		models.Holding{AssetID: "deleted", Quantity: 5, PurchasePrice: 20.00},
	)

	svc := newTestService(storage)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.HoldingsPurged)
	require.Len(t, storage.users["u1"].Portfolio, 1)
	assert.Equal(t, "a1", storage.users["u1"].Portfolio[0].AssetID)
}

func TestStatusDerivesNextUpdate(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	svc.setLastCycleStart(now.Add(-4 * time.Minute))

	status := svc.Status()

	assert.Equal(t, now.Add(-4*time.Minute), status.LastUpdate)
	assert.Equal(t, now.Add(6*time.Minute), status.NextUpdate)
	assert.Equal(t, int64(360), status.SecondsUntilUpdate)
}

func TestStatusClampsOverdueToZero(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }
	svc.setLastCycleStart(now.Add(-30 * time.Minute))

	status := svc.Status()
	assert.Equal(t, int64(0), status.SecondsUntilUpdate)
}
