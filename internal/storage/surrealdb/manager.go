// Package surrealdb implements the storage contracts on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
)

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db      *surrealdb.DB
	logger  *common.Logger
	timeout time.Duration

	assetStore *AssetStore
	userStore  *UserStore
}

// NewManager creates a StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// Define tables up front (SurrealDB v3 errors on querying non-existent tables)
	for _, table := range []string{"asset", "user"} {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	timeout := config.Storage.GetTimeout()

	m := &Manager{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
	m.assetStore = NewAssetStore(db, logger, timeout)
	m.userStore = NewUserStore(db, logger, timeout)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// NewManagerWithDB wraps an existing connection; used by integration tests.
func NewManagerWithDB(db *surrealdb.DB, logger *common.Logger, timeout time.Duration) *Manager {
	return &Manager{
		db:         db,
		logger:     logger,
		timeout:    timeout,
		assetStore: NewAssetStore(db, logger, timeout),
		userStore:  NewUserStore(db, logger, timeout),
	}
}

func (m *Manager) AssetStore() interfaces.AssetStore {
	return m.assetStore
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.userStore
}

// Ping verifies the store is reachable with a trivial query.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if _, err := surrealdb.Query[any](ctx, m.db, "RETURN 1", nil); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}
