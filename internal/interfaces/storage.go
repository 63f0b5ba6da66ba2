// Package interfaces defines service and storage contracts for the market server.
package interfaces

import (
	"context"

	"github.com/Ranjith-H7/backend/internal/models"
)

// StorageManager coordinates the document store backends.
type StorageManager interface {
	AssetStore() AssetStore
	UserStore() UserStore

	// Ping reports whether the backing store is currently reachable.
	Ping(ctx context.Context) error

	Close() error
}

// AssetStore persists simulated market assets.
type AssetStore interface {
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	ListAssets(ctx context.Context) ([]*models.Asset, error)
	SaveAsset(ctx context.Context, asset *models.Asset) error
	CountAssets(ctx context.Context) (int, error)
}

// UserStore persists user accounts and their portfolios.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}
