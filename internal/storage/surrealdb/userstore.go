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

// UserStore persists users in the "user" table.
type UserStore struct {
	db      *surrealdb.DB
	logger  *common.Logger
	timeout time.Duration
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger, timeout time.Duration) *UserStore {
	return &UserStore{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

func (s *UserStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID("user", id))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	sql := "SELECT * FROM user WHERE email = $email LIMIT 1"
	vars := map[string]any{"email": email}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, fmt.Errorf("user not found")
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	sql := "SELECT * FROM user ORDER BY email"

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.User
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *UserStore) SaveUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	sql := "UPSERT $rid CONTENT $user"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("user", user.ID), "user": user}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save user after retries: %w", lastErr)
}
