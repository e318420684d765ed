package ports

import (
	"context"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

// UserStore persists users and their derived score fields.
type UserStore interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	GetScoreFields(ctx context.Context, userID string) (domain.Score, error)
	// CompareAndSetScoreFields writes next only if the stored fields still equal
	// expected. It reports false when another writer got there first.
	CompareAndSetScoreFields(ctx context.Context, userID string, expected, next domain.Score) (bool, error)
	// ListUsersByPointsDescending returns at most limit users ordered by stored
	// points, ties broken by insertion order.
	ListUsersByPointsDescending(ctx context.Context, limit int) ([]*domain.User, error)
	// CountUsersRankedAbove counts users that would be listed before userID
	// holding the given points.
	CountUsersRankedAbove(ctx context.Context, userID string, points int) (int64, error)
	ForEachUserID(ctx context.Context, fn func(userID string) error) error
	// BackfillScoreFields initialises points and badges on users missing them
	// and returns how many documents were touched.
	BackfillScoreFields(ctx context.Context) (int64, error)
}
