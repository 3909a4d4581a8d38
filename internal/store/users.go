package store

import (
	"context"
	"fmt"

	"dorm-manager-backend/internal/model"
)

// SetUserActive toggles an account's active flag. Deactivated users
// fail the per-request session check on their next call.
func (s *gormStore) SetUserActive(ctx context.Context, userID int64, active bool) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update user %d active flag: %w", userID, err)
	}
	return &user, nil
}
