package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// PreviousReading returns the most recent reading for the room strictly
// before the given date, or nil when the room has no earlier reading.
func (s *gormStore) PreviousReading(ctx context.Context, roomID int64, before time.Time) (*model.MeterReading, error) {
	var reading model.MeterReading
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND reading_date < ?", roomID, before).
		Order("reading_date DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up previous reading for room %d: %w", roomID, err)
	}
	return &reading, nil
}

// CreateReading persists one meter reading. The room must exist; usage
// validation happens in the handler before this is called.
func (s *gormStore) CreateReading(ctx context.Context, reading *model.MeterReading) error {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, reading.RoomID).Error; err != nil {
		return notFound(err)
	}
	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create meter reading for room %d: %w", reading.RoomID, err)
	}
	return nil
}
