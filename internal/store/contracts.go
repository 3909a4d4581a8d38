package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// MoveIn creates a contract and flips room and tenant state in one
// transaction. The room must be vacant and the tenant must not already
// hold an active contract; both checks run inside the transaction so
// two concurrent move-ins cannot both succeed.
func (s *gormStore) MoveIn(ctx context.Context, contract *model.Contract) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, contract.RoomID).Error; err != nil {
			return notFound(err)
		}
		if room.Status != model.RoomStatusVacant {
			return ErrRoomOccupied
		}

		var tenant model.Tenant
		if err := tx.First(&tenant, contract.TenantID).Error; err != nil {
			return notFound(err)
		}

		var activeCount int64
		if err := tx.Model(&model.Contract{}).
			Where("tenant_id = ? AND active", contract.TenantID).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("failed to check active contracts for tenant %d: %w", contract.TenantID, err)
		}
		if activeCount > 0 {
			return ErrActiveContract
		}

		contract.Active = true
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		if err := tx.Model(&room).Update("status", model.RoomStatusOccupied).Error; err != nil {
			return fmt.Errorf("failed to mark room %d occupied: %w", room.ID, err)
		}

		updates := map[string]any{
			"room_id": contract.RoomID,
			"status":  model.TenantStatusActive,
		}
		if err := tx.Model(&tenant).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to activate tenant %d: %w", tenant.ID, err)
		}
		return nil
	})
}

// Terminate deactivates a contract at move-out: the contract gets its
// end date, the room goes back to vacant, and the tenant is detached
// from the room.
func (s *gormStore) Terminate(ctx context.Context, contractID int64, endDate time.Time) (*model.Contract, error) {
	var contract model.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contract, contractID).Error; err != nil {
			return notFound(err)
		}
		if !contract.Active {
			return ErrContractInactive
		}

		updates := map[string]any{
			"active":   false,
			"end_date": endDate,
		}
		if err := tx.Model(&contract).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to deactivate contract %d: %w", contractID, err)
		}

		if err := tx.Model(&model.Room{}).
			Where("id = ?", contract.RoomID).
			Update("status", model.RoomStatusVacant).Error; err != nil {
			return fmt.Errorf("failed to vacate room %d: %w", contract.RoomID, err)
		}

		tenantUpdates := map[string]any{
			"room_id": nil,
			"status":  model.TenantStatusMovingOut,
		}
		if err := tx.Model(&model.Tenant{}).
			Where("id = ?", contract.TenantID).
			Updates(tenantUpdates).Error; err != nil {
			return fmt.Errorf("failed to detach tenant %d: %w", contract.TenantID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
