package repository

import (
	"context"
	"errors"
	"fmt"

	"dental-center/internal/domain/entity"
	domainRepo "dental-center/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresSlotRepository struct {
	db *gorm.DB
}

// NewPostgresSlotRepository migrates the state_slots table and returns a slot repository on top of it
func NewPostgresSlotRepository(db *gorm.DB) (domainRepo.SlotRepository, error) {
	if err := db.AutoMigrate(&entity.StateSlot{}); err != nil {
		return nil, fmt.Errorf("migrate state_slots: %w", err)
	}
	return &postgresSlotRepository{db: db}, nil
}

func (r *postgresSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var slot entity.StateSlot
	err := r.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrSlotNotFound
		}
		return nil, err
	}
	return slot.Payload, nil
}

func (r *postgresSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	slot := entity.StateSlot{Key: key, Payload: payload}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&slot).Error
}

func (r *postgresSlotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&entity.StateSlot{}).Error
}
