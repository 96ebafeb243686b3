package repository

import (
	"fmt"

	"gorm.io/gorm"

	"faqdesk/internal/model"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(entry *model.ActivityEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create activity entry failed: %w", err)
	}
	return nil
}

func (r *ActivityRepository) List(limit int) ([]model.ActivityEntry, error) {
	tx := r.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var entries []model.ActivityEntry
	if err := tx.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity entries failed: %w", err)
	}
	return entries, nil
}
