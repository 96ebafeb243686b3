package repository

import (
	"fmt"

	"gorm.io/gorm"

	"faqdesk/internal/model"
)

type TurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

func (r *TurnRepository) Create(turn *model.Turn) error {
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("create turn failed: %w", err)
	}
	return nil
}

func (r *TurnRepository) ListBySessionID(sessionID uint, limit int) ([]model.Turn, error) {
	var turns []model.Turn
	tx := r.db.Where("session_id = ?", sessionID).Order("created_at ASC, id ASC")
	if limit > 0 {
		var total int64
		if err := r.db.Model(&model.Turn{}).Where("session_id = ?", sessionID).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("count turns failed: %w", err)
		}
		if total > int64(limit) {
			tx = tx.Offset(int(total) - limit)
		}
	}
	if err := tx.Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list turns failed: %w", err)
	}
	return turns, nil
}

// SetAssetPreviewURL backfills the preview once an async upload completes;
// it is the only permitted mutation of an existing turn. The update is
// scoped to the session the caller was verified against, so a turn outside
// that session can never be touched. Returns how many rows matched.
func (r *TurnRepository) SetAssetPreviewURL(turnID, sessionID uint, url string) (int64, error) {
	result := r.db.Model(&model.Turn{}).
		Where("id = ? AND session_id = ?", turnID, sessionID).
		Update("asset_preview_url", url)
	if result.Error != nil {
		return 0, fmt.Errorf("set turn asset preview failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TurnRepository) DeleteBySessionID(sessionID uint) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.Turn{}).Error; err != nil {
		return fmt.Errorf("delete turns failed: %w", err)
	}
	return nil
}
