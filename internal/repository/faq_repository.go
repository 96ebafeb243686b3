package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"faqdesk/internal/model"
)

type FaqRepository struct {
	db *gorm.DB
}

func NewFaqRepository(db *gorm.DB) *FaqRepository {
	return &FaqRepository{db: db}
}

func (r *FaqRepository) Create(faq *model.Faq) error {
	if err := r.db.Create(faq).Error; err != nil {
		return fmt.Errorf("create faq failed: %w", err)
	}
	return nil
}

// List returns all records newest-first; id breaks creation-time ties so the
// order is stable across calls.
func (r *FaqRepository) List() ([]model.Faq, error) {
	var faqs []model.Faq
	if err := r.db.Preload("Attachments").Order("created_at DESC, id DESC").Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("list faqs failed: %w", err)
	}
	return faqs, nil
}

func (r *FaqRepository) GetByID(id string) (*model.Faq, error) {
	var faq model.Faq
	if err := r.db.Preload("Attachments").Where("id = ?", id).First(&faq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query faq by id failed: %w", err)
	}
	return &faq, nil
}

func (r *FaqRepository) ListByCategory(category string) ([]model.Faq, error) {
	var faqs []model.Faq
	if err := r.db.Preload("Attachments").
		Where("LOWER(category) = LOWER(?)", category).
		Order("created_at DESC, id DESC").
		Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("list faqs by category failed: %w", err)
	}
	return faqs, nil
}

// Save replaces every mutable field of the record, attachments included.
func (r *FaqRepository) Save(faq *model.Faq) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("faq_id = ?", faq.ID).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(faq).Error
	})
	if err != nil {
		return fmt.Errorf("save faq failed: %w", err)
	}
	return nil
}

func (r *FaqRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("faq_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Faq{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete faq failed: %w", err)
	}
	return nil
}

// DeleteByCategory removes every record whose category matches name
// case-insensitively and returns how many were removed.
func (r *FaqRepository) DeleteByCategory(name string) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.Faq{}).
			Where("LOWER(category) = LOWER(?)", name).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("faq_id IN ?", ids).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.Faq{})
		if result.Error != nil {
			return result.Error
		}
		count = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete faqs by category failed: %w", err)
	}
	return count, nil
}

// RenameCategory rewrites the category field of every record matching oldName
// case-insensitively and returns how many were touched.
func (r *FaqRepository) RenameCategory(oldName, newName string) (int64, error) {
	result := r.db.Model(&model.Faq{}).
		Where("LOWER(category) = LOWER(?)", oldName).
		Update("category", newName)
	if result.Error != nil {
		return 0, fmt.Errorf("rename category failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Search narrows the list by a case-insensitive substring on question/answer
// and an optional exact (case-insensitive) category.
func (r *FaqRepository) Search(query, category string) ([]model.Faq, error) {
	tx := r.db.Preload("Attachments").Order("created_at DESC, id DESC")
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("LOWER(question) LIKE LOWER(?) OR LOWER(answer) LIKE LOWER(?)", like, like)
	}
	if category != "" {
		tx = tx.Where("LOWER(category) = LOWER(?)", category)
	}
	var faqs []model.Faq
	if err := tx.Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("search faqs failed: %w", err)
	}
	return faqs, nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

func (r *FaqRepository) Categories() ([]CategoryCount, error) {
	var counts []CategoryCount
	if err := r.db.Model(&model.Faq{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("list categories failed: %w", err)
	}
	return counts, nil
}
