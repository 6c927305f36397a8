// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for named JSON
// content sections.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xevon/studio-backend/internal/domain"
)

// GetContent fetches a content section by name.
func GetContent(ctx context.Context, db *gorm.DB, section string) (*domain.ContentSection, error) {
	var c domain.ContentSection
	if err := db.WithContext(ctx).Where("section = ?", section).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertContent writes data (a JSON document) under section.
func UpsertContent(ctx context.Context, db *gorm.DB, section, data string) (*domain.ContentSection, error) {
	c := &domain.ContentSection{Section: section, Data: data, UpdatedAt: time.Now().UTC()}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteContent removes a section. Deleting a missing section is not an error.
func DeleteContent(ctx context.Context, db *gorm.DB, section string) error {
	return db.WithContext(ctx).Where("section = ?", section).Delete(&domain.ContentSection{}).Error
}
