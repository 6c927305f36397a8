// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for known
// visitors (display names chosen in the welcome prompt).
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xevon/studio-backend/internal/domain"
)

// UpsertVisitor stores name for visitorID, replacing any previous name.
func UpsertVisitor(ctx context.Context, db *gorm.DB, visitorID, name string) (*domain.Visitor, error) {
	now := time.Now().UTC()
	v := &domain.Visitor{VisitorID: visitorID, Name: name, CreatedAt: now, UpdatedAt: now}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "visitor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(v).Error
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVisitor fetches a visitor by id.
func GetVisitor(ctx context.Context, db *gorm.DB, visitorID string) (*domain.Visitor, error) {
	var v domain.Visitor
	if err := db.WithContext(ctx).Where("visitor_id = ?", visitorID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// VisitorNames returns the known names for the given ids. Unknown ids are
// absent from the result.
func VisitorNames(ctx context.Context, db *gorm.DB, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Visitor
	if err := db.WithContext(ctx).Where("visitor_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, v := range rows {
		out[v.VisitorID] = v.Name
	}
	return out, nil
}
