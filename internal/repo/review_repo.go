// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for reviews.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
)

// CreateReview inserts r. A caller-supplied ID is kept; duplicates return
// ErrDuplicate.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if r.ID == "" {
		r.ID = domain.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetReview fetches a review by ID.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviews returns reviews, newest first. limit <= 0 returns all.
func ListReviews(ctx context.Context, db *gorm.DB, limit int) ([]domain.Review, error) {
	var out []domain.Review
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
