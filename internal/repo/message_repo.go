// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for live-chat
// messages.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
)

// CreateMessage inserts m. A caller-supplied ID is persisted unchanged; an
// empty ID gets a fresh ULID. CreatedAt defaults to now (UTC).
// Writing an ID that already exists returns ErrDuplicate.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListMessages returns one visitor's conversation ordered deterministically
// (CreatedAt ASC, ID ASC).
func ListMessages(ctx context.Context, db *gorm.DB, visitorID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, visitorID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM chat_messages WHERE visitor_id = ?", visitorID).
		Scan(&total).Error
	return total, err
}

// GetMessage fetches a message by ID.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageStatus sets the delivery status of a message. It returns
// ErrNotFound when no row matches.
func UpdateMessageStatus(ctx context.Context, db *gorm.DB, id string, status domain.DeliveryStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
