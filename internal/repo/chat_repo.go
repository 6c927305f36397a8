// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds conversation-level queries: one
// conversation per visitor, addressed by visitor id.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/reconcile"
)

// LatestMessages returns the most recent message of every conversation,
// most recent conversation first. When two messages of one visitor share
// the latest timestamp, the one with the greater id wins.
func LatestMessages(ctx context.Context, db *gorm.DB) ([]domain.ChatMessage, error) {
	var rows []domain.ChatMessage
	err := db.WithContext(ctx).Raw(`
		SELECT m.* FROM chat_messages m
		JOIN (
			SELECT visitor_id, MAX(created_at) AS last_at
			FROM chat_messages GROUP BY visitor_id
		) l ON m.visitor_id = l.visitor_id AND m.created_at = l.last_at
		ORDER BY m.created_at DESC, m.id DESC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	// rows arrive id-descending within a timestamp, so the first one kept
	// per visitor is the greater id
	return reconcile.Latest(rows, func(m domain.ChatMessage) string { return m.VisitorID }), nil
}

// CountConversations returns the number of distinct visitors that have
// written or received at least one message.
func CountConversations(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Distinct("visitor_id").
		Count(&total).Error
	return total, err
}
