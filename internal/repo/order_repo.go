// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// model.
//
// Error semantics:
//   - When an order is not found (or is no longer in the expected state for
//     a conditional update), functions return ErrNotFound.
//   - A caller-supplied ID that already exists yields ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
)

// CreateOrder inserts o as a pending order. A caller-supplied ID is kept.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if o.ID == "" {
		o.ID = domain.NewID()
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = o.CreatedAt
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetOrder fetches an order by ID.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns every order, most recent first.
func ListOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListOrdersPage returns a page of orders, most recent first. Use
// CountOrders for pagination metadata.
func ListOrdersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountOrders returns the total number of orders.
func CountOrders(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error
	return total, err
}

// ListOrdersByVisitor returns one visitor's orders, most recent first.
func ListOrdersByVisitor(ctx context.Context, db *gorm.DB, visitorID string) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// TransitionOrder moves order id from status `from` to `to`, optionally
// setting the assigned representative. The update is conditional on the
// current status so two concurrent transitions cannot both apply; a lost
// race or a missing row returns ErrNotFound.
func TransitionOrder(ctx context.Context, db *gorm.DB, id string, from, to domain.OrderStatus, repIndex *int) error {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if repIndex != nil {
		updates["assigned_rep_index"] = *repIndex
	}
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOrdersByStatus returns the number of orders in every status.
// Statuses with no orders are present with a zero count.
func CountOrdersByStatus(ctx context.Context, db *gorm.DB) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status domain.OrderStatus
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[domain.OrderStatus]int64{
		domain.OrderPending:   0,
		domain.OrderAssigned:  0,
		domain.OrderCompleted: 0,
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
