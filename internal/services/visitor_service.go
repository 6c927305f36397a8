package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

const maxVisitorNameRunes = 80

// VisitorService stores the display names visitors give in the welcome
// prompt.
type VisitorService struct {
	DB   *gorm.DB
	Feed Publisher
}

// NewVisitorService constructs a VisitorService.
func NewVisitorService(db *gorm.DB, pub Publisher) *VisitorService {
	return &VisitorService{DB: db, Feed: pub}
}

// Upsert records name for visitorID, replacing any earlier name.
func (s *VisitorService) Upsert(ctx context.Context, visitorID, name string) (*domain.Visitor, error) {
	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	name = normalizeLine(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if tooLong(name, maxVisitorNameRunes) {
		return nil, ErrTooLong
	}
	v, err := repo.UpsertVisitor(ctx, s.DB, visitorID, name)
	if err != nil {
		return nil, err
	}
	publish(s.Feed, feed.TableVisitors, feed.Update, v.VisitorID, v)
	return v, nil
}

// Name returns the stored name for visitorID.
func (s *VisitorService) Name(ctx context.Context, visitorID string) (string, error) {
	if visitorID == "" {
		return "", ErrMissingVisitor
	}
	v, err := repo.GetVisitor(ctx, s.DB, visitorID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrVisitorNotFound
	}
	if err != nil {
		return "", err
	}
	return v.Name, nil
}
