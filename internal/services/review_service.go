// Package services – ReviewService
//
// ReviewService stores public ratings. Reviews are append-only and listed
// newest first.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

// AnonymousName labels reviews posted without a name.
const AnonymousName = "Anonymous Visitor"

// ReviewInput is a review as submitted by a visitor.
type ReviewInput struct {
	ID      string
	Name    string
	Rating  int
	Comment string
}

// ReviewService coordinates review persistence and change events.
type ReviewService struct {
	DB   *gorm.DB
	Feed Publisher

	MaxCommentRunes int
}

// NewReviewService constructs a ReviewService with a 1000-rune comment cap.
func NewReviewService(db *gorm.DB, pub Publisher) *ReviewService {
	return &ReviewService{DB: db, Feed: pub, MaxCommentRunes: 1000}
}

// Post stores a review. visitorID is optional; reviews are public.
func (s *ReviewService) Post(ctx context.Context, visitorID string, in ReviewInput) (*domain.Review, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Post",
		trace.WithAttributes(attribute.Int("review.rating", in.Rating)),
	)
	defer span.End()

	if in.ID != "" && !validClientID(in.ID) {
		return nil, ErrInvalidID
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	name := normalizeLine(in.Name)
	if name == "" {
		name = AnonymousName
	}
	comment := normalizeText(in.Comment)
	if tooLong(comment, s.MaxCommentRunes) || tooLong(name, 255) {
		return nil, ErrTooLong
	}

	now := time.Now().UTC()
	r := &domain.Review{
		ID:        in.ID,
		VisitorID: visitorID,
		Name:      name,
		Rating:    in.Rating,
		Comment:   comment,
		Date:      now.Format(time.RFC3339),
		CreatedAt: now,
	}
	err := repo.CreateReview(ctx, s.DB, r)
	if errors.Is(err, repo.ErrDuplicate) {
		prev, gerr := repo.GetReview(ctx, s.DB, in.ID)
		if gerr != nil {
			return nil, gerr
		}
		if prev.VisitorID != visitorID {
			return nil, ErrIDConflict
		}
		return prev, nil
	}
	if err != nil {
		return nil, err
	}
	publish(s.Feed, feed.TableReviews, feed.Insert, r.VisitorID, r)
	return r, nil
}

// List returns up to limit reviews, newest first. limit <= 0 returns all.
func (s *ReviewService) List(ctx context.Context, limit int) ([]domain.Review, error) {
	items, err := repo.ListReviews(ctx, s.DB, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Review{}
	}
	return items, nil
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	r, err := repo.GetReview(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return r, err
}
