package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/reconcile"
	"github.com/xevon/studio-backend/internal/services"
)

// ReviewBoard is the public review list and its submit form.
type ReviewBoard struct {
	backend   Backend
	visitorID string
	store     *reconcile.Store[domain.Review]
	busy      atomic.Bool

	// Comment is the review text being composed.
	Comment reconcile.Draft

	mu  sync.Mutex
	sub Subscription
}

// NewReviewBoard builds a board that posts as visitorID. limit caps the
// number of reviews loaded; 0 uses the server default.
func NewReviewBoard(b Backend, visitorID string, limit int) *ReviewBoard {
	return &ReviewBoard{
		backend:   b,
		visitorID: visitorID,
		store: reconcile.NewStore("", reconcile.Descending, func(ctx context.Context, _ string) ([]domain.Review, error) {
			return b.Reviews(ctx, limit)
		}),
	}
}

// Load fetches the review list and follows new reviews.
func (r *ReviewBoard) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		topic := feed.Topic{Table: feed.TableReviews, Types: []feed.EventType{feed.Insert}}
		sub, err := r.backend.Subscribe(ctx, topic, r.onEvent)
		if err != nil {
			return err
		}
		r.sub = sub
	}
	return r.store.Load(ctx)
}

// Close stops following new reviews.
func (r *ReviewBoard) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		r.sub.Close()
		r.sub = nil
	}
}

func (r *ReviewBoard) onEvent(ev feed.Event) {
	rv, err := feed.Decode[domain.Review](ev)
	if err != nil {
		log.Warn().Err(err).Msg("review event dropped")
		return
	}
	r.store.ApplyInsert(rv)
}

// Post submits a rating with the Comment draft. name may be empty. The
// review is added to the top of the list once stored; on failure the
// comment is put back.
func (r *ReviewBoard) Post(ctx context.Context, name string, rating int) (domain.Review, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return domain.Review{}, reconcile.ErrBusy
	}
	defer r.busy.Store(false)

	if rating < 1 || rating > 5 {
		return domain.Review{}, services.ErrInvalidRating
	}
	comment := r.Comment.Clear()
	rv, err := r.backend.PostReview(ctx, r.visitorID, services.ReviewInput{
		ID:      domain.NewID(),
		Name:    name,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		r.Comment.Restore(comment)
		return rv, err
	}
	r.store.Upsert(rv)
	return rv, nil
}

// Reviews returns the list, newest first.
func (r *ReviewBoard) Reviews() []domain.Review { return r.store.Items() }

// OnChange registers fn for list updates.
func (r *ReviewBoard) OnChange(fn func([]domain.Review)) { r.store.OnChange(fn) }
