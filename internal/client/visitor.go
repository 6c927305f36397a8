package client

import (
	"context"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/identity"
)

// Visitor ties the locally stored identity to the backend.
type Visitor struct {
	backend Backend
	id      *identity.Identity
}

// NewVisitor returns a Visitor over id.
func NewVisitor(b Backend, id *identity.Identity) *Visitor {
	return &Visitor{backend: b, id: id}
}

// ID returns the visitor id, minting one on first use.
func (v *Visitor) ID() string { return v.id.GetOrCreate() }

// Name returns the stored display name.
func (v *Visitor) Name() (string, bool) { return v.id.Name() }

// SetName stores the display name locally and on the backend, which labels
// the admin inbox with it.
func (v *Visitor) SetName(ctx context.Context, name string) error {
	if err := v.backend.SetVisitorName(ctx, v.ID(), name); err != nil {
		return err
	}
	v.id.SetName(name)
	return nil
}

// TrackVisit counts one visit per browsing session. It reports whether a
// visit was recorded.
func (v *Visitor) TrackVisit(ctx context.Context) (domain.SiteStats, bool, error) {
	if v.id.VisitTracked() {
		return domain.SiteStats{}, false, nil
	}
	st, err := v.backend.TrackVisit(ctx)
	if err != nil {
		return st, false, err
	}
	v.id.MarkVisitTracked()
	return st, true, nil
}
