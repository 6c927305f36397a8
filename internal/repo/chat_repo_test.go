package repo

import (
	"context"
	"testing"
	"time"

	"github.com/xevon/studio-backend/internal/domain"
)

func TestLatestMessages_OnePerVisitor_MostRecentFirst(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	seed := []domain.ChatMessage{
		{ID: "a1", VisitorID: "va", Text: "a-old", IsUser: true, CreatedAt: base},
		{ID: "a2", VisitorID: "va", Text: "a-new", IsUser: false, CreatedAt: base.Add(5 * time.Minute)},
		{ID: "b1", VisitorID: "vb", Text: "b-only", IsUser: true, CreatedAt: base.Add(10 * time.Minute)},
		// tie on timestamp: greater id wins
		{ID: "c1", VisitorID: "vc", Text: "c-x", IsUser: true, CreatedAt: base.Add(time.Minute)},
		{ID: "c2", VisitorID: "vc", Text: "c-y", IsUser: true, CreatedAt: base.Add(time.Minute)},
	}
	for i := range seed {
		if err := CreateMessage(ctx, db, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := LatestMessages(ctx, db)
	if err != nil {
		t.Fatalf("LatestMessages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 conversations, got %d: %+v", len(got), got)
	}
	if got[0].ID != "b1" || got[1].ID != "a2" || got[2].ID != "c2" {
		t.Fatalf("unexpected latest order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}

	n, err := CountConversations(ctx, db)
	if err != nil || n != 3 {
		t.Fatalf("CountConversations = %d, %v", n, err)
	}
}

func TestLatestMessages_Empty(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	got, err := LatestMessages(context.Background(), db)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", got, err)
	}
}

func TestLatestMessages_Error_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := LatestMessages(context.Background(), db); err == nil {
		t.Fatalf("expected error without table")
	}
}
