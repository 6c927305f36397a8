package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

// StatsService counts site visits in the site_stats section.
type StatsService struct {
	DB   *gorm.DB
	Feed Publisher
	Now  func() time.Time

	mu sync.Mutex
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *gorm.DB, pub Publisher) *StatsService {
	return &StatsService{DB: db, Feed: pub, Now: time.Now}
}

// TrackVisit increments the visit counter and stamps the last visit.
func (s *StatsService) TrackVisit(ctx context.Context) (domain.SiteStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.SiteStats
	var saved *domain.ContentSection
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadStats(ctx, tx)
		if err != nil {
			return err
		}
		st.TotalVisits++
		st.LastVisit = s.now().UTC()
		raw, err := json.Marshal(st)
		if err != nil {
			return err
		}
		if saved, err = repo.UpsertContent(ctx, tx, domain.SectionSiteStats, string(raw)); err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return domain.SiteStats{}, err
	}
	publish(s.Feed, feed.TableContent, feed.Update, saved.Section, contentRow(saved))
	return out, nil
}

// Stats returns the current counters.
func (s *StatsService) Stats(ctx context.Context) (domain.SiteStats, error) {
	return loadStats(ctx, s.DB)
}

func (s *StatsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func loadStats(ctx context.Context, db *gorm.DB) (domain.SiteStats, error) {
	var st domain.SiteStats
	c, err := repo.GetContent(ctx, db, domain.SectionSiteStats)
	if errors.Is(err, repo.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(c.JSON(), &st); err != nil {
		return st, fmt.Errorf("decode site stats: %w", err)
	}
	return st, nil
}
