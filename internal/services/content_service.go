// Package services – ContentService
//
// The public site content is a single JSON document stored under the "all"
// section. Its top-level keys (company, hero, services, portfolio, pricing,
// team) can also be read and replaced one at a time. Missing keys fall back
// to the built-in defaults.
package services

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

//go:embed defaults/site.json
var defaultSite []byte

// DefaultSite returns a copy of the built-in site content.
func DefaultSite() json.RawMessage {
	return append(json.RawMessage(nil), defaultSite...)
}

// ContentService reads and writes the site content document.
type ContentService struct {
	DB   *gorm.DB
	Feed Publisher
}

// NewContentService constructs a ContentService.
func NewContentService(db *gorm.DB, pub Publisher) *ContentService {
	return &ContentService{DB: db, Feed: pub}
}

// Get returns section. "all" yields the whole document; a top-level key
// yields that key's value.
func (s *ContentService) Get(ctx context.Context, section string) (json.RawMessage, error) {
	tr := otel.Tracer("services/ContentService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("content.section", section)))
	defer span.End()

	if reserved(section) {
		return nil, ErrSectionNotFound
	}
	site, err := s.site(ctx)
	if err != nil {
		return nil, err
	}
	if section == domain.SectionSite {
		return json.Marshal(site)
	}
	v, ok := site[section]
	if !ok {
		return nil, ErrSectionNotFound
	}
	return v, nil
}

// Save replaces section with data, which must be a JSON object. Saving
// "all" replaces the whole document.
func (s *ContentService) Save(ctx context.Context, section string, data json.RawMessage) (json.RawMessage, error) {
	tr := otel.Tracer("services/ContentService")
	ctx, span := tr.Start(ctx, "Save", trace.WithAttributes(attribute.String("content.section", section)))
	defer span.End()

	if reserved(section) {
		return nil, ErrReservedSection
	}
	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if section == domain.SectionSite {
		doc = obj
	} else {
		if doc, err = s.site(ctx); err != nil {
			return nil, err
		}
		if _, ok := doc[section]; !ok {
			return nil, ErrSectionNotFound
		}
		doc[section] = bytes.TrimSpace(data)
	}
	return s.write(ctx, doc)
}

// Reset overwrites the stored document with the defaults.
func (s *ContentService) Reset(ctx context.Context) (json.RawMessage, error) {
	doc, err := decodeObject(defaultSite)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, doc)
}

func (s *ContentService) write(ctx context.Context, doc map[string]json.RawMessage) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode site content: %w", err)
	}
	c, err := repo.UpsertContent(ctx, s.DB, domain.SectionSite, string(raw))
	if err != nil {
		return nil, err
	}
	publish(s.Feed, feed.TableContent, feed.Update, c.Section, contentRow(c))
	return raw, nil
}

// site returns the stored document layered over the defaults.
func (s *ContentService) site(ctx context.Context) (map[string]json.RawMessage, error) {
	doc, err := decodeObject(defaultSite)
	if err != nil {
		return nil, err
	}
	c, err := repo.GetContent(ctx, s.DB, domain.SectionSite)
	if errors.Is(err, repo.ErrNotFound) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	stored, err := decodeObject(c.JSON())
	if err != nil {
		return nil, fmt.Errorf("stored site content: %w", err)
	}
	for k, v := range stored {
		doc[k] = v
	}
	return doc, nil
}

type contentEvent struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
}

func contentRow(c *domain.ContentSection) contentEvent {
	return contentEvent{Section: c.Section, Data: c.JSON()}
}

func reserved(section string) bool {
	return section == domain.SectionAdminSettings || section == domain.SectionSiteStats
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrInvalidContent
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, ErrInvalidContent
	}
	if obj == nil {
		obj = map[string]json.RawMessage{}
	}
	return obj, nil
}
