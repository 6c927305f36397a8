package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/repo"
)

// TokenStore persists the admin device token.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
}

// ContentTokenStore keeps the token in the admin_settings content section
// as {"fcm_token": ..., "updated_at": ...}.
type ContentTokenStore struct {
	DB *gorm.DB
}

// LoadToken returns the stored token or ErrNoToken.
func (s ContentTokenStore) LoadToken(ctx context.Context) (string, error) {
	sec, err := repo.GetContent(ctx, s.DB, domain.SectionAdminSettings)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	var settings domain.AdminSettings
	if err := json.Unmarshal([]byte(sec.Data), &settings); err != nil {
		return "", fmt.Errorf("push: decode admin settings: %w", err)
	}
	if strings.TrimSpace(settings.FCMToken) == "" {
		return "", ErrNoToken
	}
	return settings.FCMToken, nil
}

// SaveToken replaces the stored token.
func (s ContentTokenStore) SaveToken(ctx context.Context, token string) error {
	raw, err := json.Marshal(domain.AdminSettings{FCMToken: token, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = repo.UpsertContent(ctx, s.DB, domain.SectionAdminSettings, string(raw))
	return err
}

// Registrar records the admin device registration.
type Registrar struct {
	Tokens TokenStore
	Now    func() time.Time
}

// Register stores token as the admin device. A blank token registers a
// simulated device. It returns the token actually stored.
func (r *Registrar) Register(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		token = SimulatedToken(now())
	}
	if err := r.Tokens.SaveToken(ctx, token); err != nil {
		return "", fmt.Errorf("push: save token: %w", err)
	}
	return token, nil
}
