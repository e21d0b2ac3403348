package service

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

const (
	generatedSlugLength = 8
	minSlugLength       = 3
	maxSlugLength       = 50
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// to mock service in tests
type ShareService interface {
	Create(ctx context.Context, boardId, customSlug string, expirySeconds int64) (*domain.ShareLink, error)
	Resolve(ctx context.Context, slug string) (*domain.ShareLink, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type ShareRegistry interface {
	InsertLink(ctx context.Context, link *domain.ShareLink) error
	GetActiveLink(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error)
	IncrementAccessCount(ctx context.Context, slug string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Share struct {
	registry      ShareRegistry
	defaultExpiry int64
	maxExpiry     int64
}

func NewShare(registry ShareRegistry, defaultExpirySeconds, maxExpirySeconds int64) ShareService {
	return &Share{
		registry:      registry,
		defaultExpiry: defaultExpirySeconds,
		maxExpiry:     maxExpirySeconds,
	}
}

// Create validates the custom slug (charset and length are checked
// independently) and the requested expiry, then inserts the link. When no
// slug is supplied an 8-character random one is generated. Uniqueness
// among active links is enforced atomically by the registry.
func (s *Share) Create(ctx context.Context, boardId, customSlug string, expirySeconds int64) (*domain.ShareLink, error) {
	if customSlug != "" {
		if !slugPattern.MatchString(customSlug) {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message:    "Custom slug can only contain lowercase letters, numbers, and hyphens",
				StatusCode: http.StatusBadRequest,
			}
		}
		if len(customSlug) < minSlugLength || len(customSlug) > maxSlugLength {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message:    "Custom slug must be between 3 and 50 characters",
				StatusCode: http.StatusBadRequest,
			}
		}
	}

	if expirySeconds <= 0 {
		expirySeconds = s.defaultExpiry
	}
	if expirySeconds > s.maxExpiry {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    "Maximum expiry time is 30 days",
			StatusCode: http.StatusBadRequest,
		}
	}

	slug := customSlug
	if slug == "" {
		slug = utils.GenerateRandomString(generatedSlugLength, utils.Base36Charset)
	}

	now := time.Now().UTC()
	link := &domain.ShareLink{
		Slug:        slug,
		BoardId:     boardId,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(expirySeconds) * time.Second),
		AccessCount: 0,
	}

	if err := s.registry.InsertLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Resolve returns the active link for slug and bumps its access counter.
// The increment is best-effort: a failure there is logged but never fails
// the resolution itself.
func (s *Share) Resolve(ctx context.Context, slug string) (*domain.ShareLink, error) {
	link, err := s.registry.GetActiveLink(ctx, slug, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Share link not found or expired", StatusCode: http.StatusNotFound}
	}

	if err := s.registry.IncrementAccessCount(ctx, slug); err != nil {
		logger.Log.Warn("access count increment failed", "slug", slug, "error", err)
	}
	return link, nil
}

// SweepExpired purges expired rows. Safe to run repeatedly and
// concurrently; a second run right after the first removes nothing.
func (s *Share) SweepExpired(ctx context.Context) (int64, error) {
	return s.registry.DeleteExpired(ctx, time.Now().UTC())
}
