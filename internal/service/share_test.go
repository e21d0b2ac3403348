package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

// MockShareRegistry mocks the ShareRegistry interface.
type MockShareRegistry struct {
	insertLinkFunc           func(ctx context.Context, link *domain.ShareLink) error
	getActiveLinkFunc        func(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error)
	incrementAccessCountFunc func(ctx context.Context, slug string) error
	deleteExpiredFunc        func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockShareRegistry) InsertLink(ctx context.Context, link *domain.ShareLink) error {
	if m.insertLinkFunc != nil {
		return m.insertLinkFunc(ctx, link)
	}
	return nil
}

func (m *MockShareRegistry) GetActiveLink(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error) {
	if m.getActiveLinkFunc != nil {
		return m.getActiveLinkFunc(ctx, slug, now)
	}
	return nil, nil
}

func (m *MockShareRegistry) IncrementAccessCount(ctx context.Context, slug string) error {
	if m.incrementAccessCountFunc != nil {
		return m.incrementAccessCountFunc(ctx, slug)
	}
	return nil
}

func (m *MockShareRegistry) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

const (
	testDefaultExpiry int64 = 86400
	testMaxExpiry     int64 = 2592000
)

func newTestShare(registry ShareRegistry) ShareService {
	return NewShare(registry, testDefaultExpiry, testMaxExpiry)
}

func TestShareCreateSlugValidation(t *testing.T) {
	testCases := []struct {
		name        string
		slug        string
		wantMessage string
	}{
		{name: "valid slug", slug: "my-board-1"},
		{name: "minimum length", slug: "abc"},
		{name: "maximum length", slug: strings.Repeat("a", 50)},
		{name: "uppercase rejected", slug: "MyBoard", wantMessage: "Custom slug can only contain lowercase letters, numbers, and hyphens"},
		{name: "underscore rejected", slug: "my_board", wantMessage: "Custom slug can only contain lowercase letters, numbers, and hyphens"},
		{name: "space rejected", slug: "my board", wantMessage: "Custom slug can only contain lowercase letters, numbers, and hyphens"},
		{name: "too short", slug: "ab", wantMessage: "Custom slug must be between 3 and 50 characters"},
		{name: "too long", slug: strings.Repeat("a", 51), wantMessage: "Custom slug must be between 3 and 50 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestShare(&MockShareRegistry{})
			link, err := s.Create(context.Background(), "board123", tc.slug, 0)

			if tc.wantMessage != "" {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, internal_errors.StatusCode(err, 0))
				assert.Equal(t, tc.wantMessage, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.slug, link.Slug)
		})
	}
}

func TestShareCreateExpiryBounds(t *testing.T) {
	testCases := []struct {
		name        string
		expiry      int64
		wantSeconds int64
		wantErr     bool
	}{
		{name: "zero uses default", expiry: 0, wantSeconds: testDefaultExpiry},
		{name: "negative uses default", expiry: -5, wantSeconds: testDefaultExpiry},
		{name: "explicit value", expiry: 3600, wantSeconds: 3600},
		{name: "exactly at cap", expiry: testMaxExpiry, wantSeconds: testMaxExpiry},
		{name: "one over cap", expiry: testMaxExpiry + 1, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestShare(&MockShareRegistry{})
			link, err := s.Create(context.Background(), "board123", "my-slug", tc.expiry)

			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, internal_errors.StatusCode(err, 0))
				assert.Equal(t, "Maximum expiry time is 30 days", err.Error())
				return
			}
			require.NoError(t, err)
			got := link.ExpiresAt.Sub(link.CreatedAt)
			assert.Equal(t, time.Duration(tc.wantSeconds)*time.Second, got)
		})
	}
}

func TestShareCreateGeneratedSlug(t *testing.T) {
	s := newTestShare(&MockShareRegistry{})
	link, err := s.Create(context.Background(), "board123", "", 0)
	require.NoError(t, err)

	assert.Len(t, link.Slug, 8)
	for _, r := range link.Slug {
		assert.Contains(t, utils.Base36Charset, string(r))
	}
	assert.Equal(t, int64(0), link.AccessCount)
	assert.Equal(t, "board123", link.BoardId)
}

func TestShareCreateConflictPassthrough(t *testing.T) {
	conflict := &internal_errors.ErrorWithStatusCode{Message: "Custom slug already exists", StatusCode: http.StatusConflict}
	s := newTestShare(&MockShareRegistry{
		insertLinkFunc: func(ctx context.Context, link *domain.ShareLink) error {
			return conflict
		},
	})

	_, err := s.Create(context.Background(), "board123", "taken", 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, internal_errors.StatusCode(err, 0))
	assert.Equal(t, "Custom slug already exists", err.Error())
}

func TestShareResolve(t *testing.T) {
	incremented := 0
	s := newTestShare(&MockShareRegistry{
		getActiveLinkFunc: func(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error) {
			if slug != "known" {
				return nil, nil
			}
			return &domain.ShareLink{Slug: slug, BoardId: "board123", ExpiresAt: now.Add(time.Hour)}, nil
		},
		incrementAccessCountFunc: func(ctx context.Context, slug string) error {
			incremented++
			return nil
		},
	})

	link, err := s.Resolve(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "board123", link.BoardId)
	assert.Equal(t, 1, incremented)

	_, err = s.Resolve(context.Background(), "unknown")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err, 0))
	assert.Equal(t, "Share link not found or expired", err.Error())
	assert.Equal(t, 1, incremented)
}

func TestShareResolveIncrementFailureIsNotFatal(t *testing.T) {
	s := newTestShare(&MockShareRegistry{
		getActiveLinkFunc: func(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error) {
			return &domain.ShareLink{Slug: slug, BoardId: "board123", ExpiresAt: now.Add(time.Hour)}, nil
		},
		incrementAccessCountFunc: func(ctx context.Context, slug string) error {
			return assert.AnError
		},
	})

	link, err := s.Resolve(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "board123", link.BoardId)
}

func TestShareSweepExpiredIdempotent(t *testing.T) {
	runs := 0
	s := newTestShare(&MockShareRegistry{
		deleteExpiredFunc: func(ctx context.Context, now time.Time) (int64, error) {
			runs++
			if runs == 1 {
				return 3, nil
			}
			return 0, nil
		},
	})

	removed, err := s.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	removed, err = s.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}
