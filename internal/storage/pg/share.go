package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
)

// pq error code for unique_violation
const uniqueViolation = "23505"

type shareLinkRow struct {
	Slug        string    `db:"slug"`
	BoardId     string    `db:"board_id"`
	CreatedAt   time.Time `db:"created_at"`
	ExpiresAt   time.Time `db:"expires_at"`
	AccessCount int64     `db:"access_count"`
}

func (r shareLinkRow) toDomain() *domain.ShareLink {
	return &domain.ShareLink{
		Slug:        r.Slug,
		BoardId:     r.BoardId,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		AccessCount: r.AccessCount,
	}
}

// InsertLink inserts a new share link row.
//
// Expired slugs are reusable while active slugs are not, so uniqueness
// cannot be a plain time-aware index. Instead, within one transaction any
// expired row holding the slug is removed first and the insert then runs
// against the UNIQUE(slug) constraint. Two concurrent creators of the same
// slug therefore cannot both succeed: the loser gets a unique violation,
// surfaced as a 409.
func (s *Storage) InsertLink(ctx context.Context, link *domain.ShareLink) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	_, err = tx.ExecContext(ctx,
		`DELETE FROM shared_links WHERE slug = $1 AND expires_at <= $2`,
		link.Slug, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("purge expired slug row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shared_links (slug, board_id, created_at, expires_at, access_count)
		 VALUES ($1, $2, $3, $4, 0)`,
		link.Slug, link.BoardId, link.CreatedAt, link.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &internal_errors.ErrorWithStatusCode{Message: "Custom slug already exists", StatusCode: http.StatusConflict}
		}
		return fmt.Errorf("insert share link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetActiveLink returns the link for slug if it has not expired at now,
// or (nil, nil) when no active row exists. Expired rows are filtered,
// not deleted; physical removal is the sweep's job.
func (s *Storage) GetActiveLink(ctx context.Context, slug string, now time.Time) (*domain.ShareLink, error) {
	var row shareLinkRow
	err := s.db.GetContext(ctx, &row,
		`SELECT slug, board_id, created_at, expires_at, access_count
		 FROM shared_links
		 WHERE slug = $1 AND expires_at > $2`,
		slug, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select share link: %w", err)
	}
	return row.toDomain(), nil
}

// IncrementAccessCount bumps the access counter for slug.
func (s *Storage) IncrementAccessCount(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE shared_links SET access_count = access_count + 1 WHERE slug = $1`,
		slug)
	if err != nil {
		return fmt.Errorf("increment access count: %w", err)
	}
	return nil
}

// DeleteExpired removes every row whose expiry is in the past and
// returns how many were removed.
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shared_links WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired links: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
