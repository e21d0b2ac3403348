package service

import (
	"context"
	"net/http"
	"time"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
	"github.com/boardlink-dev/boardlink/internal/logger"
)

// to mock service in tests
type BoardService interface {
	Get(ctx context.Context, id string) (*domain.Board, error)
	Put(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error)
	AppendMedia(ctx context.Context, id string, item domain.MediaItem) (*domain.Board, error)
	DeleteMediaAt(ctx context.Context, id string, index int) (*domain.Board, error)
	DeleteMediaById(ctx context.Context, id string, mediaId string) (*domain.Board, error)
	Delete(ctx context.Context, id string) error
}

type BoardStorage interface {
	GetBoard(ctx context.Context, id string) (*domain.Board, error)
	SaveBoard(ctx context.Context, board *domain.Board) error
	DeleteBoard(ctx context.Context, id string) error
}

type Board struct {
	storage BoardStorage
}

func NewBoard(storage BoardStorage) BoardService {
	return &Board{storage}
}

func boardNotFound() error {
	return &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
}

// Get returns the board or a 404. A backend failure is reported as 404
// as well: callers above this layer cannot tell "never existed" from
// "storage error". The failure is still logged here.
func (b *Board) Get(ctx context.Context, id string) (*domain.Board, error) {
	board, err := b.storage.GetBoard(ctx, id)
	if err != nil {
		logger.Log.Warn("board lookup failed, reporting not found", "board", id, "error", err)
		return nil, boardNotFound()
	}
	if board == nil {
		return nil, boardNotFound()
	}
	return board, nil
}

// Put merges the patch over the stored record (or over defaults when the
// board does not exist yet), stamps lastModified and persists. Persisting
// resets the board's inactivity TTL.
func (b *Board) Put(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	board, err := b.storage.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if board == nil {
		board = &domain.Board{
			Id:        id,
			Text:      "",
			Media:     []domain.MediaItem{},
			CreatedAt: now,
		}
	}

	// Shallow overwrite: supplied fields replace stored values wholesale.
	if patch.Text != nil {
		board.Text = *patch.Text
	}
	if patch.Media != nil {
		board.Media = *patch.Media
	}
	if patch.CreatedAt != nil {
		board.CreatedAt = *patch.CreatedAt
	}
	if board.Media == nil {
		board.Media = []domain.MediaItem{}
	}
	board.Id = id
	board.LastModified = now

	if err := b.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// AppendMedia adds one item to the end of the board's media list.
// Unlike Get, a storage failure here propagates: the caller asked for a
// mutation, so ambiguity is not acceptable.
func (b *Board) AppendMedia(ctx context.Context, id string, item domain.MediaItem) (*domain.Board, error) {
	board, err := b.storage.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, boardNotFound()
	}

	board.Media = append(board.Media, item)
	board.LastModified = time.Now().UTC()

	if err := b.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// DeleteMediaAt removes the media item at the given position. The index
// is resolved to the item's stable id first, so the removal itself is
// id-based; positional identity only exists at this boundary.
func (b *Board) DeleteMediaAt(ctx context.Context, id string, index int) (*domain.Board, error) {
	board, err := b.storage.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, boardNotFound()
	}
	if index < 0 || index >= len(board.Media) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid media index", StatusCode: http.StatusBadRequest}
	}
	return b.removeMedia(ctx, board, board.Media[index].Id)
}

// DeleteMediaById removes the media item carrying the given id.
func (b *Board) DeleteMediaById(ctx context.Context, id string, mediaId string) (*domain.Board, error) {
	board, err := b.storage.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, boardNotFound()
	}
	for _, item := range board.Media {
		if item.Id == mediaId {
			return b.removeMedia(ctx, board, mediaId)
		}
	}
	return nil, &internal_errors.ErrorWithStatusCode{Message: "Media item not found", StatusCode: http.StatusNotFound}
}

func (b *Board) removeMedia(ctx context.Context, board *domain.Board, mediaId string) (*domain.Board, error) {
	kept := make([]domain.MediaItem, 0, len(board.Media))
	for _, item := range board.Media {
		if item.Id != mediaId {
			kept = append(kept, item)
		}
	}
	board.Media = kept
	board.LastModified = time.Now().UTC()

	if err := b.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// Delete removes the whole board. Deleting an absent board is a no-op.
func (b *Board) Delete(ctx context.Context, id string) error {
	return b.storage.DeleteBoard(ctx, id)
}
