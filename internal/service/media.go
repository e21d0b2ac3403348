package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

// to mock service in tests
type MediaService interface {
	Attach(ctx context.Context, boardId, fileName, mimeType string, size int64, file io.Reader) (*domain.MediaItem, *domain.Board, error)
	RemoveAt(ctx context.Context, boardId string, index int) (*domain.Board, error)
}

type BlobStorage interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string, metadata map[string]string) (string, error)
	Delete(ctx context.Context, url string) error
}

type Media struct {
	blobs         BlobStorage
	boards        BoardService
	maxUploadSize int64
}

func NewMedia(blobs BlobStorage, boards BoardService, maxUploadSize int64) MediaService {
	return &Media{blobs: blobs, boards: boards, maxUploadSize: maxUploadSize}
}

// Attach stores the file bytes in the blob store, builds the media item
// record and appends it to the board. A board that does not exist yet is
// created with empty text first; uploads never fail on a missing board.
// The size cap is enforced before any bytes reach the blob store.
func (m *Media) Attach(ctx context.Context, boardId, fileName, mimeType string, size int64, file io.Reader) (*domain.MediaItem, *domain.Board, error) {
	if size > m.maxUploadSize {
		return nil, nil, &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("File exceeds the %d MB upload limit", m.maxUploadSize>>20),
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now().UTC()
	objectName := fmt.Sprintf("media/%s%s", uuid.New().String(), filepath.Ext(fileName))
	url, err := m.blobs.Upload(ctx, objectName, file, size, mimeType, map[string]string{
		"original-filename": fileName,
		"board-id":          boardId,
		"uploaded-at":       now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, nil, err
	}

	item := domain.MediaItem{
		Id:         fmt.Sprintf("media_%d_%s", now.UnixMilli(), utils.GenerateRandomString(9, utils.Base36Charset)),
		Url:        url,
		Name:       fileName,
		Type:       mimeType,
		Size:       size,
		UploadedAt: now,
	}

	board, err := m.boards.AppendMedia(ctx, boardId, item)
	if internal_errors.StatusCode(err, 0) == http.StatusNotFound {
		// First upload to a fresh board: create it, then retry the append.
		if _, err := m.boards.Put(ctx, boardId, domain.BoardPatch{}); err != nil {
			return nil, nil, err
		}
		board, err = m.boards.AppendMedia(ctx, boardId, item)
	}
	if err != nil {
		return nil, nil, err
	}
	return &item, board, nil
}

// RemoveAt deletes the media item at the given position from the board
// and then removes its bytes from the blob store. Blob removal is
// best-effort; the board's media list is the source of truth.
func (m *Media) RemoveAt(ctx context.Context, boardId string, index int) (*domain.Board, error) {
	before, err := m.boards.Get(ctx, boardId)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(before.Media) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid media index", StatusCode: http.StatusBadRequest}
	}
	removed := before.Media[index]

	board, err := m.boards.DeleteMediaById(ctx, boardId, removed.Id)
	if err != nil {
		return nil, err
	}

	if err := m.blobs.Delete(ctx, removed.Url); err != nil {
		logger.Log.Warn("blob cleanup failed", "board", boardId, "media", removed.Id, "error", err)
	}
	return board, nil
}
