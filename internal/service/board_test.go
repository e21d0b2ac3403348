package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
)

// MockBoardStorage mocks the BoardStorage interface.
type MockBoardStorage struct {
	getBoardFunc    func(ctx context.Context, id string) (*domain.Board, error)
	saveBoardFunc   func(ctx context.Context, board *domain.Board) error
	deleteBoardFunc func(ctx context.Context, id string) error
}

func (m *MockBoardStorage) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	if m.getBoardFunc != nil {
		return m.getBoardFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBoardStorage) SaveBoard(ctx context.Context, board *domain.Board) error {
	if m.saveBoardFunc != nil {
		return m.saveBoardFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardStorage) DeleteBoard(ctx context.Context, id string) error {
	if m.deleteBoardFunc != nil {
		return m.deleteBoardFunc(ctx, id)
	}
	return nil
}

// inMemoryBoards is a map-backed BoardStorage for flows that need real
// read-your-writes behavior.
type inMemoryBoards struct {
	boards map[string]*domain.Board
}

func newInMemoryBoards() *inMemoryBoards {
	return &inMemoryBoards{boards: map[string]*domain.Board{}}
}

func (s *inMemoryBoards) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	board, ok := s.boards[id]
	if !ok {
		return nil, nil
	}
	copied := *board
	copied.Media = append([]domain.MediaItem{}, board.Media...)
	return &copied, nil
}

func (s *inMemoryBoards) SaveBoard(ctx context.Context, board *domain.Board) error {
	copied := *board
	copied.Media = append([]domain.MediaItem{}, board.Media...)
	s.boards[board.Id] = &copied
	return nil
}

func (s *inMemoryBoards) DeleteBoard(ctx context.Context, id string) error {
	delete(s.boards, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestBoardGetNotFound(t *testing.T) {
	s := NewBoard(&MockBoardStorage{})

	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err, 0))
}

func TestBoardGetSwallowsStorageError(t *testing.T) {
	// A read failure must surface as a plain 404: callers cannot tell
	// "never existed" from "backend down".
	s := NewBoard(&MockBoardStorage{
		getBoardFunc: func(ctx context.Context, id string) (*domain.Board, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, err := s.Get(context.Background(), "abc12345")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err, 0))
	assert.Equal(t, "Board not found", err.Error())
}

func TestBoardPutCreatesMissingBoard(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)

	board, err := s.Put(context.Background(), "fresh123", domain.BoardPatch{Text: strPtr("hello")})
	require.NoError(t, err)

	assert.Equal(t, "fresh123", board.Id)
	assert.Equal(t, "hello", board.Text)
	assert.NotNil(t, board.Media)
	assert.Empty(t, board.Media)
	assert.False(t, board.CreatedAt.IsZero())
	assert.False(t, board.LastModified.Before(board.CreatedAt))
}

func TestBoardPutMergeSemantics(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)

	_, err := s.Put(context.Background(), "b1", domain.BoardPatch{Text: strPtr("original")})
	require.NoError(t, err)

	// Nil fields leave stored values untouched.
	media := []domain.MediaItem{{Id: "media_1_abc", Name: "a.png"}}
	board, err := s.Put(context.Background(), "b1", domain.BoardPatch{Media: &media})
	require.NoError(t, err)
	assert.Equal(t, "original", board.Text)
	assert.Len(t, board.Media, 1)

	// Non-nil fields replace wholesale, including clearing.
	empty := []domain.MediaItem{}
	board, err = s.Put(context.Background(), "b1", domain.BoardPatch{Text: strPtr(""), Media: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", board.Text)
	assert.Empty(t, board.Media)
}

func TestBoardPutIgnoresBodyId(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)

	board, err := s.Put(context.Background(), "path-id", domain.BoardPatch{Text: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, "path-id", board.Id)
}

func TestBoardPutStorageErrorPropagates(t *testing.T) {
	s := NewBoard(&MockBoardStorage{
		saveBoardFunc: func(ctx context.Context, board *domain.Board) error {
			return errors.New("write failed")
		},
	})

	_, err := s.Put(context.Background(), "b1", domain.BoardPatch{Text: strPtr("x")})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, internal_errors.StatusCode(err, http.StatusInternalServerError))
}

func TestBoardAppendMediaMissingBoard(t *testing.T) {
	s := NewBoard(&MockBoardStorage{})

	_, err := s.AppendMedia(context.Background(), "missing", domain.MediaItem{Id: "media_1_x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err, 0))
}

func TestBoardAppendMediaKeepsOrder(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)

	_, err := s.Put(context.Background(), "b1", domain.BoardPatch{})
	require.NoError(t, err)

	for _, id := range []string{"media_1_a", "media_2_b", "media_3_c"} {
		_, err = s.AppendMedia(context.Background(), "b1", domain.MediaItem{Id: id})
		require.NoError(t, err)
	}

	board, err := s.Get(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, board.Media, 3)
	assert.Equal(t, "media_1_a", board.Media[0].Id)
	assert.Equal(t, "media_2_b", board.Media[1].Id)
	assert.Equal(t, "media_3_c", board.Media[2].Id)
}

func TestBoardDeleteMediaAt(t *testing.T) {
	testCases := []struct {
		name       string
		index      int
		wantStatus int
		wantIds    []string
	}{
		{name: "first item", index: 0, wantIds: []string{"media_2_b", "media_3_c"}},
		{name: "last item", index: 2, wantIds: []string{"media_1_a", "media_2_b"}},
		{name: "negative index", index: -1, wantStatus: http.StatusBadRequest},
		{name: "index out of range", index: 3, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			storage := newInMemoryBoards()
			s := NewBoard(storage)
			media := []domain.MediaItem{{Id: "media_1_a"}, {Id: "media_2_b"}, {Id: "media_3_c"}}
			_, err := s.Put(context.Background(), "b1", domain.BoardPatch{Media: &media})
			require.NoError(t, err)

			board, err := s.DeleteMediaAt(context.Background(), "b1", tc.index)
			if tc.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tc.wantStatus, internal_errors.StatusCode(err, 0))
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(board.Media))
			for _, item := range board.Media {
				ids = append(ids, item.Id)
			}
			assert.Equal(t, tc.wantIds, ids)
		})
	}
}

func TestBoardDeleteMediaByIdNotFound(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)
	media := []domain.MediaItem{{Id: "media_1_a"}}
	_, err := s.Put(context.Background(), "b1", domain.BoardPatch{Media: &media})
	require.NoError(t, err)

	_, err = s.DeleteMediaById(context.Background(), "b1", "media_9_zz")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err, 0))
	assert.Equal(t, "Media item not found", err.Error())
}

func TestBoardDeleteIdempotent(t *testing.T) {
	deleted := 0
	s := NewBoard(&MockBoardStorage{
		deleteBoardFunc: func(ctx context.Context, id string) error {
			deleted++
			return nil
		},
	})

	require.NoError(t, s.Delete(context.Background(), "b1"))
	require.NoError(t, s.Delete(context.Background(), "b1"))
	assert.Equal(t, 2, deleted)
}

func TestBoardMutationStampsLastModified(t *testing.T) {
	storage := newInMemoryBoards()
	s := NewBoard(storage)

	board, err := s.Put(context.Background(), "b1", domain.BoardPatch{Text: strPtr("a")})
	require.NoError(t, err)
	first := board.LastModified

	time.Sleep(2 * time.Millisecond)
	board, err = s.Put(context.Background(), "b1", domain.BoardPatch{Text: strPtr("b")})
	require.NoError(t, err)
	assert.True(t, board.LastModified.After(first))
}
