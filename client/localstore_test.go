package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlink-dev/boardlink/internal/domain"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "mirror.json")
}

func TestOpenLocalStoreMissingFile(t *testing.T) {
	s, err := OpenLocalStore(storePath(t))
	require.NoError(t, err)

	_, ok := s.Board("anything")
	assert.False(t, ok)
}

func TestOpenLocalStoreCorruptFileResets(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := OpenLocalStore(path)
	require.NoError(t, err)

	_, ok := s.Board("anything")
	assert.False(t, ok)
}

func TestLocalStorePersistenceRoundtrip(t *testing.T) {
	path := storePath(t)

	s, err := OpenLocalStore(path)
	require.NoError(t, err)
	require.NoError(t, s.UpsertBoard(&domain.Board{Id: "abc12345", Text: "hello"}))
	require.NoError(t, s.SetShare("my-slug", MirrorShare{BoardId: "abc12345", CreatedAt: time.Now().UTC(), ExpirySeconds: 3600}))

	reopened, err := OpenLocalStore(path)
	require.NoError(t, err)

	board, ok := reopened.Board("abc12345")
	require.True(t, ok)
	assert.Equal(t, "hello", board.Text)
	assert.NotNil(t, board.Media)

	share, ok := reopened.Share("my-slug")
	require.True(t, ok)
	assert.Equal(t, "abc12345", share.BoardId)
}

func TestGetOrCreateBoardMaterializesEmpty(t *testing.T) {
	s, err := OpenLocalStore(storePath(t))
	require.NoError(t, err)

	board, err := s.GetOrCreateBoard("fresh123")
	require.NoError(t, err)
	assert.Equal(t, "fresh123", board.Id)
	assert.Equal(t, "", board.Text)
	assert.Empty(t, board.Media)
	assert.False(t, board.CreatedAt.IsZero())

	again, err := s.GetOrCreateBoard("fresh123")
	require.NoError(t, err)
	assert.True(t, board.CreatedAt.Equal(again.CreatedAt))
}

func TestMutateBoardReturnsCopy(t *testing.T) {
	s, err := OpenLocalStore(storePath(t))
	require.NoError(t, err)

	board, err := s.MutateBoard("b1", func(b *domain.Board) error {
		b.Text = "one"
		return nil
	})
	require.NoError(t, err)

	// mutating the returned value must not leak into the store
	board.Text = "tampered"
	stored, ok := s.Board("b1")
	require.True(t, ok)
	assert.Equal(t, "one", stored.Text)
}

func TestDeleteBoardIsIdempotent(t *testing.T) {
	s, err := OpenLocalStore(storePath(t))
	require.NoError(t, err)

	require.NoError(t, s.UpsertBoard(&domain.Board{Id: "b1"}))
	require.NoError(t, s.DeleteBoard("b1"))
	require.NoError(t, s.DeleteBoard("b1"))

	_, ok := s.Board("b1")
	assert.False(t, ok)
}

func TestMirrorShareExpired(t *testing.T) {
	now := time.Now().UTC()
	share := MirrorShare{BoardId: "b1", CreatedAt: now.Add(-2 * time.Hour), ExpirySeconds: 3600}
	assert.True(t, share.expired(now))

	fresh := MirrorShare{BoardId: "b1", CreatedAt: now, ExpirySeconds: 3600}
	assert.False(t, fresh.expired(now))
}
