package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/boardlink-dev/boardlink/internal/domain"
	"github.com/boardlink-dev/boardlink/internal/logger"
)

// MirrorShare is the local mirror's share-map entry. It mirrors the
// server's share link but keeps the raw expiry seconds instead of an
// absolute timestamp.
type MirrorShare struct {
	BoardId       string    `json:"boardId"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpirySeconds int64     `json:"expirySeconds"`
}

func (m MirrorShare) expired(now time.Time) bool {
	return now.After(m.CreatedAt.Add(time.Duration(m.ExpirySeconds) * time.Second))
}

type mirrorData struct {
	Boards   map[string]*domain.Board `json:"boards"`
	ShareMap map[string]MirrorShare   `json:"shareMap"`
}

// LocalStore is the durable client-side mirror of server state: a JSON
// file holding boards keyed by id and a slug->board share map. Its shape
// is structurally identical to the server model so a session can switch
// to it without translation.
type LocalStore struct {
	path string

	mu   sync.Mutex
	data mirrorData
}

// OpenLocalStore loads the mirror file at path, creating an empty mirror
// when the file is missing. A corrupt file is reset, not fatal: the
// mirror is a fallback and must never block startup.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{
		path: path,
		data: mirrorData{
			Boards:   map[string]*domain.Board{},
			ShareMap: map[string]MirrorShare{},
		},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror file: %w", err)
	}

	var data mirrorData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Log.Warn("mirror file is corrupt, resetting", "path", path, "error", err)
		return s, nil
	}
	if data.Boards == nil {
		data.Boards = map[string]*domain.Board{}
	}
	if data.ShareMap == nil {
		data.ShareMap = map[string]MirrorShare{}
	}
	s.data = data
	return s, nil
}

// save persists the mirror. Callers must hold s.mu.
func (s *LocalStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mirror: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("write mirror file: %w", err)
	}
	return nil
}

// Board returns a copy of the stored board, if present.
func (s *LocalStore) Board(id string) (*domain.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, ok := s.data.Boards[id]
	if !ok {
		return nil, false
	}
	return copyBoard(board), true
}

// GetOrCreateBoard returns the stored board or creates an empty one on
// first read.
func (s *LocalStore) GetOrCreateBoard(id string) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if board, ok := s.data.Boards[id]; ok {
		return copyBoard(board), nil
	}

	now := time.Now().UTC()
	board := &domain.Board{
		Id:           id,
		Text:         "",
		Media:        []domain.MediaItem{},
		CreatedAt:    now,
		LastModified: now,
	}
	s.data.Boards[id] = board
	if err := s.save(); err != nil {
		return nil, err
	}
	return copyBoard(board), nil
}

// UpsertBoard stores a full board record, replacing any previous state.
func (s *LocalStore) UpsertBoard(board *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyBoard(board)
	stored.LastModified = time.Now().UTC()
	if stored.Media == nil {
		stored.Media = []domain.MediaItem{}
	}
	s.data.Boards[board.Id] = stored
	return s.save()
}

// MutateBoard applies fn to the stored board (created empty when absent)
// and persists the result. fn receives the stored copy directly.
func (s *LocalStore) MutateBoard(id string, fn func(*domain.Board) error) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, ok := s.data.Boards[id]
	if !ok {
		now := time.Now().UTC()
		board = &domain.Board{Id: id, Media: []domain.MediaItem{}, CreatedAt: now}
		s.data.Boards[id] = board
	}
	if err := fn(board); err != nil {
		return nil, err
	}
	board.LastModified = time.Now().UTC()
	if err := s.save(); err != nil {
		return nil, err
	}
	return copyBoard(board), nil
}

// DeleteBoard drops the board from the mirror. Absent boards are a no-op.
func (s *LocalStore) DeleteBoard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.Boards, id)
	return s.save()
}

// SetShare records a slug->board mapping.
func (s *LocalStore) SetShare(slug string, share MirrorShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.ShareMap[slug] = share
	return s.save()
}

// Share looks up a slug mapping.
func (s *LocalStore) Share(slug string) (MirrorShare, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, ok := s.data.ShareMap[slug]
	return share, ok
}

func copyBoard(b *domain.Board) *domain.Board {
	c := *b
	c.Media = make([]domain.MediaItem, len(b.Media))
	copy(c.Media, b.Media)
	return &c
}
