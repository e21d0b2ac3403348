// Package redis persists board state in a key-value store with a
// per-key TTL. Every save resets the board's inactivity expiry.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/boardlink-dev/boardlink/internal/domain"
)

type Config struct {
	Addr     string
	DB       int
	Password string
	TTL      time.Duration
}

type Storage struct {
	rdb *goredis.Client
	ttl time.Duration
}

func New(cfg Config) *Storage {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Storage{rdb: rdb, ttl: cfg.TTL}
}

func boardKey(id string) string {
	return "board:" + id
}

// GetBoard returns the stored board, or (nil, nil) when the key is absent
// or already expired. Media is normalized to an empty slice so callers
// never see a nil list.
func (s *Storage) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	data, err := s.rdb.Get(ctx, boardKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", boardKey(id), err)
	}

	var board domain.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("unmarshal board %q: %w", id, err)
	}
	if board.Media == nil {
		board.Media = []domain.MediaItem{}
	}
	return &board, nil
}

// SaveBoard persists the board and resets its inactivity TTL.
func (s *Storage) SaveBoard(ctx context.Context, board *domain.Board) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board %q: %w", board.Id, err)
	}
	if err := s.rdb.Set(ctx, boardKey(board.Id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", boardKey(board.Id), err)
	}
	return nil
}

// DeleteBoard removes the board. Deleting an absent key is not an error.
func (s *Storage) DeleteBoard(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, boardKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", boardKey(id), err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
