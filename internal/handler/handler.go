package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/boardlink-dev/boardlink/internal/config"
	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/service"
)

// Pinger is a storage backend that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	board    service.BoardService
	media    service.MediaService
	share    service.ShareService
	cfg      *config.Config
	backends []Pinger
}

func New(board service.BoardService, media service.MediaService, share service.ShareService, cfg *config.Config, backends ...Pinger) *Handler {
	return &Handler{board: board, media: media, share: share, cfg: cfg, backends: backends}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
