// Package client is the sync layer between a user session and the
// boardlink API. Every operation tries the server first; on failure the
// client degrades, once and permanently for its lifetime, to a local
// file-backed mirror and replays the mutation there. The mirror keeps
// the same structure as server state so reads stay consistent after the
// switch.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/boardlink-dev/boardlink/internal/domain"
	internal_errors "github.com/boardlink-dev/boardlink/internal/errors"
	"github.com/boardlink-dev/boardlink/internal/logger"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

// Mode is the client's sync state. The only transition is
// ModeRemote -> ModeLocal; a degraded session never probes the
// network again, so reads cannot flip between divergent sources.
type Mode int

const (
	ModeRemote Mode = iota
	ModeLocal
)

func (m Mode) String() string {
	if m == ModeLocal {
		return "local-fallback"
	}
	return "remote"
}

// Client handles all communication with the boardlink API, falling back
// to the local mirror when the API is unavailable.
type Client struct {
	BaseURL    string
	HttpClient *http.Client

	store          *LocalStore
	mode           Mode
	currentBoardId string
}

func New(baseURL string, store *LocalStore) *Client {
	return &Client{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
}

// Mode reports the current sync state.
func (c *Client) Mode() Mode {
	return c.mode
}

// CurrentBoardId returns the board this session is attached to.
func (c *Client) CurrentBoardId() string {
	return c.currentBoardId
}

// NewBoardId generates a fresh board id: 8 random base-36 characters.
func NewBoardId() string {
	return utils.GenerateRandomString(8, utils.Base36Charset)
}

// BoardURL is the plain (unslugged) share URL for a board.
func (c *Client) BoardURL(id string) string {
	return fmt.Sprintf("%s/?board=%s", c.BaseURL, id)
}

// degrade flips the client into local mode. Idempotent; only the first
// call logs the transition.
func (c *Client) degrade(op string, cause error) {
	if c.mode == ModeLocal {
		return
	}
	c.mode = ModeLocal
	logger.Log.Warn("API unavailable, switching to local mirror for the rest of the session",
		"op", op, "error", cause)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// LoadOrCreateBoard attaches the session to a board. With an empty id a
// new board id is generated. A missing remote board is created in place
// via PUT rather than treated as an error.
func (c *Client) LoadOrCreateBoard(ctx context.Context, id string) (*domain.Board, error) {
	if id == "" {
		id = NewBoardId()
	}
	c.currentBoardId = id

	board, err := c.GetBoard(ctx, id)
	if internal_errors.StatusCode(err, 0) == http.StatusNotFound {
		return c.SaveBoard(ctx, id, domain.BoardPatch{})
	}
	return board, err
}

// GetBoard fetches a board. A remote 404 is a real answer and is
// returned as such without degrading; in local mode a missing board is
// materialized empty so reads always succeed.
func (c *Client) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	if c.mode == ModeLocal {
		return c.store.GetOrCreateBoard(id)
	}

	resp, err := c.do(ctx, http.MethodGet, "/boards/"+id, nil, "")
	if err != nil {
		c.degrade("get board", err)
		return c.store.GetOrCreateBoard(id)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Board not found", StatusCode: http.StatusNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		c.degrade("get board", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.store.GetOrCreateBoard(id)
	}

	var board domain.Board
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		c.degrade("get board", err)
		return c.store.GetOrCreateBoard(id)
	}
	// keep the mirror warm so a later degrade starts from current state
	if err := c.store.UpsertBoard(&board); err != nil {
		logger.Log.Warn("mirror update failed", "board", id, "error", err)
	}
	return &board, nil
}

// SaveBoard sends a partial board update.
func (c *Client) SaveBoard(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	if c.mode == ModeLocal {
		return c.saveBoardLocal(id, patch)
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPut, "/boards/"+id, bytes.NewReader(payload), "application/json")
	if err != nil {
		c.degrade("save board", err)
		return c.saveBoardLocal(id, patch)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.degrade("save board", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.saveBoardLocal(id, patch)
	}

	var board domain.Board
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		c.degrade("save board", err)
		return c.saveBoardLocal(id, patch)
	}
	if err := c.store.UpsertBoard(&board); err != nil {
		logger.Log.Warn("mirror update failed", "board", id, "error", err)
	}
	return &board, nil
}

func (c *Client) saveBoardLocal(id string, patch domain.BoardPatch) (*domain.Board, error) {
	return c.store.MutateBoard(id, func(board *domain.Board) error {
		if patch.Text != nil {
			board.Text = *patch.Text
		}
		if patch.Media != nil {
			board.Media = *patch.Media
		}
		if patch.CreatedAt != nil {
			board.CreatedAt = *patch.CreatedAt
		}
		return nil
	})
}

// SaveText is the common case: replace the board's text.
func (c *Client) SaveText(ctx context.Context, id, text string) (*domain.Board, error) {
	return c.SaveBoard(ctx, id, domain.BoardPatch{Text: &text})
}

// Upload attaches a file to the board. In local mode the bytes are kept
// inline as a data: URL so the item stays renderable without a blob
// store.
func (c *Client) Upload(ctx context.Context, boardId, fileName, mimeType string, data []byte) (*domain.Board, error) {
	if c.mode == ModeLocal {
		return c.uploadLocal(boardId, fileName, mimeType, data)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("boardId", boardId); err != nil {
		return nil, err
	}
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/media/upload", &buf, form.FormDataContentType())
	if err != nil {
		c.degrade("upload", err)
		return c.uploadLocal(boardId, fileName, mimeType, data)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.degrade("upload", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.uploadLocal(boardId, fileName, mimeType, data)
	}

	var result struct {
		Board *domain.Board `json:"board"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.degrade("upload", err)
		return c.uploadLocal(boardId, fileName, mimeType, data)
	}
	if err := c.store.UpsertBoard(result.Board); err != nil {
		logger.Log.Warn("mirror update failed", "board", boardId, "error", err)
	}
	return result.Board, nil
}

func (c *Client) uploadLocal(boardId, fileName, mimeType string, data []byte) (*domain.Board, error) {
	now := time.Now().UTC()
	item := domain.MediaItem{
		Id:         fmt.Sprintf("media_%d_%s", now.UnixMilli(), utils.GenerateRandomString(9, utils.Base36Charset)),
		Url:        fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
		Name:       fileName,
		Type:       mimeType,
		Size:       int64(len(data)),
		UploadedAt: now,
	}
	return c.store.MutateBoard(boardId, func(board *domain.Board) error {
		board.Media = append(board.Media, item)
		return nil
	})
}

// DeleteMediaAt removes the media item at the given position.
func (c *Client) DeleteMediaAt(ctx context.Context, boardId string, index int) (*domain.Board, error) {
	if c.mode == ModeLocal {
		return c.deleteMediaLocal(boardId, index)
	}

	path := fmt.Sprintf("/boards/%s/media/%d", boardId, index)
	resp, err := c.do(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		c.degrade("delete media", err)
		return c.deleteMediaLocal(boardId, index)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.degrade("delete media", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.deleteMediaLocal(boardId, index)
	}

	var board domain.Board
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		c.degrade("delete media", err)
		return c.deleteMediaLocal(boardId, index)
	}
	if err := c.store.UpsertBoard(&board); err != nil {
		logger.Log.Warn("mirror update failed", "board", boardId, "error", err)
	}
	return &board, nil
}

func (c *Client) deleteMediaLocal(boardId string, index int) (*domain.Board, error) {
	return c.store.MutateBoard(boardId, func(board *domain.Board) error {
		if index < 0 || index >= len(board.Media) {
			return &internal_errors.ErrorWithStatusCode{Message: "Invalid media index", StatusCode: http.StatusBadRequest}
		}
		board.Media = append(board.Media[:index], board.Media[index+1:]...)
		return nil
	})
}

// DeleteBoard removes a board entirely.
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	if c.mode == ModeLocal {
		return c.store.DeleteBoard(id)
	}

	resp, err := c.do(ctx, http.MethodDelete, "/boards/"+id, nil, "")
	if err != nil {
		c.degrade("delete board", err)
		return c.store.DeleteBoard(id)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.degrade("delete board", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.store.DeleteBoard(id)
	}
	return c.store.DeleteBoard(id)
}

// CreateShareLink registers a slug for the board and returns the full
// share URL. In local mode the slug maps inside the mirror only, and an
// empty custom slug falls back to the board id itself.
func (c *Client) CreateShareLink(ctx context.Context, boardId, customSlug string, expirySeconds int64) (string, error) {
	if c.mode == ModeLocal {
		return c.createShareLocal(boardId, customSlug, expirySeconds)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"boardId":       boardId,
		"customSlug":    customSlug,
		"expirySeconds": expirySeconds,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, "/share/create", bytes.NewReader(payload), "application/json")
	if err != nil {
		c.degrade("create share", err)
		return c.createShareLocal(boardId, customSlug, expirySeconds)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.degrade("create share", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.createShareLocal(boardId, customSlug, expirySeconds)
	}

	var result struct {
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.degrade("create share", err)
		return c.createShareLocal(boardId, customSlug, expirySeconds)
	}
	return fmt.Sprintf("%s/share/%s", c.BaseURL, result.Slug), nil
}

// defaultShareExpirySeconds matches the server-side default applied when
// a create request carries no expiry.
const defaultShareExpirySeconds int64 = 86400

func (c *Client) createShareLocal(boardId, customSlug string, expirySeconds int64) (string, error) {
	slug := customSlug
	if slug == "" {
		slug = boardId
	}
	// The server defaults an unset expiry; the mirror replay must too,
	// or a zero-expiry share would be born expired.
	if expirySeconds <= 0 {
		expirySeconds = defaultShareExpirySeconds
	}
	err := c.store.SetShare(slug, MirrorShare{
		BoardId:       boardId,
		CreatedAt:     time.Now().UTC(),
		ExpirySeconds: expirySeconds,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/share/%s", c.BaseURL, slug), nil
}

// ResolveShare maps a slug back to a board id. In local mode an unknown
// slug resolves to itself, treating the slug as a bare board id.
func (c *Client) ResolveShare(ctx context.Context, slug string) (string, error) {
	if c.mode == ModeLocal {
		return c.resolveShareLocal(slug)
	}

	resp, err := c.do(ctx, http.MethodGet, "/share/"+slug, nil, "")
	if err != nil {
		c.degrade("resolve share", err)
		return c.resolveShareLocal(slug)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Share link not found or expired", StatusCode: http.StatusNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		c.degrade("resolve share", fmt.Errorf("backend returned status %d", resp.StatusCode))
		return c.resolveShareLocal(slug)
	}

	var link domain.ShareLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		c.degrade("resolve share", err)
		return c.resolveShareLocal(slug)
	}
	return link.BoardId, nil
}

// ShareQR renders the share URL for slug as a PNG QR code. The code is
// generated locally, so it works identically in both modes.
func (c *Client) ShareQR(slug string) ([]byte, error) {
	return qrcode.Encode(fmt.Sprintf("%s/share/%s", c.BaseURL, slug), qrcode.Medium, 256)
}

func (c *Client) resolveShareLocal(slug string) (string, error) {
	share, ok := c.store.Share(slug)
	if !ok {
		return slug, nil
	}
	if share.expired(time.Now().UTC()) {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Share link has expired", StatusCode: http.StatusNotFound}
	}
	return share.BoardId, nil
}
