package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/boardlink-dev/boardlink/internal/utils"
)

type createShareRequest struct {
	BoardId       string `json:"boardId" validate:"required"`
	CustomSlug    string `json:"customSlug"`
	ExpirySeconds int64  `json:"expirySeconds"`
}

func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var body createShareRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	link, err := h.share.Create(r.Context(), body.BoardId, body.CustomSlug, body.ExpirySeconds)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"message":   "Share link created successfully",
		"slug":      link.Slug,
		"expiresAt": link.ExpiresAt,
		"boardId":   link.BoardId,
	})
}

func (h *Handler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.share.Resolve(r.Context(), slug)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeJSON(w, link)
}

// ShareQR renders the share URL for an active slug as a PNG QR code.
func (h *Handler) ShareQR(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.share.Resolve(r.Context(), slug)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	shareURL := fmt.Sprintf("%s/share/%s", h.cfg.Public.Server.BaseURL, link.Slug)
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
