package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boardlink-dev/boardlink/internal/domain"
	"github.com/boardlink-dev/boardlink/internal/utils"
)

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	board, err := h.board.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeJSON(w, board)
}

func (h *Handler) PutBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.BoardPatch
	if err := utils.Decode(r.Body, &patch); err != nil {
		utils.WriteError(w, err)
		return
	}

	board, err := h.board.Put(r.Context(), id, patch)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeJSON(w, board)
}

// DeleteBoard deletes a single media item when a mediaIndex query
// parameter is present, otherwise the whole board.
func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if indexParam := r.URL.Query().Get("mediaIndex"); indexParam != "" {
		index, err := parseIntParam(indexParam, "mediaIndex")
		if err != nil {
			utils.WriteErrorMessage(w, err.Error(), http.StatusBadRequest)
			return
		}
		board, err := h.media.RemoveAt(r.Context(), id, index)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		writeJSON(w, board)
		return
	}

	if err := h.board.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Board deleted"})
}

// DeleteMediaByIndex is the path-parameter variant of media deletion.
func (h *Handler) DeleteMediaByIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	index, err := parseIntParam(chi.URLParam(r, "index"), "media index")
	if err != nil {
		utils.WriteErrorMessage(w, err.Error(), http.StatusBadRequest)
		return
	}

	board, err := h.media.RemoveAt(r.Context(), id, index)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeJSON(w, board)
}
