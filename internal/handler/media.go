package handler

import (
	"errors"
	"net/http"

	"github.com/boardlink-dev/boardlink/internal/utils"
)

// multipart overhead buffer on top of the file size cap
const formOverhead = 1 << 20

// UploadMedia accepts a multipart form with a "file" part and a "boardId"
// field, stores the bytes and appends the item to the board's media list.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	maxRequest := h.cfg.Public.Board.MaxUploadBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxRequest)

	if err := r.ParseMultipartForm(maxRequest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.WriteErrorMessage(w, "Uploaded file is too large", http.StatusRequestEntityTooLarge)
			return
		}
		utils.WriteErrorMessage(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	boardId := r.FormValue("boardId")
	if boardId == "" {
		utils.WriteErrorMessage(w, "Board ID is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteErrorMessage(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")

	item, board, err := h.media.Attach(r.Context(), boardId, header.Filename, mimeType, header.Size, file)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"message":   "File uploaded successfully",
		"mediaItem": item,
		"board":     board,
	})
}
