// Package ai serves the receipt and voice-note recognition endpoints.
package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/http/auth"
	"github.com/hearthledger/hearth/internal/recognition"
	"github.com/hearthledger/hearth/internal/recognition/remote"
)

const maxUpload = 32 << 20

type Handler struct {
	recognizer recognition.Recognizer
	timeout    time.Duration
}

// NewHandler serves recognition through r. A nil r answers 503.
func NewHandler(r recognition.Recognizer, timeout time.Duration) *Handler {
	return &Handler{recognizer: r, timeout: timeout}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/parse-bulk-receipt", h.handle(recognition.KindImage, "image"))
	r.Post("/parse-audio", h.handle(recognition.KindAudio, "audio"))
}

func (h *Handler) handle(kind recognition.Kind, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.recognizer == nil {
			http.Error(w, "recognition is not configured", http.StatusServiceUnavailable)
			return
		}

		if err := r.ParseMultipartForm(maxUpload); err != nil {
			http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile(field)
		if err != nil {
			http.Error(w, field+" field is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}

		hints, err := remote.DecodeHints(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if hints.CurrentUserID == "" {
			hints.CurrentUserID = auth.UserID(r.Context())
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			if f, err := recognition.NewFile(header.Filename, nil); err == nil {
				mimeType = f.MIMEType
			}
		}

		ctx := r.Context()

		if h.timeout > 0 {
			var cancel context.CancelFunc

			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		rows, err := h.recognizer.Recognize(ctx, recognition.File{
			Name:     header.Filename,
			Kind:     kind,
			MIMEType: mimeType,
			Data:     data,
		}, hints)
		if err != nil {
			slog.Error("recognition failed", "error", err, "file", header.Filename, "kind", kind)
			http.Error(w, "recognition failed", http.StatusBadGateway)

			return
		}

		if rows == nil {
			rows = []candidate.Raw{}
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(remote.Response{Transactions: rows}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}
