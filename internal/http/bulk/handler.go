// Package bulk serves atomic batch creation and rollback of imported
// transactions.
package bulk

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/http/auth"
	"github.com/hearthledger/hearth/internal/transaction"
)

const maxBatch = 500

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Delete("/{importTimestamp}", h.rollback)
}

type createRequest struct {
	Transactions []candidate.Payload `json:"transactions"`
}

type createResponse struct {
	Success         bool  `json:"success"`
	ImportTimestamp int64 `json:"importTimestamp"`
	Count           int   `json:"count"`
}

type rollbackResponse struct {
	Success bool  `json:"success"`
	Removed int64 `json:"removed"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Transactions) == 0 {
		http.Error(w, "transactions must not be empty", http.StatusBadRequest)
		return
	}

	if len(req.Transactions) > maxBatch {
		http.Error(w, "too many transactions in one batch", http.StatusRequestEntityTooLarge)
		return
	}

	user := auth.UserID(r.Context())
	cs := make([]candidate.Candidate, len(req.Transactions))

	for i, p := range req.Transactions {
		c := p.Candidate()

		if c.Type == "" {
			c.Type = transaction.TypeExpense
		}

		if !c.Type.Valid() {
			http.Error(w, "transaction "+strconv.Itoa(i)+": type must be income or expense", http.StatusBadRequest)
			return
		}

		if !c.Amount.IsPositive() {
			http.Error(w, "transaction "+strconv.Itoa(i)+": amount must be positive", http.StatusBadRequest)
			return
		}

		if c.Date.IsZero() {
			http.Error(w, "transaction "+strconv.Itoa(i)+": date is required", http.StatusBadRequest)
			return
		}

		if c.User == "" {
			c.User = user
		}

		if c.Priority == "" {
			c.Priority = candidate.PriorityLow
		}

		cs[i] = c
	}

	result, err := h.svc.BulkCreate(r.Context(), candidate.ToCreateParams(cs))
	if err != nil {
		slog.Error("bulk create failed", "error", err, "count", len(cs))
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(createResponse{
		Success:         true,
		ImportTimestamp: result.ImportTimestamp,
		Count:           len(result.Transactions),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) rollback(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(chi.URLParam(r, "importTimestamp"), 10, 64)
	if err != nil || ts <= 0 {
		http.Error(w, "invalid import timestamp", http.StatusBadRequest)
		return
	}

	removed, err := h.svc.RollbackImport(r.Context(), ts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(rollbackResponse{Success: true, Removed: removed}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
