package category

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearth/internal/category"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type taxonomyResponse struct {
	Categories    []category.Category    `json:"categories"`
	SubCategories []category.SubCategory `json:"subCategories"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Taxonomy(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := taxonomyResponse{
		Categories:    t.Categories,
		SubCategories: t.SubCategories,
	}

	if resp.SubCategories == nil {
		resp.SubCategories = []category.SubCategory{}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
