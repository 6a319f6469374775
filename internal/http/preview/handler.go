// Package preview serves the import preview: a file is parsed, turned into
// candidates and checked for duplicates without anything being saved.
package preview

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/duplicate"
	"github.com/hearthledger/hearth/internal/http/auth"
	"github.com/hearthledger/hearth/internal/importer"
	"github.com/hearthledger/hearth/internal/matching"
	"github.com/hearthledger/hearth/internal/normalize"
	"github.com/hearthledger/hearth/internal/transaction"
)

type Handler struct {
	importSvc   *importer.Service
	categorySvc *category.Service
	matchSvc    *matching.Service
	txSvc       *transaction.Service
	yearPolicy  normalize.YearPolicy
	now         func() time.Time
}

func NewHandler(
	importSvc *importer.Service,
	categorySvc *category.Service,
	matchSvc *matching.Service,
	txSvc *transaction.Service,
	yearPolicy normalize.YearPolicy,
) *Handler {
	return &Handler{
		importSvc:   importSvc,
		categorySvc: categorySvc,
		matchSvc:    matchSvc,
		txSvc:       txSvc,
		yearPolicy:  yearPolicy,
		now:         time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.preview)
}

type previewRequest struct {
	Format  importer.Format `json:"format"`
	Content string          `json:"content"`
}

type duplicateResponse struct {
	CandidateID string            `json:"candidate_id"`
	Other       candidate.Payload `json:"other"`
	Existing    bool              `json:"existing"`
	Similarity  int               `json:"similarity"`
}

type droppedResponse struct {
	Description string               `json:"description"`
	Amount      string               `json:"amount"`
	Reason      candidate.DropReason `json:"reason"`
}

type previewResponse struct {
	Candidates []candidate.Payload `json:"candidates"`
	Duplicates []duplicateResponse `json:"duplicates"`
	Dropped    []droppedResponse   `json:"dropped"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	format, src, err := readSource(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer src.Close()

	rows, err := h.importSvc.Import(format, src)
	if err != nil {
		var ve *importer.ValidationError
		if errors.As(err, &ve) {
			slog.Info("import rejected", "format", format, "line", ve.Line, "reason", ve.Reason)
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	taxonomy, err := h.categorySvc.Taxonomy(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := h.now()

	built := candidate.NewBuilder(category.NewResolver(taxonomy)).Build(rows, candidate.BuildContext{
		Epoch:      now.UnixMilli(),
		Now:        now,
		User:       auth.UserID(r.Context()),
		YearPolicy: h.yearPolicy,
	})

	cs, err := h.matchSvc.Apply(r.Context(), built.Candidates)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := previewResponse{
		Candidates: candidate.Payloads(cs),
		Duplicates: []duplicateResponse{},
		Dropped:    make([]droppedResponse, 0, len(built.Dropped)),
	}

	for _, d := range built.Dropped {
		resp.Dropped = append(resp.Dropped, droppedResponse{
			Description: d.Raw.Description,
			Amount:      string(d.Raw.Amount),
			Reason:      d.Reason,
		})
	}

	if len(cs) > 0 {
		pairs, persisted, err := h.detect(r, cs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for _, p := range pairs {
			resp.Duplicates = append(resp.Duplicates, duplicateResponse{
				CandidateID: p.New.ID,
				Other:       p.Other.Payload(),
				Existing:    duplicate.IsExisting(p, persisted),
				Similarity:  p.Similarity,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) detect(r *http.Request, cs []candidate.Candidate) ([]duplicate.Pair, map[string]struct{}, error) {
	minDate, maxDate := candidate.DateRange(cs)
	from := startOfDay(minDate)
	to := startOfDay(maxDate).AddDate(0, 0, 1)

	txs, err := h.txSvc.List(r.Context(), transaction.ListFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, nil, err
	}

	existing := make([]candidate.Candidate, len(txs))
	persisted := make(map[string]struct{}, len(txs))

	for i, tx := range txs {
		existing[i] = candidate.FromTransaction(tx)
		persisted[existing[i].ID] = struct{}{}
	}

	return duplicate.Detect(cs, existing), persisted, nil
}

// readSource accepts either a multipart upload (format + file) or a JSON
// body carrying the file content inline.
func readSource(r *http.Request) (importer.Format, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return "", nil, errors.New("failed to parse form: " + err.Error())
		}

		format := importer.Format(r.FormValue("format"))
		if format == "" {
			return "", nil, errors.New("format field is required")
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			return "", nil, errors.New("file field is required")
		}

		return format, file, nil
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, errors.New("invalid request body: " + err.Error())
	}

	if req.Format == "" {
		return "", nil, errors.New("format is required")
	}

	return req.Format, io.NopCloser(strings.NewReader(req.Content)), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
