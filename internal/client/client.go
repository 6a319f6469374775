// Package client talks to the hearth backend on behalf of the operator
// client: batch submission and rollback, the persisted-transaction window
// used for duplicate checks, and the category taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/recognition"
	"github.com/hearthledger/hearth/internal/transaction"
)

const (
	BulkPath         = "/family/transactions/bulk"
	TransactionsPath = "/api/v1/transactions"
	CategoriesPath   = "/api/v1/categories"

	maxResponseBytes = 8 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

var _ batch.Backend = (*Client)(nil)

type bulkRequest struct {
	Transactions []candidate.Payload `json:"transactions"`
}

type bulkResponse struct {
	Success         bool  `json:"success"`
	ImportTimestamp int64 `json:"importTimestamp"`
	Count           int   `json:"count"`
}

// SubmitBulk creates cs in one atomic batch.
func (c *Client) SubmitBulk(ctx context.Context, cs []candidate.Candidate) (*batch.Submission, error) {
	var out bulkResponse
	if err := c.do(ctx, http.MethodPost, BulkPath, bulkRequest{Transactions: candidate.Payloads(cs)}, &out); err != nil {
		return nil, err
	}

	if !out.Success {
		return nil, fmt.Errorf("bulk create was not acknowledged")
	}

	return &batch.Submission{ImportTimestamp: out.ImportTimestamp, Count: out.Count}, nil
}

type rollbackResponse struct {
	Success bool  `json:"success"`
	Removed int64 `json:"removed"`
}

// RollbackBulk removes every transaction created by the batch stamped
// importTimestamp and reports how many were removed.
func (c *Client) RollbackBulk(ctx context.Context, importTimestamp int64) (int64, error) {
	var out rollbackResponse
	if err := c.do(ctx, http.MethodDelete, BulkPath+"/"+strconv.FormatInt(importTimestamp, 10), nil, &out); err != nil {
		return 0, err
	}

	return out.Removed, nil
}

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Amount      float64          `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	SubCategory string           `json:"sub_category"`
	User        string           `json:"user"`
	Priority    string           `json:"priority"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
}

func (t transactionResponse) candidate() candidate.Candidate {
	return candidate.Candidate{
		ID:          t.ID.String(),
		Description: t.Description,
		Amount:      decimal.NewFromFloat(t.Amount),
		Category:    t.Category,
		SubCategory: t.SubCategory,
		User:        t.User,
		Type:        t.Type,
		Priority:    t.Priority,
		Date:        t.Date,
	}
}

// ListExisting returns persisted transactions dated within [from, to].
func (c *Client) ListExisting(ctx context.Context, from, to time.Time) ([]candidate.Candidate, error) {
	q := url.Values{}
	q.Set("start_date", from.Format(time.RFC3339))
	q.Set("end_date", to.Format(time.RFC3339))

	var out []transactionResponse
	if err := c.do(ctx, http.MethodGet, TransactionsPath+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	cs := make([]candidate.Candidate, len(out))
	for i, t := range out {
		cs[i] = t.candidate()
	}

	return cs, nil
}

// RecentTransactions returns transactions dated on or after since, shaped as
// recognition hints.
func (c *Client) RecentTransactions(ctx context.Context, since time.Time) ([]recognition.RecentTransaction, error) {
	q := url.Values{}
	q.Set("start_date", since.Format(time.RFC3339))

	var out []transactionResponse
	if err := c.do(ctx, http.MethodGet, TransactionsPath+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	recent := make([]recognition.RecentTransaction, len(out))
	for i, t := range out {
		recent[i] = recognition.RecentTransaction{
			Description: t.Description,
			Amount:      decimal.NewFromFloat(t.Amount).String(),
			Category:    t.Category,
			Date:        t.Date.Format(time.DateOnly),
		}
	}

	return recent, nil
}

type taxonomyResponse struct {
	Categories    []category.Category    `json:"categories"`
	SubCategories []category.SubCategory `json:"subCategories"`
}

// Taxonomy fetches the backend's category taxonomy.
func (c *Client) Taxonomy(ctx context.Context) (category.Taxonomy, error) {
	var out taxonomyResponse
	if err := c.do(ctx, http.MethodGet, CategoriesPath, nil, &out); err != nil {
		return category.Taxonomy{}, err
	}

	return category.Taxonomy{Categories: out.Categories, SubCategories: out.SubCategories}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: req.URL.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
