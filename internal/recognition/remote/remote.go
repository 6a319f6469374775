// Package remote calls the backend's recognition endpoints over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/recognition"
)

const (
	ReceiptPath = "/ai/parse-bulk-receipt"
	AudioPath   = "/ai/parse-audio"

	maxResponseBytes = 4 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("recognition service returned %d", e.Code)
	}

	return fmt.Sprintf("recognition service returned %d: %s", e.Code, e.Body)
}

// Response is the body both endpoints answer with.
type Response struct {
	Transactions []candidate.Raw `json:"transactions"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

func (c *Client) Recognize(ctx context.Context, f recognition.File, h recognition.Hints) ([]candidate.Raw, error) {
	path, field := ReceiptPath, "image"
	if f.Kind == recognition.KindAudio {
		path, field = AudioPath, "audio"
	}

	body, contentType, err := encodeForm(field, f, h)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return out.Transactions, nil
}

// encodeForm writes the file part and the JSON-encoded hint fields.
func encodeForm(field string, f recognition.File, h recognition.Hints) (io.Reader, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	header.Set("Content-Type", f.MIMEType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}

	if _, err := part.Write(f.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	fields := map[string]any{
		"categories":         h.Categories,
		"subCategories":      h.SubCategories,
		"recentTransactions": h.RecentTransactions,
	}

	for name, v := range fields {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", name, err)
		}

		if err := w.WriteField(name, string(encoded)); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", name, err)
		}
	}

	if err := w.WriteField("currentUserId", h.CurrentUserID); err != nil {
		return nil, "", fmt.Errorf("write currentUserId: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// DecodeHints reads the hint fields of a recognition form. Missing fields
// are left empty.
func DecodeHints(r *http.Request) (recognition.Hints, error) {
	var h recognition.Hints

	targets := map[string]any{
		"categories":         &h.Categories,
		"subCategories":      &h.SubCategories,
		"recentTransactions": &h.RecentTransactions,
	}

	for name, target := range targets {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}

		if err := json.Unmarshal([]byte(raw), target); err != nil {
			return recognition.Hints{}, fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	h.CurrentUserID = r.FormValue("currentUserId")

	return h, nil
}
