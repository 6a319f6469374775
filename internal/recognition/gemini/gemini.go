// Package gemini extracts transactions from receipts and voice notes with
// Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/recognition"
)

const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text at all.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator is the slice of the genai client the recognizer needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Recognizer struct {
	models Generator
	model  string
	now    func() time.Time
}

// New creates a recognizer backed by the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Recognizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return NewWithGenerator(client.Models, model), nil
}

// NewWithGenerator wires an existing generator, typically a test double.
func NewWithGenerator(g Generator, model string) *Recognizer {
	if model == "" {
		model = DefaultModel
	}

	return &Recognizer{models: g, model: model, now: time.Now}
}

func (r *Recognizer) Recognize(ctx context.Context, f recognition.File, h recognition.Hints) ([]candidate.Raw, error) {
	prompt, err := buildPrompt(f.Kind, h, r.now())
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{MIMEType: f.MIMEType, Data: f.Data}},
			},
		},
	}

	resp, err := r.models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	rows, err := decodeRows(cleanModelJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	return rows, nil
}

// decodeRows accepts either a bare array or {"transactions": [...]}.
func decodeRows(s string) ([]candidate.Raw, error) {
	var rows []candidate.Raw

	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			return nil, err
		}

		return rows, nil
	}

	var wrapped struct {
		Transactions []candidate.Raw `json:"transactions"`
	}

	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, err
	}

	return wrapped.Transactions, nil
}

// cleanModelJSON strips Markdown fences and any prose around the JSON
// payload the model was asked to return.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}

		s = strings.TrimSpace(s[idx+1:])
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	open, closing := "[", "]"
	if o := strings.Index(s, "{"); o != -1 && (strings.Index(s, "[") == -1 || o < strings.Index(s, "[")) {
		open, closing = "{", "}"
	}

	if start := strings.Index(s, open); start != -1 {
		if end := strings.LastIndex(s, closing); end > start {
			s = s[start : end+1]
		}
	}

	return strings.TrimSpace(s)
}
