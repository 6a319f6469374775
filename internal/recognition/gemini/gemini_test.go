package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/recognition"
)

type fakeGenerator struct {
	text     string
	err      error
	contents []*genai.Content
	model    string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents

	if f.err != nil {
		return nil, f.err
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Plain array", in: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "Fenced json", in: "```json\n{\"transactions\": []}\n```", want: `{"transactions": []}`},
		{name: "Bare fence", in: "```\n[1]\n```", want: "[1]"},
		{name: "Leading prose", in: "Here you go:\n[{\"a\":1}] thanks", want: `[{"a":1}]`},
		{name: "Object with inner array", in: `{"transactions":[{"a":1}]}`, want: `{"transactions":[{"a":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}

func TestRecognizer_Recognize(t *testing.T) {
	type testCase struct {
		name     string
		gen      *fakeGenerator
		kind     recognition.Kind
		wantRows int
		wantErr  bool
	}

	tests := []testCase{
		{
			name:     "Wrapped object in fences",
			gen:      &fakeGenerator{text: "```json\n{\"transactions\":[{\"description\":\"Such\",\"amount\":50000,\"category\":\"Food\"}]}\n```"},
			kind:     recognition.KindImage,
			wantRows: 1,
		},
		{
			name:     "Bare array",
			gen:      &fakeGenerator{text: `[{"description":"Taxi","amount":"12.5","category":"Transport","time":"08:10"},{"description":"Bread","amount":2,"category":"Food"}]`},
			kind:     recognition.KindAudio,
			wantRows: 2,
		},
		{
			name:     "Nothing found",
			gen:      &fakeGenerator{text: `{"transactions":[]}`},
			kind:     recognition.KindImage,
			wantRows: 0,
		},
		{
			name:    "Empty text",
			gen:     &fakeGenerator{text: "  "},
			kind:    recognition.KindImage,
			wantErr: true,
		},
		{
			name:    "Model error",
			gen:     &fakeGenerator{err: errors.New("quota exceeded")},
			kind:    recognition.KindImage,
			wantErr: true,
		},
		{
			name:    "Not json",
			gen:     &fakeGenerator{text: "I could not read this receipt."},
			kind:    recognition.KindImage,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewWithGenerator(tt.gen, "")
			r.now = func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }

			rows, err := r.Recognize(context.Background(), recognition.File{
				Name:     "f",
				Kind:     tt.kind,
				MIMEType: "image/jpeg",
				Data:     []byte("x"),
			}, recognition.Hints{
				Categories:    []category.Category{{ID: "food", Name: "Food"}},
				SubCategories: []category.SubCategory{{ID: "food-cafe", CategoryID: "food", Name: "Cafe"}},
			})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			assert.Equal(t, DefaultModel, tt.gen.model)

			require.Len(t, tt.gen.contents, 1)
			require.Len(t, tt.gen.contents[0].Parts, 2)
			assert.Contains(t, tt.gen.contents[0].Parts[0].Text, "Food (Cafe)")
			assert.Contains(t, tt.gen.contents[0].Parts[0].Text, "2026-10-17")
		})
	}
}
