package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/recognition"
	"github.com/hearthledger/hearth/internal/recognition/remote"
)

func TestClient_Recognize(t *testing.T) {
	type testCase struct {
		name       string
		file       recognition.File
		wantPath   string
		wantField  string
		status     int
		body       string
		wantRows   int
		wantStatus int
	}

	image := recognition.File{Name: "r.jpg", Kind: recognition.KindImage, MIMEType: "image/jpeg", Data: []byte("jpeg")}
	audio := recognition.File{Name: "n.m4a", Kind: recognition.KindAudio, MIMEType: "audio/mp4", Data: []byte("m4a")}

	tests := []testCase{
		{
			name:      "Receipt",
			file:      image,
			wantPath:  remote.ReceiptPath,
			wantField: "image",
			status:    http.StatusOK,
			body:      `{"transactions":[{"description":"Such","amount":50000,"category":"Food"},{"description":"Plov","amount":"50000","category":"Food"}]}`,
			wantRows:  2,
		},
		{
			name:      "Audio with no rows",
			file:      audio,
			wantPath:  remote.AudioPath,
			wantField: "audio",
			status:    http.StatusOK,
			body:      `{"transactions":[]}`,
			wantRows:  0,
		},
		{
			name:       "Server error",
			file:       image,
			wantPath:   remote.ReceiptPath,
			wantField:  "image",
			status:     http.StatusBadGateway,
			body:       "model unavailable",
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

				assert.NoError(t, r.ParseMultipartForm(1<<20))

				f, hdr, err := r.FormFile(tt.wantField)
				if assert.NoError(t, err) {
					defer f.Close()

					data, _ := io.ReadAll(f)
					assert.Equal(t, tt.file.Data, data)
					assert.Equal(t, tt.file.Name, hdr.Filename)
				}

				hints, err := remote.DecodeHints(r)
				assert.NoError(t, err)
				assert.Equal(t, "user-1", hints.CurrentUserID)
				assert.Equal(t, []category.Category{{ID: "food", Name: "Food"}}, hints.Categories)

				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := remote.New(srv.URL+"/", "tok", srv.Client())

			rows, err := c.Recognize(context.Background(), tt.file, recognition.Hints{
				Categories:    []category.Category{{ID: "food", Name: "Food"}},
				CurrentUserID: "user-1",
			})

			if tt.wantStatus != 0 {
				var se *remote.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.wantStatus, se.Code)

				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)

			if tt.wantRows > 0 {
				assert.Equal(t, candidate.RawAmount("50000"), rows[0].Amount)
			}
		})
	}
}
