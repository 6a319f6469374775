package category_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hearthledger/hearth/internal/category"
	categoryHandler "github.com/hearthledger/hearth/internal/http/category"
)

func TestHandler_List(t *testing.T) {
	type testCase struct {
		name       string
		setup      func(repo *category.MockRepository)
		wantStatus int
		wantCats   int
	}

	tests := []testCase{
		{
			name: "Stored taxonomy",
			setup: func(repo *category.MockRepository) {
				repo.EXPECT().ListCategories(gomock.Any()).Return([]category.Category{{ID: "food", Name: "Food"}}, nil)
				repo.EXPECT().ListSubCategories(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantCats:   1,
		},
		{
			name: "Empty store falls back to defaults",
			setup: func(repo *category.MockRepository) {
				repo.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantCats:   len(category.DefaultTaxonomy().Categories),
		},
		{
			name: "Store failure",
			setup: func(repo *category.MockRepository) {
				repo.EXPECT().ListCategories(gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setup(repo)

			r := chi.NewRouter()
			r.Route("/api/v1/categories", categoryHandler.NewHandler(category.NewService(repo)).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories/", nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Categories    []category.Category    `json:"categories"`
				SubCategories []category.SubCategory `json:"subCategories"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Categories, tt.wantCats)
			assert.NotNil(t, resp.SubCategories)
		})
	}
}
