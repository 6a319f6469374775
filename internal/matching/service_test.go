package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/matching"
)

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		rule      matching.Rule
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success trims fields",
			rule: matching.Rule{Pattern: " PINGO DOCE ", CategoryID: "food", SubCategoryID: "food-groceries"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), matching.Rule{
					Pattern: "PINGO DOCE", CategoryID: "food", SubCategoryID: "food-groceries",
				}).Return(nil)
			},
		},
		{
			name:    "Missing pattern",
			rule:    matching.Rule{CategoryID: "food"},
			wantErr: matching.ErrInvalidRule,
		},
		{
			name:    "Needs review is not a target",
			rule:    matching.Rule{Pattern: "x", CategoryID: category.NeedsReviewID},
			wantErr: matching.ErrInvalidRule,
		},
		{
			name: "Repo error",
			rule: matching.Rule{Pattern: "x", CategoryID: "food"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := matching.NewService(repo).Learn(context.Background(), tt.rule)
			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)

	in := []candidate.Candidate{
		{ID: "bulk-1-0", Description: "Coffee", Category: "food"},
		{ID: "bulk-1-1", Description: "PINGO DOCE LISBOA", Category: category.NeedsReviewID, SubCategory: category.NeedsReviewSubID, NeedsCategoryReview: true},
		{ID: "bulk-1-2", Description: "Unknown shop", Category: category.NeedsReviewID, SubCategory: category.NeedsReviewSubID, NeedsCategoryReview: true},
	}

	repo.EXPECT().FindMatch(gomock.Any(), "PINGO DOCE LISBOA").
		Return(&matching.Rule{Pattern: "pingo doce", CategoryID: "food", SubCategoryID: "food-groceries"}, nil)
	repo.EXPECT().FindMatch(gomock.Any(), "Unknown shop").Return(nil, nil)

	out, err := matching.NewService(repo).Apply(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "food", out[1].Category)
	assert.Equal(t, "food-groceries", out[1].SubCategory)
	assert.False(t, out[1].NeedsCategoryReview)

	assert.True(t, out[2].NeedsCategoryReview)
	assert.Equal(t, category.NeedsReviewID, out[2].Category)

	assert.True(t, in[1].NeedsCategoryReview)
}
