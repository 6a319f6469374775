package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hearthledger/hearth/internal/category"
)

func TestResolver_Resolve(t *testing.T) {
	type args struct {
		label       string
		subLabel    string
		description string
	}

	type testCase struct {
		name    string
		args    args
		wantCat string
		wantSub string
		wantOK  bool
	}

	tests := []testCase{
		{
			name:    "Exact name",
			args:    args{label: "Food", description: "Lunch"},
			wantCat: "food",
			wantOK:  true,
		},
		{
			name:    "Id match is case insensitive",
			args:    args{label: "TRANSPORT", description: "Metro ticket"},
			wantCat: "transport",
			wantOK:  true,
		},
		{
			name:    "Russian label via translation table",
			args:    args{label: "Еда", description: "Кофе"},
			wantCat: "food",
			wantOK:  true,
		},
		{
			name:    "Fuzzy containment",
			args:    args{label: "health & beauty", description: "Pharmacy"},
			wantCat: "health",
			wantOK:  true,
		},
		{
			name:    "Subcategory resolved under its parent",
			args:    args{label: "Food", subLabel: "cafe", description: "Latte"},
			wantCat: "food",
			wantSub: "food-cafe",
			wantOK:  true,
		},
		{
			name:    "Subcategory of another parent discarded",
			args:    args{label: "Food", subLabel: "Taxi", description: "Latte"},
			wantCat: "food",
			wantSub: "",
			wantOK:  true,
		},
		{
			name:    "Unknown label needs review",
			args:    args{label: "Spaceships", subLabel: "Cafe", description: "Rocket"},
			wantCat: category.NeedsReviewID,
			wantSub: category.NeedsReviewSubID,
		},
		{
			name:    "Empty label needs review",
			args:    args{description: "Something"},
			wantCat: category.NeedsReviewID,
			wantSub: category.NeedsReviewSubID,
		},
		{
			name:    "Bank boilerplate overrides classifier",
			args:    args{label: "Food", description: "Перевод по СБП Visa"},
			wantCat: category.NeedsReviewID,
			wantSub: category.NeedsReviewSubID,
		},
		{
			name:    "Bank boilerplate with purpose keeps category",
			args:    args{label: "Food", description: "Card payment coffee house"},
			wantCat: "food",
			wantOK:  true,
		},
		{
			name:    "Boilerplate word inside a longer word is not boilerplate",
			args:    args{label: "Shopping", description: "Wireless headphones"},
			wantCat: "shopping",
			wantOK:  true,
		},
		{
			name:    "Cardigan is not a card payment",
			args:    args{label: "Shopping", subLabel: "Clothes", description: "Cardigan Zara"},
			wantCat: "shopping",
			wantSub: "shopping-clothes",
			wantOK:  true,
		},
		{
			name:    "Sentinel label is not a resolution",
			args:    args{label: "needs-review", description: "Groceries"},
			wantCat: category.NeedsReviewID,
			wantSub: category.NeedsReviewSubID,
		},
	}

	r := category.NewResolver(category.DefaultTaxonomy())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.args.label, tt.args.subLabel, tt.args.description)

			assert.Equal(t, tt.wantOK, got.IsResolved())
			assert.Equal(t, tt.wantCat, got.CategoryID())
			assert.Equal(t, tt.wantSub, got.SubCategoryID())
		})
	}
}

func TestResolution_ZeroValueNeedsReview(t *testing.T) {
	var r category.Resolution

	assert.False(t, r.IsResolved())
	assert.Equal(t, category.NeedsReviewID, r.CategoryID())
	assert.NotEmpty(t, r.SubCategoryID())
}

func TestIsBonus(t *testing.T) {
	assert.True(t, category.IsBonus("Кешбэк за октябрь"))
	assert.True(t, category.IsBonus("CASHBACK credited"))
	assert.True(t, category.IsBonus("Начисление баллов Спасибо"))
	assert.False(t, category.IsBonus("Coffee"))
}

func TestIsTechnicalOnly(t *testing.T) {
	assert.True(t, category.IsTechnicalOnly("Mastercard transfer"))
	assert.True(t, category.IsTechnicalOnly("Перевод с карты"))
	assert.True(t, category.IsTechnicalOnly("SWIFT wire, IBAN PT50..."))
	assert.False(t, category.IsTechnicalOnly("Wireless headphones"))
	assert.False(t, category.IsTechnicalOnly("Cardigan Zara"))
	assert.False(t, category.IsTechnicalOnly("Swiftly bakery"))
	assert.False(t, category.IsTechnicalOnly("Bankside brunch"))
	assert.False(t, category.IsTechnicalOnly("Перевод за аренду"))
	assert.False(t, category.IsTechnicalOnly("Groceries"))
	assert.False(t, category.IsTechnicalOnly(""))
}

func TestService_Taxonomy(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *category.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "FromStore",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any()).Return([]category.Category{{ID: "food", Name: "Food"}}, nil)
				m.EXPECT().ListSubCategories(gomock.Any()).Return(nil, nil)
			},
			wantLen: 1,
		},
		{
			name: "EmptyStoreFallsBackToDefault",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)
			},
			wantLen: len(category.DefaultTaxonomy().Categories),
		},
		{
			name: "RepoError",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().ListCategories(gomock.Any()).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := category.NewService(repo).Taxonomy(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got.Categories, tt.wantLen)
		})
	}
}
