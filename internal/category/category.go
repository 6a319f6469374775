package category

import "context"

const (
	// NeedsReviewID is stored in place of a category that could not be resolved.
	NeedsReviewID = "needs-review"
	// NeedsReviewSubID is the subcategory stored alongside NeedsReviewID.
	NeedsReviewSubID = "needs-review-other"
)

// Category is a top-level entry of the canonical taxonomy.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

// Taxonomy is the set of categories a transaction may be filed under.
type Taxonomy struct {
	Categories    []Category
	SubCategories []SubCategory
}

// SubCategoriesOf returns the subcategories belonging to categoryID.
func (t Taxonomy) SubCategoriesOf(categoryID string) []SubCategory {
	var subs []SubCategory

	for _, s := range t.SubCategories {
		if s.CategoryID == categoryID {
			subs = append(subs, s)
		}
	}

	return subs
}

// Names returns the category names in taxonomy order.
func (t Taxonomy) Names() []string {
	names := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		names[i] = c.Name
	}

	return names
}

//go:generate mockgen -source=category.go -destination=repository_mock.go -package=category
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListSubCategories(ctx context.Context) ([]SubCategory, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Taxonomy loads the current taxonomy. An empty store yields DefaultTaxonomy.
func (s *Service) Taxonomy(ctx context.Context) (Taxonomy, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return Taxonomy{}, err
	}

	if len(cats) == 0 {
		return DefaultTaxonomy(), nil
	}

	subs, err := s.repo.ListSubCategories(ctx)
	if err != nil {
		return Taxonomy{}, err
	}

	return Taxonomy{Categories: cats, SubCategories: subs}, nil
}

// DefaultTaxonomy is the household taxonomy seeded into new installations.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []Category{
			{ID: "food", Name: "Food"},
			{ID: "transport", Name: "Transport"},
			{ID: "shopping", Name: "Shopping"},
			{ID: "health", Name: "Health"},
			{ID: "housing", Name: "Housing"},
			{ID: "utilities", Name: "Utilities"},
			{ID: "entertainment", Name: "Entertainment"},
			{ID: "education", Name: "Education"},
			{ID: "children", Name: "Children"},
			{ID: "salary", Name: "Salary"},
			{ID: "other", Name: "Other"},
			{ID: NeedsReviewID, Name: "Needs review"},
		},
		SubCategories: []SubCategory{
			{ID: "food-groceries", CategoryID: "food", Name: "Groceries"},
			{ID: "food-cafe", CategoryID: "food", Name: "Cafe"},
			{ID: "food-restaurant", CategoryID: "food", Name: "Restaurant"},
			{ID: "food-delivery", CategoryID: "food", Name: "Delivery"},
			{ID: "transport-taxi", CategoryID: "transport", Name: "Taxi"},
			{ID: "transport-public", CategoryID: "transport", Name: "Public transport"},
			{ID: "transport-fuel", CategoryID: "transport", Name: "Fuel"},
			{ID: "shopping-clothes", CategoryID: "shopping", Name: "Clothes"},
			{ID: "shopping-electronics", CategoryID: "shopping", Name: "Electronics"},
			{ID: "shopping-home", CategoryID: "shopping", Name: "Home goods"},
			{ID: "health-pharmacy", CategoryID: "health", Name: "Pharmacy"},
			{ID: "health-doctor", CategoryID: "health", Name: "Doctor"},
			{ID: "housing-rent", CategoryID: "housing", Name: "Rent"},
			{ID: "utilities-internet", CategoryID: "utilities", Name: "Internet"},
			{ID: "utilities-mobile", CategoryID: "utilities", Name: "Mobile"},
			{ID: "utilities-power", CategoryID: "utilities", Name: "Electricity"},
			{ID: NeedsReviewSubID, CategoryID: NeedsReviewID, Name: "Unsorted"},
		},
	}
}
