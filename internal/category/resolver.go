package category

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Resolution is the outcome of mapping a recognized label onto the taxonomy.
// It is either resolved to a category (and optionally a subcategory) or
// marked for review; the zero value needs review.
type Resolution struct {
	resolved    bool
	categoryID  string
	subCategory string
}

// Resolved builds a resolution for categoryID. subCategoryID may be empty.
func Resolved(categoryID, subCategoryID string) Resolution {
	return Resolution{resolved: true, categoryID: categoryID, subCategory: subCategoryID}
}

// NeedsReview builds an unresolved resolution.
func NeedsReview() Resolution {
	return Resolution{}
}

func (r Resolution) IsResolved() bool { return r.resolved }

// CategoryID returns the resolved id, or NeedsReviewID.
func (r Resolution) CategoryID() string {
	if !r.resolved {
		return NeedsReviewID
	}

	return r.categoryID
}

// SubCategoryID returns the resolved subcategory id, "" when the category
// resolved without one, or NeedsReviewSubID.
func (r Resolution) SubCategoryID() string {
	if !r.resolved {
		return NeedsReviewSubID
	}

	return r.subCategory
}

// translations maps labels returned in another locale to canonical category names.
var translations = map[string]string{
	"еда":             "food",
	"продукты":        "food",
	"питание":         "food",
	"кафе":            "food",
	"рестораны":       "food",
	"comida":          "food",
	"essen":           "food",
	"lebensmittel":    "food",
	"транспорт":       "transport",
	"такси":           "transport",
	"transporte":      "transport",
	"verkehr":         "transport",
	"покупки":         "shopping",
	"одежда":          "shopping",
	"compras":         "shopping",
	"einkaufen":       "shopping",
	"здоровье":        "health",
	"медицина":        "health",
	"аптека":          "health",
	"salud":           "health",
	"gesundheit":      "health",
	"жильё":           "housing",
	"жилье":           "housing",
	"аренда":          "housing",
	"vivienda":        "housing",
	"wohnen":          "housing",
	"коммунальные":    "utilities",
	"связь":           "utilities",
	"servicios":       "utilities",
	"развлечения":     "entertainment",
	"entretenimiento": "entertainment",
	"образование":     "education",
	"educación":       "education",
	"дети":            "children",
	"зарплата":        "salary",
	"salario":         "salary",
	"gehalt":          "salary",
	"другое":          "other",
	"прочее":          "other",
	"otros":           "other",
}

// boilerplate are bank and payment-rail terms that carry no spending purpose.
var boilerplate = []string{
	"visa", "mastercard", "maestro", "мир", "unionpay", "amex",
	"transfer", "перевод", "перевода", "переводом", "sbp", "сбп", "bank", "банк",
	"card", "карта", "карты", "карту", "картой", "карте", "debit",
	"списание", "зачисление", "p2p", "iban", "swift", "wire",
}

// purposeKeywords reveal what the money was spent on.
var purposeKeywords = []string{
	"food", "еда", "продукт", "grocer", "cafe", "кафе", "coffee", "кофе",
	"restaurant", "ресторан", "pizza", "пицц", "lunch", "обед",
	"taxi", "такси", "uber", "metro", "метро", "bus", "автобус", "fuel", "бензин", "азс",
	"shop", "магазин", "market", "маркет", "store", "одежд",
	"pharmac", "аптек", "medical", "клиник", "doctor", "врач", "hospital",
	"rent", "аренд", "internet", "интернет", "mobile", "связь",
	"school", "школ", "cinema", "кино", "gym", "спорт",
}

// bonusKeywords mark rewards credited by banks rather than actual spending.
var bonusKeywords = []string{
	"cashback", "cash back", "кешбэк", "кэшбэк", "кешбек", "кэшбек",
	"bonus", "бонус", "points credited", "начисление баллов", "баллы", "reward",
}

// fold case-folds s. Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

// containsToken reports whether any of words appears in s as a whole word.
func containsToken(s string, words []string) bool {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, t := range tokens {
		if slices.Contains(words, t) {
			return true
		}
	}

	return false
}

// IsBonus reports whether a description is a cashback, bonus or points credit.
func IsBonus(description string) bool {
	return containsAny(fold(description), bonusKeywords)
}

// IsTechnicalOnly reports whether a description is bank boilerplate without
// any recognizable purpose.
func IsTechnicalOnly(description string) bool {
	d := fold(description)
	if d == "" {
		return false
	}

	return containsToken(d, boilerplate) && !containsAny(d, purposeKeywords)
}

// Resolver maps recognized labels onto a taxonomy.
type Resolver struct {
	taxonomy Taxonomy
}

func NewResolver(t Taxonomy) *Resolver {
	return &Resolver{taxonomy: t}
}

func (r *Resolver) Taxonomy() Taxonomy {
	return r.taxonomy
}

// Resolve maps a recognized category label (and optional subcategory label)
// onto the taxonomy. Technical-only descriptions always need review, whatever
// the upstream classifier said.
func (r *Resolver) Resolve(label, subLabel, description string) Resolution {
	if IsTechnicalOnly(description) {
		return NeedsReview()
	}

	cat, ok := r.matchCategory(label)
	if !ok || cat.ID == NeedsReviewID {
		return NeedsReview()
	}

	sub, ok := r.matchSubCategory(cat.ID, subLabel)
	if !ok {
		return Resolved(cat.ID, "")
	}

	return Resolved(cat.ID, sub.ID)
}

func (r *Resolver) matchCategory(label string) (Category, bool) {
	l := fold(label)
	if l == "" {
		return Category{}, false
	}

	if c, ok := r.exactCategory(l); ok {
		return c, true
	}

	if canonical, ok := translations[l]; ok {
		if c, ok := r.exactCategory(canonical); ok {
			return c, true
		}
	}

	if utf8.RuneCountInString(l) < 3 {
		return Category{}, false
	}

	for _, c := range r.taxonomy.Categories {
		name := fold(c.Name)
		if utf8.RuneCountInString(name) < 3 {
			continue
		}

		if strings.Contains(name, l) || strings.Contains(l, name) {
			return c, true
		}
	}

	return Category{}, false
}

func (r *Resolver) exactCategory(folded string) (Category, bool) {
	for _, c := range r.taxonomy.Categories {
		if fold(c.ID) == folded || fold(c.Name) == folded {
			return c, true
		}
	}

	return Category{}, false
}

func (r *Resolver) matchSubCategory(categoryID, label string) (SubCategory, bool) {
	l := fold(label)
	if l == "" {
		return SubCategory{}, false
	}

	subs := r.taxonomy.SubCategoriesOf(categoryID)

	for _, s := range subs {
		if fold(s.ID) == l || fold(s.Name) == l {
			return s, true
		}
	}

	if utf8.RuneCountInString(l) < 3 {
		return SubCategory{}, false
	}

	for _, s := range subs {
		if strings.Contains(fold(s.Name), l) {
			return s, true
		}
	}

	return SubCategory{}, false
}
