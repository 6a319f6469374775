package cgd

import (
	"strings"
	"unicode"
)

// categoryHint is a taxonomy label and optional subcategory label the
// resolver understands.
type categoryHint struct {
	label string
	sub   string
}

// bankCategories maps the values of the "Categoria" column of CGD online
// banking exports.
var bankCategories = map[string]categoryHint{
	"alimentação":  {label: "food"},
	"restauração":  {label: "food", sub: "restaurant"},
	"supermercado": {label: "food", sub: "groceries"},
	"transportes":  {label: "transport"},
	"combustível":  {label: "transport", sub: "fuel"},
	"saúde":        {label: "health"},
	"habitação":    {label: "housing"},
	"casa":         {label: "housing"},
	"compras":      {label: "shopping"},
	"vestuário":    {label: "shopping", sub: "clothes"},
	"lazer":        {label: "entertainment"},
	"educação":     {label: "education"},
	"filhos":       {label: "children"},
	"salário":      {label: "salary"},
	"rendimentos":  {label: "salary"},

	"água, luz e gás":  {label: "utilities"},
	"telecomunicações": {label: "utilities"},
}

// merchantHints match the leading words of a movement description.
var merchantHints = []struct {
	prefix string
	hint   categoryHint
}{
	{prefix: "UBER", hint: categoryHint{label: "transport", sub: "taxi"}},
	{prefix: "BOLT", hint: categoryHint{label: "transport", sub: "taxi"}},
	{prefix: "CP ", hint: categoryHint{label: "transport", sub: "public"}},
	{prefix: "METRO", hint: categoryHint{label: "transport", sub: "public"}},
	{prefix: "GALP", hint: categoryHint{label: "transport", sub: "fuel"}},
	{prefix: "REPSOL", hint: categoryHint{label: "transport", sub: "fuel"}},
	{prefix: "CONTINENTE", hint: categoryHint{label: "food", sub: "groceries"}},
	{prefix: "PINGO DOCE", hint: categoryHint{label: "food", sub: "groceries"}},
	{prefix: "LIDL", hint: categoryHint{label: "food", sub: "groceries"}},
	{prefix: "MERCADONA", hint: categoryHint{label: "food", sub: "groceries"}},
	{prefix: "FARMACIA", hint: categoryHint{label: "health"}},
	{prefix: "FARMÁCIA", hint: categoryHint{label: "health"}},
	{prefix: "PAG SERV", hint: categoryHint{label: "utilities"}},
	{prefix: "PAGAMENTO SERVICOS", hint: categoryHint{label: "utilities"}},
	{prefix: "VENCIMENTO", hint: categoryHint{label: "salary"}},
	{prefix: "ORDENADO", hint: categoryHint{label: "salary"}},
	{prefix: "PRESTACAO", hint: categoryHint{label: "housing"}},
}

// purchasePrefixes introduce card movements; the merchant follows, optionally
// after a card or terminal number.
var purchasePrefixes = []string{"COMPRA ", "COMPRAS ", "PAG. ", "PAGAMENTO COMPRA "}

// cleanDescription drops the purchase prefix and terminal number CGD puts in
// front of card movements.
func cleanDescription(desc string) string {
	upper := strings.ToUpper(desc)

	for _, p := range purchasePrefixes {
		if !strings.HasPrefix(upper, p) {
			continue
		}

		rest := strings.TrimSpace(desc[len(p):])

		fields := strings.Fields(rest)
		if len(fields) > 1 && strings.IndexFunc(fields[0], func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		}

		if rest != "" {
			return rest
		}
	}

	return desc
}

// hintFor picks a category hint from the bank's own category first and the
// merchant name second. ok is false when neither says anything.
func hintFor(bankCategory, desc string) (categoryHint, bool) {
	if h, ok := bankCategories[strings.ToLower(strings.TrimSpace(bankCategory))]; ok {
		return h, true
	}

	upper := strings.ToUpper(desc)

	for _, m := range merchantHints {
		if strings.HasPrefix(upper, m.prefix) {
			return m.hint, true
		}
	}

	return categoryHint{}, false
}
