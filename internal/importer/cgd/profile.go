package cgd

// Profile is one CGD export layout, recognized by the columns of its header
// row. Signed names a single signed amount column; when it is empty the
// export carries separate Debit and Credit columns instead. Category is
// optional and only read when the header has it.
type Profile struct {
	Name     string
	Date     string
	Desc     string
	Category string
	Signed   string
	Debit    string
	Credit   string
}

func (p Profile) split() bool {
	return p.Signed == ""
}

// required lists the header columns that must all be present.
func (p Profile) required() []string {
	if p.split() {
		return []string{p.Date, p.Desc, p.Debit, p.Credit}
	}

	return []string{p.Date, p.Desc, p.Signed}
}

// profiles are tried in order; card statements come first since their
// "Data" column would otherwise be shadowed by the account layouts.
var profiles = []Profile{
	{Name: "cartão", Date: "Data", Desc: "Descrição", Debit: "Débito", Credit: "Crédito"},
	{Name: "extrato", Date: "Data mov.", Desc: "Descrição", Category: "Categoria", Signed: "Movimento"},
	{Name: "conta", Date: "Data mov.", Desc: "Descrição", Category: "Categoria", Signed: "Montante"},
}
