package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/candidate"
	enc "github.com/hearthledger/hearth/internal/encoding"
	"github.com/hearthledger/hearth/internal/transaction"
)

const dateLayout = "02-01-2006"

// Parser reads CGD bank CSV exports (conta, extrato, cartão) and produces raw
// rows. Amounts are emitted unsigned with the sign carried by the row type.
// Rows get a category hint from the export's own category column or from the
// merchant name, for the resolver to map onto the taxonomy.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]candidate.Raw, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	st, ok := findStatement(records)
	if !ok {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	var raws []candidate.Raw

	for i, rec := range records[st.header+1:] {
		raw, ok, err := st.row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", st.header+i+2, err)
		}

		if ok {
			raws = append(raws, raw)
		}
	}

	return raws, nil
}

// statement is a matched export layout: the profile, where its header sits
// and where each named column landed.
type statement struct {
	profile Profile
	header  int
	cols    map[string]int
}

// findStatement scans the preamble for the first header row that satisfies a
// profile.
func findStatement(records [][]string) (statement, bool) {
	for i, rec := range records {
		cols := make(map[string]int, len(rec))

		for j, cell := range rec {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = j
			}
		}

		for _, p := range profiles {
			if hasAll(cols, p.required()) {
				return statement{profile: p, header: i, cols: cols}, true
			}
		}
	}

	return statement{}, false
}

func hasAll(cols map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return false
		}
	}

	return true
}

// cell returns the trimmed value of the named column, or "" when the column
// is absent or the record is short.
func (s statement) cell(rec []string, name string) string {
	idx, ok := s.cols[name]
	if !ok || idx >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[idx])
}

// row converts one record. ok is false for records that are not movements:
// page footers, balance lines and zero amounts.
func (s statement) row(rec []string) (candidate.Raw, bool, error) {
	date, err := time.Parse(dateLayout, s.cell(rec, s.profile.Date))
	if err != nil {
		return candidate.Raw{}, false, nil
	}

	desc := s.cell(rec, s.profile.Desc)
	if desc == "" {
		return candidate.Raw{}, false, fmt.Errorf("missing description")
	}

	amount, typ, ok := s.amount(rec)
	if !ok {
		return candidate.Raw{}, false, nil
	}

	desc = cleanDescription(desc)

	raw := candidate.Raw{
		Description: desc,
		Amount:      candidate.RawAmount(amount.String()),
		Date:        date.Format(time.DateOnly),
		Type:        string(typ),
	}

	if h, ok := hintFor(s.cell(rec, s.profile.Category), desc); ok {
		raw.Category = h.label
		raw.SubCategory = h.sub
	}

	return raw, true, nil
}

func (s statement) amount(rec []string) (decimal.Decimal, transaction.Type, bool) {
	if !s.profile.split() {
		v, ok := nonZero(s.cell(rec, s.profile.Signed))
		if !ok {
			return decimal.Zero, "", false
		}

		if v.IsNegative() {
			return v.Neg(), transaction.TypeExpense, true
		}

		return v, transaction.TypeIncome, true
	}

	if v, ok := nonZero(s.cell(rec, s.profile.Debit)); ok {
		return v.Abs(), transaction.TypeExpense, true
	}

	if v, ok := nonZero(s.cell(rec, s.profile.Credit)); ok {
		return v.Abs(), transaction.TypeIncome, true
	}

	return decimal.Zero, "", false
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	v, err := parseEuropeanAmount(s)
	if err != nil || v.IsZero() {
		return decimal.Zero, false
	}

	return v, true
}
