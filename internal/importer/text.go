package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/encoding"
)

const textSeparator = "|"

// TextParser reads one record per line:
//
//	description | amount | category | date | type
//
// Only description and amount are required. Blank lines and lines starting
// with # are skipped.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(r io.Reader) ([]candidate.Raw, error) {
	content, err := encoding.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}

	var rows []candidate.Raw

	sc := bufio.NewScanner(strings.NewReader(content))
	line := 0

	for sc.Scan() {
		line++

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		row, err := parseTextLine(text)
		if err != nil {
			return nil, &ValidationError{Line: line, Reason: err.Error()}
		}

		rows = append(rows, row)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan text: %w", err)
	}

	return rows, nil
}

func parseTextLine(text string) (candidate.Raw, error) {
	fields := strings.Split(text, textSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}

		return ""
	}

	row := candidate.Raw{
		Description: field(0),
		Amount:      candidate.RawAmount(field(1)),
		Category:    field(2),
		Date:        field(3),
		Type:        field(4),
	}

	if row.Description == "" {
		return candidate.Raw{}, fmt.Errorf("missing description")
	}

	if !numeric(string(row.Amount)) {
		return candidate.Raw{}, fmt.Errorf("amount %q is not a number", row.Amount)
	}

	return row, nil
}

// numeric accepts plain decimals with either separator, e.g. "5.50" or "12,5".
func numeric(s string) bool {
	if s == "" {
		return false
	}

	_, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))

	return err == nil
}
