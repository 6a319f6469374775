package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/encoding"
)

// JSONParser accepts {"transactions": [...]} or a bare array of rows, the
// same shape the recognition endpoints answer with.
type JSONParser struct{}

func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(r io.Reader) ([]candidate.Raw, error) {
	content, err := encoding.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	data := bytes.TrimSpace([]byte(content))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty json document")
	}

	var rows []candidate.Raw

	if data[0] == '[' {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse json rows: %w", err)
		}

		return rows, nil
	}

	var doc struct {
		Transactions []candidate.Raw `json:"transactions"`
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json document: %w", err)
	}

	return doc.Transactions, nil
}
