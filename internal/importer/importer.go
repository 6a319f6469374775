// Package importer turns uploaded files and pasted text into raw rows.
package importer

import (
	"fmt"
	"io"

	"github.com/hearthledger/hearth/internal/candidate"
)

// Format names a supported source layout.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCGD  Format = "cgd"
)

// Formats lists every format Service understands.
var Formats = []Format{FormatText, FormatJSON, FormatCGD}

type Importer interface {
	Parse(r io.Reader) ([]candidate.Raw, error)
}

// ValidationError reports a malformed record in a line-based source.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
