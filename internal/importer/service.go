package importer

import (
	"fmt"
	"io"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/importer/cgd"
)

type Service struct {
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatText: NewTextParser(),
			FormatJSON: NewJSONParser(),
			FormatCGD:  cgd.NewParser(),
		},
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]candidate.Raw, error) {
	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return importer.Parse(r)
}
