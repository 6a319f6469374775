package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/client"
	"github.com/hearthledger/hearth/internal/importer"
	"github.com/hearthledger/hearth/internal/ingest"
	"github.com/hearthledger/hearth/internal/normalize"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Deps are the services every screen works with.
type Deps struct {
	Client     *client.Client
	Importer   *batch.Importer
	Ingest     *ingest.Service
	Sources    *importer.Service
	YearPolicy normalize.YearPolicy
}

// batchRef identifies where newly built candidates land in the open batch.
type batchRef struct {
	epoch  int64
	offset int
	user   string
}

func refOf(s *batch.Session) batchRef {
	return batchRef{epoch: s.Epoch(), offset: s.NextIndex(), user: s.User()}
}

// build turns extracted rows into candidates against the backend taxonomy.
func (d Deps) build(ctx context.Context, raws []candidate.Raw, ref batchRef) (candidate.BuildResult, error) {
	tax, err := d.Client.Taxonomy(ctx)
	if err != nil {
		return candidate.BuildResult{}, fmt.Errorf("loading categories: %w", err)
	}

	return candidate.NewBuilder(category.NewResolver(tax)).Build(raws, candidate.BuildContext{
		Epoch:      ref.epoch,
		Offset:     ref.offset,
		Now:        time.Now(),
		User:       ref.user,
		YearPolicy: d.YearPolicy,
	}), nil
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	page        = lipgloss.NewStyle().Padding(1, 2)
)
