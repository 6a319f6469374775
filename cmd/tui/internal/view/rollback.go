package view

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/hearthledger/hearth/internal/batch"
)

type rollbackState int

const (
	rollbackStateConfirm rollbackState = iota
	rollbackStateRunning
	rollbackStateResult
)

// RollbackModel undoes the most recently submitted import.
type RollbackModel struct {
	CommonModel
	deps Deps

	state   rollbackState
	form    *huh.Form
	last    int64
	hasLast bool

	removed int64
	status  string
	err     error
}

func NewRollbackModel(deps Deps) RollbackModel {
	m := RollbackModel{deps: deps}
	m.last, m.hasLast = deps.Importer.LastImport()

	if !m.hasLast {
		m.state = rollbackStateResult
		m.err = batch.ErrNoPriorBatch

		return m
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Roll back the last import?").
				Description(fmt.Sprintf("Import %d from %s. Every transaction it created will be removed.",
					m.last, time.UnixMilli(m.last).Format("2006-01-02 15:04"))).
				Affirmative("Roll back").
				Negative("Keep"),
		),
	).WithWidth(70).WithShowHelp(false)

	return m
}

func (m RollbackModel) Title() string { return "Roll back last import" }

func (m RollbackModel) ShortHelp() string { return "Esc: back" }

func (m RollbackModel) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}

	return m.form.Init()
}

func (m RollbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(rollbackResultMsg); ok {
		m.state = rollbackStateResult
		m.removed = res.removed
		m.err = res.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.state != rollbackStateConfirm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("confirm") {
		return m, Back
	}

	m.state = rollbackStateRunning
	m.status = fmt.Sprintf("Rolling back import %d...", m.last)

	return m, m.rollbackCmd()
}

func (m RollbackModel) View() string {
	switch m.state {
	case rollbackStateConfirm:
		return page.Render(m.form.View())
	case rollbackStateRunning:
		return page.Render(m.status)
	}

	if errors.Is(m.err, batch.ErrNoPriorBatch) {
		return page.Render("There is no previous import to roll back.\n\n(Esc to go back)")
	}

	if m.err != nil {
		return page.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	msg := fmt.Sprintf("Removed %d transactions.", m.removed)
	if m.removed == 0 {
		msg = "Nothing left to remove; the import was already rolled back."
	}

	return page.Render(okStyle.Render(msg) + "\n\n(Esc to go back)")
}

type rollbackResultMsg struct {
	removed int64
	err     error
}

func (m RollbackModel) rollbackCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		removed, err := m.deps.Importer.RollbackLast(ctx)

		return rollbackResultMsg{removed: removed, err: err}
	}
}
