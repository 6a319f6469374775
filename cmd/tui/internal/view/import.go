package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/importer"
)

type importState int

const (
	importStateSourceSelect importState = iota
	importStateFilePick
	importStatePaste
	importStateImporting
	importStateResult
)

type importSource struct {
	label  string
	format importer.Format
	paste  bool
}

var importSources = []importSource{
	{label: "Text file (description | amount | category | date | type)", format: importer.FormatText},
	{label: "JSON file", format: importer.FormatJSON},
	{label: "CGD bank CSV", format: importer.FormatCGD},
	{label: "Paste text", format: importer.FormatText, paste: true},
}

// ImportModel adds rows from text, JSON or bank CSV sources to the open batch.
type ImportModel struct {
	CommonModel
	deps    Deps
	session *batch.Session

	state        importState
	filePicker   filepicker.Model
	paste        textarea.Model
	sourceCursor int

	built  candidate.BuildResult
	added  int
	status string
	err    error
}

func NewImportModel(deps Deps, session *batch.Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	ta := textarea.New()
	ta.Placeholder = "Coffee | 3.50 | Food | 2026-10-15"
	ta.ShowLineNumbers = true
	ta.SetWidth(80)
	ta.SetHeight(10)

	return ImportModel{
		deps:       deps,
		session:    session,
		filePicker: fp,
		paste:      ta,
	}
}

func (m ImportModel) Title() string { return "Import transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePaste:
		return "Ctrl+S: import | Esc: back"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateSourceSelect:
			return m.updateSourceSelect(msg)
		case importStatePaste:
			if msg.Type == tea.KeyCtrlS {
				m.state = importStateImporting
				m.status = "Importing pasted text..."

				return m, m.importCmd(importer.FormatText, strings.NewReader(m.paste.Value()), refOf(m.session))
			}

			var cmd tea.Cmd
			m.paste, cmd = m.paste.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		m.built = msg.built
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		if err := m.session.Add(msg.built.Candidates...); err != nil {
			m.err = err
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}

		m.added = len(msg.built.Candidates)
		m.status = fmt.Sprintf("Added %d candidates to the batch.", m.added)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		f, err := os.Open(path)
		if err != nil {
			m.state = importStateResult
			m.err = err
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}

		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(importSources[m.sourceCursor].format, f, refOf(m.session))
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStatePaste:
		m.state = importStateSourceSelect
		m.paste.Blur()

		return m, nil
	case importStateResult:
		m.state = importStateSourceSelect
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSourceSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case tea.KeyDown:
		if m.sourceCursor < len(importSources)-1 {
			m.sourceCursor++
		}
	case tea.KeyEnter:
		if importSources[m.sourceCursor].paste {
			m.state = importStatePaste
			m.paste.Reset()

			return m, m.paste.Focus()
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSourceSelect:
		return m.viewSourceSelect()
	case importStateFilePick:
		return page.Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", importSources[m.sourceCursor].format, m.filePicker.View()),
		)
	case importStatePaste:
		return page.Render(fmt.Sprintf("Paste one transaction per line:\n\n%s\n\n%s",
			m.paste.View(), mutedStyle.Render(m.ShortHelp())))
	case importStateImporting:
		return page.Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSourceSelect() string {
	s := "Select source:\n\n"

	for i, src := range importSources {
		cursor := " "
		if i == m.sourceCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, src.label)
	}

	return page.Render(s)
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		return page.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	out := okStyle.Render(m.status)
	if d := FormatDropped(m.built.Dropped); d != "" {
		out += "\n" + d
	}

	return page.Render(out + "\n\n(Esc to go back)")
}

type importResultMsg struct {
	built candidate.BuildResult
	err   error
}

func (m ImportModel) importCmd(format importer.Format, src io.Reader, ref batchRef) tea.Cmd {
	return func() tea.Msg {
		if c, ok := src.(io.Closer); ok {
			defer c.Close()
		}

		rows, err := m.deps.Sources.Import(format, src)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := ReqCtx()
		defer cancel()

		built, err := m.deps.build(ctx, rows, ref)

		return importResultMsg{built: built, err: err}
	}
}
