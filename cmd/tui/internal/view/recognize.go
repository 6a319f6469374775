package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/ingest"
	"github.com/hearthledger/hearth/internal/recognition"
)

const recentWindow = 30 * 24 * time.Hour

type recognizeState int

const (
	recognizeStatePick recognizeState = iota
	recognizeStateRunning
	recognizeStateResult
)

// RecognizeModel sends receipt photos and voice notes to the recognition
// service one at a time and adds the extracted rows to the open batch.
type RecognizeModel struct {
	CommonModel
	deps    Deps
	session *batch.Session

	state      recognizeState
	filePicker filepicker.Model
	files      []string
	spinner    spinner.Model

	events   <-chan tea.Msg
	cancel   context.CancelFunc
	progress ingest.Progress

	report ingest.Report
	built  candidate.BuildResult
	added  int
	err    error
}

func NewRecognizeModel(deps Deps, session *batch.Session) RecognizeModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = recognition.Extensions()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(12)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return RecognizeModel{
		deps:       deps,
		session:    session,
		filePicker: fp,
		spinner:    s,
	}
}

func (m RecognizeModel) Title() string { return "Recognize receipts and voice notes" }

func (m RecognizeModel) ShortHelp() string {
	switch m.state {
	case recognizeStateRunning:
		return "Esc: stop after the current file"
	case recognizeStateResult:
		return "Esc: back to menu"
	}

	return "Enter: add file | Tab: recognize | Backspace: drop last | Esc: back"
}

func (m RecognizeModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m RecognizeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.progress = ingest.Progress(msg)
		return m, waitFor(m.events)

	case recognizeDoneMsg:
		m.state = recognizeStateResult
		m.cancel = nil
		m.report = msg.report
		m.built = msg.built
		m.err = msg.err

		if msg.err == nil {
			if err := m.session.Add(msg.built.Candidates...); err != nil {
				m.err = err
			} else {
				m.added = len(msg.built.Candidates)
			}
		}

		return m, nil

	case spinner.TickMsg:
		if m.state != recognizeStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case recognizeStateRunning:
			if msg.Type == tea.KeyEsc && m.cancel != nil {
				m.cancel()
			}

			return m, nil
		case recognizeStateResult:
			if msg.Type == tea.KeyEsc {
				return m, Back
			}

			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			if len(m.files) == 0 {
				return m, nil
			}

			return m.start()
		case tea.KeyBackspace:
			if len(m.files) > 0 {
				m.files = m.files[:len(m.files)-1]
			}

			return m, nil
		}
	}

	if m.state != recognizeStatePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect && !slices.Contains(m.files, path) {
		m.files = append(m.files, path)
	}

	return m, cmd
}

func (m RecognizeModel) start() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, 1)

	m.state = recognizeStateRunning
	m.cancel = cancel
	m.events = events
	m.progress = ingest.Progress{Total: len(m.files)}

	go m.run(ctx, slices.Clone(m.files), refOf(m.session), events)

	return m, tea.Batch(m.spinner.Tick, waitFor(events))
}

// run loads the files, recognizes them in order and builds candidates,
// reporting progress on events. It closes events when done.
func (m RecognizeModel) run(ctx context.Context, paths []string, ref batchRef, events chan<- tea.Msg) {
	defer close(events)

	var (
		files    []recognition.File
		failures []ingest.Failure
	)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			failures = append(failures, ingest.Failure{Name: filepath.Base(p), Err: err})
			continue
		}

		f, err := recognition.NewFile(p, data)
		if err != nil {
			failures = append(failures, ingest.Failure{Name: filepath.Base(p), Err: err})
			continue
		}

		files = append(files, f)
	}

	hints, err := m.hints(ctx, ref.user)
	if err != nil {
		events <- recognizeDoneMsg{err: err}
		return
	}

	report, err := m.deps.Ingest.Run(ctx, files, hints, func(p ingest.Progress) {
		events <- progressMsg(p)
	})
	report.Failures = append(failures, report.Failures...)

	if err != nil && len(report.Rows) == 0 {
		events <- recognizeDoneMsg{report: report, err: err}
		return
	}

	buildCtx, cancel := ReqCtx()
	defer cancel()

	built, err := m.deps.build(buildCtx, report.Rows, ref)
	events <- recognizeDoneMsg{report: report, built: built, err: err}
}

func (m RecognizeModel) hints(ctx context.Context, user string) (recognition.Hints, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	tax, err := m.deps.Client.Taxonomy(ctx)
	if err != nil {
		return recognition.Hints{}, fmt.Errorf("loading categories: %w", err)
	}

	recent, err := m.deps.Client.RecentTransactions(ctx, time.Now().Add(-recentWindow))
	if err != nil {
		return recognition.Hints{}, fmt.Errorf("loading recent transactions: %w", err)
	}

	return recognition.Hints{
		Categories:         tax.Categories,
		SubCategories:      tax.SubCategories,
		RecentTransactions: recent,
		CurrentUserID:      user,
	}, nil
}

func (m RecognizeModel) View() string {
	switch m.state {
	case recognizeStateRunning:
		name := m.progress.Name
		if name == "" {
			name = "preparing"
		}

		return page.Render(fmt.Sprintf("%s Recognizing %d/%d: %s\n\n%s",
			m.spinner.View(), m.progress.Current, m.progress.Total, name, mutedStyle.Render(m.ShortHelp())))

	case recognizeStateResult:
		return page.Render(m.viewResult())
	}

	var b strings.Builder

	b.WriteString(m.Title() + "\n\n")

	if len(m.files) == 0 {
		b.WriteString(mutedStyle.Render("No files queued.") + "\n")
	}

	for i, f := range m.files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, filepath.Base(f))
	}

	b.WriteString("\n" + m.filePicker.View() + "\n\n" + mutedStyle.Render(m.ShortHelp()))

	return page.Render(b.String())
}

func (m RecognizeModel) viewResult() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	} else {
		b.WriteString(okStyle.Render(fmt.Sprintf("Added %d candidates to the batch.", m.added)) + "\n")
	}

	if d := FormatDropped(m.built.Dropped); d != "" {
		b.WriteString(d + "\n")
	}

	for _, f := range m.report.Failures {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed %s: %v", f.Name, f.Err)) + "\n")
	}

	if len(m.report.Empty) > 0 {
		b.WriteString(mutedStyle.Render("Nothing found in: "+strings.Join(m.report.Empty, ", ")) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render(m.ShortHelp()))

	return b.String()
}

type progressMsg ingest.Progress

type recognizeDoneMsg struct {
	report ingest.Report
	built  candidate.BuildResult
	err    error
}

func waitFor(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}

		return msg
	}
}
