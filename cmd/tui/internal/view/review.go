package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/duplicate"
)

type reviewState int

const (
	reviewStateList reviewState = iota
	reviewStateSubmitting
	reviewStateDecision
	reviewStateDone
)

// ReviewModel lets the operator pick which candidates to submit and answers
// duplicate warnings.
type ReviewModel struct {
	CommonModel
	deps    Deps
	session *batch.Session

	state   reviewState
	list    list.Model
	form    *huh.Form
	spinner spinner.Model

	result  *batch.SubmitResult
	removed int64
	undone  bool
	status  string
	err     error
}

func NewReviewModel(deps Deps, session *batch.Session) ReviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	m := ReviewModel{
		deps:    deps,
		session: session,
		spinner: s,
	}

	if session != nil && session.State() == batch.StateSubmitted {
		m.state = reviewStateDone
		m.result = &batch.SubmitResult{Submitted: true, ImportTimestamp: session.ImportTimestamp()}
	}

	m.list = m.newList()

	return m
}

func (m ReviewModel) newList() list.Model {
	var items []list.Item

	if m.session != nil {
		cs := m.session.Candidates()
		items = make([]list.Item, len(cs))

		for i, c := range cs {
			items[i] = candidateItem{c: c}
		}
	}

	l := list.New(items, candidateDelegate{session: m.session}, 100, 20)
	l.Title = "Batch"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m ReviewModel) Title() string { return "Review batch" }

func (m ReviewModel) ShortHelp() string {
	switch m.state {
	case reviewStateDone:
		return "u: undo this import | Esc: back"
	case reviewStateDecision:
		return "Enter: confirm | Esc: back to the list"
	}

	return "Space: toggle | a: all | n: none | x: remove | Enter: submit | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		return m.handleResult(msg)

	case undoResultMsg:
		m.state = reviewStateDone
		m.err = msg.err

		if msg.err == nil {
			m.undone = true
			m.removed = msg.removed
		}

		return m, nil

	case spinner.TickMsg:
		if m.state != reviewStateSubmitting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case reviewStateList:
		return m.updateList(msg)
	case reviewStateDecision:
		return m.updateDecision(msg)
	case reviewStateDone:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "u":
				if m.undone || m.session == nil {
					return m, nil
				}

				m.state = reviewStateSubmitting
				m.status = "Rolling back..."

				return m, tea.Batch(m.spinner.Tick, m.undoCmd())
			}
		}
	}

	return m, nil
}

func (m ReviewModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)

		return m, cmd
	}

	if keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.session == nil || len(m.session.Candidates()) == 0 {
		return m, nil
	}

	item, _ := m.list.SelectedItem().(candidateItem)

	switch keyMsg.String() {
	case " ":
		if _, err := m.session.Toggle(item.c.ID); err != nil {
			m.status = err.Error()
		}

		return m, nil
	case "a":
		for _, c := range m.session.Candidates() {
			_ = m.session.Select(c.ID)
		}

		return m, nil
	case "n":
		for _, c := range m.session.Candidates() {
			_ = m.session.Deselect(c.ID)
		}

		return m, nil
	case "x":
		if err := m.session.Remove(item.c.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}

		idx := m.list.Index()
		m.list = m.newList()

		if n := len(m.list.Items()); n > 0 {
			m.list.Select(min(idx, n-1))
		}

		return m, nil
	case "enter":
		m.state = reviewStateSubmitting
		m.status = "Checking for duplicates..."
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.submitCmd())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ReviewModel) updateDecision(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reviewStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	decision, _ := m.form.Get("decision").(batch.Decision)
	m.form = nil

	if decision == batch.DecisionCancel {
		m.state = reviewStateList
		m.status = "Submission cancelled. Adjust the selection and submit again."

		return m, nil
	}

	m.state = reviewStateSubmitting
	m.status = "Submitting..."

	return m, tea.Batch(m.spinner.Tick, m.resolveCmd(decision))
}

func (m ReviewModel) handleResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = reviewStateList
		m.err = msg.err
		m.status = ""

		if errors.Is(msg.err, batch.ErrAllDuplicates) {
			m.err = nil
			m.status = "Every selected row is a duplicate. Nothing was submitted."
		}

		return m, nil
	}

	if msg.result.Submitted {
		m.state = reviewStateDone
		m.result = msg.result

		return m, nil
	}

	m.state = reviewStateDecision
	m.result = msg.result
	m.form = buildDecisionForm(msg.result.Duplicates, m.session)

	return m, m.form.Init()
}

func buildDecisionForm(pairs []duplicate.Pair, s *batch.Session) *huh.Form {
	newSide := duplicate.NewSideIDs(pairs)
	remaining := len(s.Selected()) - len(newSide)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[batch.Decision]().
				Key("decision").
				Title(fmt.Sprintf("%d possible duplicates found", len(pairs))).
				Description(describePairs(pairs, s)).
				Options(
					huh.NewOption(fmt.Sprintf("Skip duplicates, submit the other %d", remaining), batch.DecisionSkip),
					huh.NewOption("Submit everything anyway", batch.DecisionForce),
					huh.NewOption("Cancel and edit the batch", batch.DecisionCancel),
				),
		),
	).WithWidth(100).WithShowHelp(false)
}

func describePairs(pairs []duplicate.Pair, s *batch.Session) string {
	ids := make(map[string]struct{})
	for _, c := range s.Candidates() {
		ids[c.ID] = struct{}{}
	}

	var b strings.Builder

	for _, p := range pairs {
		where := "already saved"
		if _, sibling := ids[p.Other.ID]; sibling {
			where = "also in this batch"
		}

		fmt.Fprintf(&b, "%s %s %s  ~  %s %s (%s, %d%%)\n",
			FormatDate(p.New.Date), FormatAmount(p.New.Amount), p.New.Description,
			FormatAmount(p.Other.Amount), p.Other.Description, where, p.Similarity)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m ReviewModel) View() string {
	switch m.state {
	case reviewStateSubmitting:
		return page.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case reviewStateDecision:
		return page.Render(m.form.View() + "\n\n" + mutedStyle.Render(m.ShortHelp()))
	case reviewStateDone:
		return page.Render(m.viewDone())
	}

	if m.session == nil || len(m.session.Candidates()) == 0 {
		return page.Render("The batch is empty. Recognize or import something first.\n\n(Esc to go back)")
	}

	header := fmt.Sprintf("%d of %d selected", len(m.session.Selected()), len(m.session.Candidates()))

	footer := mutedStyle.Render(m.ShortHelp())
	if m.err != nil {
		footer = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + footer
	} else if m.status != "" {
		footer = accentStyle.Render(m.status) + "\n" + footer
	}

	return page.Render(header + "\n\n" + m.list.View() + "\n" + footer)
}

func (m ReviewModel) viewDone() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + mutedStyle.Render(m.ShortHelp())
	}

	if m.undone {
		return okStyle.Render(fmt.Sprintf("Import %d rolled back, %d transactions removed.", m.result.ImportTimestamp, m.removed)) +
			"\n\n(Esc to go back)"
	}

	s := okStyle.Render(fmt.Sprintf("Submitted %d transactions.", m.result.Count))
	if m.result.Skipped > 0 {
		s += fmt.Sprintf("\nSkipped %d duplicates.", m.result.Skipped)
	}

	s += fmt.Sprintf("\nImport handle: %d", m.result.ImportTimestamp)

	if m.result.HandleErr != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf(
			"Warning: the import handle was not saved (%v). Press u now to roll back; it cannot be undone from the menu later.",
			m.result.HandleErr))
	}

	return s + "\n\n" + mutedStyle.Render(m.ShortHelp())
}

type submitResultMsg struct {
	result *batch.SubmitResult
	err    error
}

type undoResultMsg struct {
	removed int64
	err     error
}

func (m ReviewModel) submitCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		res, err := m.deps.Importer.Submit(ctx, m.session)

		return submitResultMsg{result: res, err: err}
	}
}

func (m ReviewModel) resolveCmd(d batch.Decision) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		res, err := m.deps.Importer.Resolve(ctx, m.session, d)

		return submitResultMsg{result: res, err: err}
	}
}

func (m ReviewModel) undoCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		removed, err := m.deps.Importer.RollbackSession(ctx, m.session)

		return undoResultMsg{removed: removed, err: err}
	}
}

// Candidate list item

type candidateItem struct {
	c candidate.Candidate
}

func (i candidateItem) Title() string       { return i.c.Description }
func (i candidateItem) Description() string { return "" }
func (i candidateItem) FilterValue() string { return i.c.Description }

// Candidate list delegate

type candidateDelegate struct {
	session *batch.Session
}

func (d candidateDelegate) Height() int                             { return 1 }
func (d candidateDelegate) Spacing() int                            { return 0 }
func (d candidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(candidateItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.session.IsSelected(item.c.ID) {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	cat := FormatCategory(item.c)
	if item.c.NeedsCategoryReview {
		cat = errorStyle.Render(cat)
	}

	fmt.Fprintf(w, "%s%s %s  %10s  %-7s  %-30s  %s",
		cursor, checkbox,
		FormatDate(item.c.Date),
		FormatAmount(item.c.Amount),
		item.c.Type,
		item.c.Description,
		cat,
	)
}
