package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/hearthledger/hearth/cmd/tui/internal/view"
	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/client"
	"github.com/hearthledger/hearth/internal/config"
	"github.com/hearthledger/hearth/internal/handle"
	"github.com/hearthledger/hearth/internal/importer"
	"github.com/hearthledger/hearth/internal/ingest"
	"github.com/hearthledger/hearth/internal/recognition/remote"
)

type model struct {
	deps    view.Deps
	user    string
	session *batch.Session

	currentView View

	recognizeView view.RecognizeModel
	importView    view.ImportModel
	reviewView    view.ReviewModel
	rollbackView  view.RollbackModel
}

type View int

const (
	ViewMenu      View = 0
	ViewRecognize View = 1
	ViewImport    View = 2
	ViewReview    View = 3
	ViewRollback  View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := fileLogger(filepath.Join(filepath.Dir(cfg.Client.HandlePath), "tui.log"))
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	backend := client.New(cfg.Client.BackendURL, cfg.Client.Token, nil)
	recognizer := remote.New(cfg.Client.BackendURL, cfg.Client.Token, nil)

	deps := view.Deps{
		Client:     backend,
		Importer:   batch.NewImporter(backend, handle.NewFileStore(cfg.Client.HandlePath), logger),
		Ingest:     ingest.NewService(recognizer, ingest.Queue{Delay: cfg.Import.ItemDelay}, logger),
		Sources:    importer.NewService(),
		YearPolicy: cfg.YearPolicy(),
	}

	return model{
		deps:        deps,
		user:        cfg.Client.UserID,
		currentView: ViewMenu,
	}
}

// fileLogger keeps log output off the terminal the program draws on.
func fileLogger(path string) (*slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(f, nil)), nil
}

// openSession returns the batch being assembled, starting a new one once the
// previous batch has been submitted or rolled back.
func (m *model) openSession() *batch.Session {
	if m.session == nil || !m.session.Open() {
		m.session = batch.NewSession(time.Now().UnixMilli(), m.user)
	}

	return m.session
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRecognize
				m.recognizeView = view.NewRecognizeModel(m.deps, m.openSession())

				return m, m.recognizeView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.deps, m.openSession())

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.deps, m.session)

				return m, m.reviewView.Init()
			case "4":
				m.currentView = ViewRollback
				m.rollbackView = view.NewRollbackModel(m.deps)

				return m, m.rollbackView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewRecognize:
		var newModel tea.Model
		newModel, cmd = m.recognizeView.Update(msg)
		m.recognizeView = newModel.(view.RecognizeModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewRollback:
		var newModel tea.Model
		newModel, cmd = m.rollbackView.Update(msg)
		m.rollbackView = newModel.(view.RollbackModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Hearth\n\n" +
				m.batchSummary() + "\n\n" +
				"1. Recognize receipts and voice notes\n" +
				"2. Import text, JSON or bank CSV\n" +
				"3. Review and submit batch\n" +
				"4. Roll back last import\n\n" +
				"q. Quit",
		)
	case ViewRecognize:
		return m.recognizeView.View()
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewRollback:
		return m.rollbackView.View()
	}

	return "Unknown View"
}

func (m model) batchSummary() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if m.session == nil {
		return muted.Render("No batch in progress.")
	}

	switch m.session.State() {
	case batch.StateSubmitted:
		return muted.Render(fmt.Sprintf("Last batch submitted as import %d.", m.session.ImportTimestamp()))
	case batch.StateRolledBack:
		return muted.Render("Last batch was rolled back.")
	}

	return muted.Render(fmt.Sprintf("Batch: %d candidates, %d selected.",
		len(m.session.Candidates()), len(m.session.Selected())))
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
