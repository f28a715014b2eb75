package views

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcolaco/placetap/internal/config"
	"github.com/lcolaco/placetap/internal/engine/pipeline"
	"github.com/lcolaco/placetap/internal/engine/storage"
	"github.com/lcolaco/placetap/internal/export"
	"github.com/lcolaco/placetap/internal/model"
	"github.com/lcolaco/placetap/internal/tui/styles"
)

// sharedState holds data shared between the pipeline goroutine and TUI.
// Lives behind a pointer so it survives bubbletea's value copies.
type sharedState struct {
	mu     sync.Mutex
	stats  *pipeline.Stats
	cancel context.CancelFunc
}

func (s *sharedState) getCancel() context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel
}

func (s *sharedState) getStats() *pipeline.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ProgressModel manages the running-scan view.
type ProgressModel struct {
	params      model.SearchParams
	progress    progress.Model
	startTime   time.Time
	done        bool
	confirmQuit bool
	err         error
	count       int
	dbPath      string
	csvPath     string
	logPath     string
	width       int
	height      int
	shared      *sharedState
}

type progressTickMsg time.Time

type scanCompleteMsg struct {
	Err   error
	Count int
}

func NewProgressModel(msg StartScanMsg) ProgressModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)

	m := ProgressModel{
		progress:  p,
		startTime: time.Now(),
		shared:    &sharedState{},
	}

	m.params.Location = msg.Location
	m.params.Category = msg.Category
	m.params.HarvestEmails = msg.Emails
	// Blank or non-numeric radius silently falls back to the default.
	m.params.Radius, _ = strconv.Atoi(msg.Radius)
	m.params.Normalize()

	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("placetap_%s", ts)
	outDir := msg.Output
	m.dbPath = filepath.Join(outDir, baseName+".db")
	m.logPath = filepath.Join(outDir, baseName+".log")
	m.csvPath = filepath.Join(outDir, export.DefaultFilename)
	m.params.DBPath = m.dbPath

	return m
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(
		m.startScan(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m ProgressModel) startScan() tea.Cmd {
	shared := m.shared
	params := m.params
	dbPath := m.dbPath
	csvPath := m.csvPath
	logPath := m.logPath

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			cancel()
			return scanCompleteMsg{Err: fmt.Errorf("creating output dir: %w", err)}
		}

		key, err := config.LoadAPIKey()
		if err != nil {
			cancel()
			return scanCompleteMsg{Err: err}
		}
		params.APIKey = key

		store, err := storage.NewStore(dbPath)
		if err != nil {
			cancel()
			return scanCompleteMsg{Err: err}
		}

		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			store.Close()
			cancel()
			return scanCompleteMsg{Err: err}
		}
		logger := log.New(logFile, "", log.LstdFlags)

		stats := &pipeline.Stats{}

		shared.mu.Lock()
		shared.stats = stats
		shared.cancel = cancel
		shared.mu.Unlock()

		businesses, runErr := pipeline.Run(ctx, params, store, logger, &pipeline.RunOptions{
			Stats: stats,
		})

		if runErr == nil && len(businesses) > 0 {
			if werr := export.WriteCSV(businesses, csvPath, params.HarvestEmails); werr != nil {
				runErr = werr
			}
		}

		logFile.Close()
		store.Close()

		return scanCompleteMsg{Err: runErr, Count: len(businesses)}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if cancel := m.shared.getCancel(); cancel != nil {
				cancel()
			}
			return m, tea.Quit
		case "esc":
			if m.done {
				return m, m.navigateAfterDone()
			}
			if m.confirmQuit {
				if cancel := m.shared.getCancel(); cancel != nil {
					cancel()
				}
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			m.confirmQuit = true
			return m, nil
		case "enter":
			if m.done {
				return m, m.navigateAfterDone()
			}
			if m.confirmQuit {
				m.confirmQuit = false
				return m, nil
			}
		}
		if m.confirmQuit {
			m.confirmQuit = false
		}
	case progressTickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case scanCompleteMsg:
		m.done = true
		m.err = msg.Err
		m.count = msg.Count
		return m, nil
	}

	var cmd tea.Cmd
	var pModel tea.Model
	pModel, cmd = m.progress.Update(msg)
	m.progress = pModel.(progress.Model)
	return m, cmd
}

// navigateAfterDone opens the results when there is anything to show,
// otherwise goes home.
func (m ProgressModel) navigateAfterDone() tea.Cmd {
	if m.err == nil && m.count > 0 {
		dbPath := m.dbPath
		return func() tea.Msg {
			return NavigateToResults{DBPath: dbPath}
		}
	}
	return func() tea.Msg { return NavigateToHome{} }
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Searching: %s", m.params.Query())))
	b.WriteString("\n\n")

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(34).
		Render(m.renderStats())
	b.WriteString(statsBox)
	b.WriteString("\n\n")

	stats := m.shared.getStats()
	var pct float64
	if stats != nil && stats.HitsFound.Load() > 0 {
		pct = float64(stats.Processed.Load()) / float64(stats.HitsFound.Load())
	}
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil && !errors.Is(m.err, context.Canceled):
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter/esc back"))
	case m.done && m.count == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Bold(true).
			Render("No businesses found."))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter/esc back"))
	case m.done:
		b.WriteString(styles.SuccessText.Render(fmt.Sprintf("Found %d businesses.", m.count)))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf("CSV: %s", m.csvPath)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter view results • esc back"))
	case m.confirmQuit:
		b.WriteString(styles.ErrorText.Render("Press ESC again to stop the search and go back"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm stop • any key continue"))
	default:
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
	}

	return b.String()
}

func (m ProgressModel) renderStats() string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime).Truncate(time.Second)

	var found, processed, detailsErrs, emails int64
	if stats := m.shared.getStats(); stats != nil {
		found = stats.HitsFound.Load()
		processed = stats.Processed.Load()
		detailsErrs = stats.DetailsErrors.Load()
		emails = stats.EmailsFound.Load()
	}

	statLabel := lipgloss.NewStyle().Foreground(styles.Muted).Width(14)
	statVal := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)

	row := func(label, value string) {
		sb.WriteString(statLabel.Render(label))
		sb.WriteString(statVal.Render(value))
		sb.WriteString("\n")
	}

	row("Hits:", fmt.Sprintf("%d", found))
	row("Enriched:", fmt.Sprintf("%d", processed))

	errStyle := statVal
	if detailsErrs > 0 {
		errStyle = lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
	}
	sb.WriteString(statLabel.Render("Fallbacks:"))
	sb.WriteString(errStyle.Render(fmt.Sprintf("%d", detailsErrs)))
	sb.WriteString("\n")

	if m.params.HarvestEmails {
		row("Emails:", fmt.Sprintf("%d", emails))
	}
	row("Elapsed:", elapsed.String())

	return sb.String()
}

// NavigateToResults signals transition to the results explorer.
type NavigateToResults struct {
	DBPath string
}
