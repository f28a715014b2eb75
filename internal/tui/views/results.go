package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcolaco/placetap/internal/engine/storage"
	"github.com/lcolaco/placetap/internal/export"
	"github.com/lcolaco/placetap/internal/model"
	"github.com/lcolaco/placetap/internal/tui/styles"
)

// ResultsModel displays stored businesses with a filterable table and a
// detail card for the selected row.
type ResultsModel struct {
	dbPath     string
	businesses []model.Business
	filtered   []model.Business
	table      table.Model
	filter     textinput.Model
	filtering  bool
	width      int
	height     int
	err        error
	exportMsg  string
}

type dbLoadedMsg struct {
	Businesses []model.Business
	Err        error
}

func NewResultsModel(dbPath string) ResultsModel {
	filter := textinput.New()
	filter.Placeholder = "Type to filter..."
	filter.CharLimit = 50

	t := table.New(
		table.WithColumns(resultColumns()),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).Foreground(styles.Secondary).BorderBottom(true)
	ts.Selected = ts.Selected.Foreground(styles.Primary).Bold(true)
	t.SetStyles(ts)

	return ResultsModel{
		dbPath: dbPath,
		filter: filter,
		table:  t,
	}
}

func resultColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Phone", Width: 16},
		{Title: "Email", Width: 26},
		{Title: "Dist", Width: 7},
	}
}

func (m ResultsModel) Init() tea.Cmd {
	dbPath := m.dbPath
	return func() tea.Msg {
		businesses, err := storage.Load(dbPath)
		return dbLoadedMsg{Businesses: businesses, Err: err}
	}
}

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case dbLoadedMsg:
		m.err = msg.Err
		m.businesses = msg.Businesses
		m.applyFilter()
		return m, nil
	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		if m.filtering {
			switch key {
			case "esc":
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				return m, nil
			case "enter", "tab":
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch key {
		case "esc", "q":
			return m, func() tea.Msg { return NavigateToHome{} }
		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		case "e":
			m.exportCSV()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ResultsModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if q == "" {
		m.filtered = m.businesses
	} else {
		m.filtered = nil
		for _, b := range m.businesses {
			if strings.Contains(strings.ToLower(b.Name), q) ||
				strings.Contains(strings.ToLower(b.Address), q) {
				m.filtered = append(m.filtered, b)
			}
		}
	}

	rows := make([]table.Row, len(m.filtered))
	for i, b := range m.filtered {
		rows[i] = table.Row{b.Name, b.Phone, b.Email, formatDistance(b.DistanceM)}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(0)
	}
}

func (m *ResultsModel) exportCSV() {
	base := strings.TrimSuffix(m.dbPath, ".db")
	outPath := base + ".csv"

	includeEmail := false
	for _, b := range m.filtered {
		if b.Email != model.NoEmail {
			includeEmail = true
			break
		}
	}

	if err := export.WriteCSV(m.filtered, outPath, includeEmail); err != nil {
		if err == export.ErrNoData {
			m.exportMsg = "Nothing to export"
		} else {
			m.exportMsg = fmt.Sprintf("Export failed: %v", err)
		}
		return
	}
	m.exportMsg = fmt.Sprintf("Exported %d rows to %s", len(m.filtered), outPath)
}

func formatDistance(meters float64) string {
	switch {
	case meters <= 0:
		return "-"
	case meters < 1000:
		return fmt.Sprintf("%.0fm", meters)
	default:
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
}

func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Results: %s", filepath.Base(m.dbPath))))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	if len(m.businesses) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No businesses in this project."))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	counter := lipgloss.NewStyle().Foreground(styles.Muted).
		Render(fmt.Sprintf("%d of %d businesses", len(m.filtered), len(m.businesses)))
	b.WriteString(counter)
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(styles.Label.Render("Filter:"))
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderCard())

	if m.exportMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessText.Render(m.exportMsg))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ select • / filter • e export csv • esc back"))

	return styles.Border.Render(b.String())
}

// renderCard shows the full record for the selected row; the table alone
// truncates website and address.
func (m ResultsModel) renderCard() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return ""
	}
	b := m.filtered[idx]

	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(styles.Label.Render(label))
		sb.WriteString(styles.Value.Render(value))
		sb.WriteString("\n")
	}
	row("Address:", b.Address)
	row("Website:", b.Website)
	row("Query:", b.Query)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Render(strings.TrimRight(sb.String(), "\n"))
}
