package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcolaco/placetap/internal/model"
	"github.com/lcolaco/placetap/internal/tui/styles"
)

// Field indices. fieldEmails is a virtual toggle, not a textinput.
const (
	fieldLocation = iota
	fieldCategory
	fieldRadius
	fieldEmails
	fieldOutput
	fieldCount
)

type SearchModel struct {
	inputs  []textinput.Model
	emails  bool
	focused int
	err     string
}

func NewSearchModel() SearchModel {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldLocation] = newInput("Enter location", 40)
	inputs[fieldCategory] = newInput("Enter category", 40)
	inputs[fieldRadius] = newInput(fmt.Sprintf("%d", model.DefaultRadius), 10)
	inputs[fieldEmails] = textinput.New() // placeholder, never used
	inputs[fieldOutput] = newInput(".", 50)

	inputs[fieldLocation].Focus()

	return SearchModel{
		inputs:  inputs,
		focused: fieldLocation,
	}
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	if width > 0 {
		ti.Width = width
	}
	return ti
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }

		case "up", "shift+tab":
			m.err = ""
			return m, m.focusPrev()

		case "down", "tab":
			m.err = ""
			return m, m.focusNext()

		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}

		case "left", "right", " ":
			if m.focused == fieldEmails {
				m.emails = !m.emails
				return m, nil
			}
		}
	}

	// Update focused textinput (skip the toggle)
	var cmd tea.Cmd
	if m.focused != fieldEmails && m.focused >= 0 && m.focused < fieldCount {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}

	return m, cmd
}

func (m *SearchModel) focusNext() tea.Cmd {
	if m.focused != fieldEmails {
		m.inputs[m.focused].Blur()
	}
	m.focused++
	if m.focused >= fieldCount {
		m.focused = fieldLocation
	}
	if m.focused == fieldEmails {
		return nil
	}
	m.inputs[m.focused].Focus()
	return textinput.Blink
}

func (m *SearchModel) focusPrev() tea.Cmd {
	if m.focused != fieldEmails {
		m.inputs[m.focused].Blur()
	}
	m.focused--
	if m.focused < 0 {
		m.focused = fieldOutput
	}
	if m.focused == fieldEmails {
		return nil
	}
	m.inputs[m.focused].Focus()
	return textinput.Blink
}

func (m *SearchModel) submit() tea.Cmd {
	location := strings.TrimSpace(m.inputs[fieldLocation].Value())
	if location == "" {
		m.err = "Location is required"
		return nil
	}
	category := strings.TrimSpace(m.inputs[fieldCategory].Value())
	if category == "" {
		m.err = "Category is required"
		return nil
	}
	output := strings.TrimSpace(m.inputs[fieldOutput].Value())
	if output == "" {
		output = "."
	}

	// Blank or non-numeric radius falls back to the default downstream.
	radius := strings.TrimSpace(m.inputs[fieldRadius].Value())

	emails := m.emails
	return func() tea.Msg {
		return StartScanMsg{
			Location: location,
			Category: category,
			Radius:   radius,
			Emails:   emails,
			Output:   output,
		}
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Search") + "\n\n")

	b.WriteString(m.renderField("Location:", fieldLocation))
	b.WriteString(m.renderField("Category:", fieldCategory))
	b.WriteString(m.renderField("Radius (m):", fieldRadius))
	if m.focused == fieldRadius {
		hint := lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("  Distance in meters, defaults to 5000")
		b.WriteString(hint + "\n")
	}

	b.WriteString(m.renderEmails())
	b.WriteString(m.renderField("Output:", fieldOutput))

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter start • tab next • esc back"))

	return styles.Border.Render(b.String())
}

func (m SearchModel) renderEmails() string {
	label := styles.Label.Render("Emails:")

	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	var onStr, offStr string
	if m.emails {
		onStr = active.Render("< Harvest >")
		offStr = inactive.Render("Skip")
	} else {
		onStr = inactive.Render("Harvest")
		offStr = active.Render("< Skip >")
	}

	line := fmt.Sprintf("%s %s   %s", label, offStr, onStr)

	if m.focused == fieldEmails {
		indicator := lipgloss.NewStyle().Foreground(styles.Secondary).Render(" ←→")
		line += indicator
	}

	return line + "\n"
}

func (m SearchModel) renderField(label string, idx int) string {
	l := styles.Label.Render(label)
	v := m.inputs[idx].View()
	return fmt.Sprintf("%s %s\n", l, v)
}

// StartScanMsg carries the validated form values to the progress view.
type StartScanMsg struct {
	Location string
	Category string
	Radius   string
	Emails   bool
	Output   string
}
