package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/gate"
	"github.com/matzehuels/coursemap/pkg/status"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// planKeys maps keys to target statuses.
var planKeys = map[string]status.Status{
	"i": status.InProgress,
	"p": status.Passed,
	"f": status.Failed,
	"n": status.Unset,
}

// =============================================================================
// PlanModel - Interactive status planning
// =============================================================================

// statusSetter applies one status change and returns the updated credits.
type statusSetter func(ctx context.Context, courseID int, to status.Status) (gate.Decision, credits.Summary, error)

// transitionMsg carries the outcome of a status change back to the model.
type transitionMsg struct {
	decision gate.Decision
	summary  credits.Summary
	err      error
}

// PlanModel is the bubbletea model of the plan command. Status changes are
// applied through the prerequisite gate; rejected changes leave the model
// unchanged and list the unmet prerequisites.
type PlanModel struct {
	Courses  []catalog.Course
	Statuses status.Map
	Summary  credits.Summary
	Cursor   int
	Height   int
	Offset   int
	Message  string
	Pending  bool

	ctx context.Context
	set statusSetter
}

// NewPlanModel creates a plan model over courses in layout order.
func NewPlanModel(ctx context.Context, courses []catalog.Course, statuses status.Map, summary credits.Summary, set statusSetter) PlanModel {
	if statuses == nil {
		statuses = status.Map{}
	}
	return PlanModel{
		Courses:  courses,
		Statuses: statuses,
		Summary:  summary,
		Height:   15,
		ctx:      ctx,
		set:      set,
	}
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Courses)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
		if to, ok := planKeys[key]; ok && !m.Pending && len(m.Courses) > 0 {
			m.Pending = true
			return m, m.apply(m.Courses[m.Cursor].ID, to)
		}
	case transitionMsg:
		m.Pending = false
		m.Message = m.describe(msg)
		if msg.err == nil {
			m.Statuses[msg.decision.Course] = msg.decision.To
			if msg.decision.To == status.Unset {
				delete(m.Statuses, msg.decision.Course)
			}
			if msg.summary != (credits.Summary{}) {
				m.Summary = msg.summary
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

// apply runs a status change outside the update loop.
func (m PlanModel) apply(courseID int, to status.Status) tea.Cmd {
	return func() tea.Msg {
		d, sum, err := m.set(m.ctx, courseID, to)
		return transitionMsg{decision: d, summary: sum, err: err}
	}
}

func (m PlanModel) describe(msg transitionMsg) string {
	d := msg.decision
	switch {
	case errors.Is(msg.err, errors.ErrCodePrerequisitesUnmet):
		ids := make([]string, len(d.Violations))
		for i, v := range d.Violations {
			ids[i] = "#" + strconv.Itoa(v.PrereqID)
		}
		return styleIconError.Render(iconBlocked) + fmt.Sprintf(" #%d needs %s passed first", d.Course, strings.Join(ids, ", "))
	case msg.err != nil:
		return styleIconError.Render(iconError) + " " + errors.UserMessage(msg.err)
	}
	return styleIconSuccess.Render(iconSuccess) + fmt.Sprintf(" #%d %s %s %s", d.Course, d.From.Code(), iconArrow, d.To.Code())
}

func (m PlanModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Plan Courses"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  i ing  p pass  f fail  n none  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Courses))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.Courses[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, strconv.Itoa(c.ID), c.Name, c.Level.Text(), strconv.Itoa(c.Credits), m.Statuses.Get(c.ID).Code()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Course", "Level", "Cr", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Courses) {
				return lipgloss.NewStyle()
			}
			if col == 5 {
				return statusStyles[m.Statuses.Get(m.Courses[idx].ID)]
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  ", m.Cursor+1, len(m.Courses))))
	b.WriteString(fmt.Sprintf("total %d/%d  compulsory %d/%d  elective %d/%d  general %d/%d",
		m.Summary.Total.Current, m.Summary.Total.Required,
		m.Summary.Compulsory.Current, m.Summary.Compulsory.Required,
		m.Summary.Elective.Current, m.Summary.Elective.Required,
		m.Summary.General.Current, m.Summary.General.Required))
	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(m.Message)
	}

	return b.String()
}
