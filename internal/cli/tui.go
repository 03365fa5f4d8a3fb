package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	detailNameStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// =============================================================================
// InspectModel - Interactive diagram browser
// =============================================================================

// InspectModel is the bubbletea model for browsing the boxes of a diagram.
// The selected box shows its hover description and the arrows that start or
// end at it.
type InspectModel struct {
	Diagram *layout.Diagram
	Cursor  int
	Height  int
	Offset  int
}

// NewInspectModel creates a new inspector over d.
func NewInspectModel(d *layout.Diagram) InspectModel {
	return InspectModel{Diagram: d, Height: 12}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Diagram.Boxes)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
	}
	m.Offset = scrollOffset(m.Cursor, m.Offset, m.Height)
	return m, nil
}

// scrollOffset keeps cursor inside the visible window [offset, offset+height).
func scrollOffset(cursor, offset, height int) int {
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+height {
		return cursor - height + 1
	}
	return offset
}

// Selected returns the box under the cursor.
func (m InspectModel) Selected() (*layout.Box, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Diagram.Boxes) {
		return nil, false
	}
	return m.Diagram.Boxes[m.Cursor], true
}

func (m InspectModel) View() string {
	var b strings.Builder

	title := "Inspect"
	if m.Diagram.Name != "" {
		title += " " + m.Diagram.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Diagram.Boxes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		box := m.Diagram.Boxes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		out, in := boxArrows(m.Diagram, box.Name)
		rows = append(rows, []string{cursor, box.Name, box.Category, fmt.Sprint(len(out)), fmt.Sprint(len(in))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Component", "Category", "Out", "In").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col >= 3 {
				return StyleNumber
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Diagram.Boxes))))
	b.WriteString("\n\n")

	if box, ok := m.Selected(); ok {
		b.WriteString(detailBoxStyle.Render(boxDetail(m.Diagram, box)))
		b.WriteString("\n")
	}
	return b.String()
}

// boxDetail renders the description and relationships of one box.
func boxDetail(d *layout.Diagram, box *layout.Box) string {
	var b strings.Builder
	b.WriteString(detailNameStyle.Render(box.Name))
	b.WriteString("\n")
	desc := box.Description
	if desc == "" {
		desc = "(no description)"
	}
	b.WriteString(StyleValue.Render(desc))

	out, in := boxArrows(d, box.Name)
	for _, a := range out {
		b.WriteString("\n")
		b.WriteString(arrowLine(iconArrow, a.Target, a))
	}
	for _, a := range in {
		b.WriteString("\n")
		b.WriteString(arrowLine("←", a.Origin, a))
	}
	return b.String()
}

func arrowLine(icon, other string, a *layout.Arrow) string {
	line := fmt.Sprintf("%s %s %s", icon, styleKind.Render(a.Kind.String()), StyleHighlight.Render(other))
	if a.Info != "" {
		line += " " + StyleDim.Render(a.Info)
	}
	return line
}

// boxArrows splits the arrows touching name into outgoing and incoming ones.
// A self-loop appears in both.
func boxArrows(d *layout.Diagram, name string) (out, in []*layout.Arrow) {
	for _, a := range d.Arrows {
		if a.Origin == name {
			out = append(out, a)
		}
		if a.Target == name {
			in = append(in, a)
		}
	}
	return out, in
}
