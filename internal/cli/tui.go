package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/orchestree/orchestree/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listGroupStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	listClusterStyle  = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// TreeModel - Interactive resource tree browser
// =============================================================================

// treeRow is one visible line of the resource tree.
type treeRow struct {
	node  *diagram.Node
	depth int
}

// TreeModel is the bubbletea model for browsing a built diagram. Groups
// and clusters can be folded; tab switches to the relation list.
type TreeModel struct {
	Diagram   *diagram.Diagram
	Cursor    int
	Height    int
	Offset    int
	Relations bool // relation view active

	collapsed map[*diagram.Node]bool
	rows      []treeRow
}

// NewTreeModel creates a tree model with every container expanded.
func NewTreeModel(d *diagram.Diagram) TreeModel {
	m := TreeModel{
		Diagram:   d,
		Height:    15,
		collapsed: make(map[*diagram.Node]bool),
	}
	m.rows = m.visibleRows()
	return m
}

func (m TreeModel) visibleRows() []treeRow {
	var rows []treeRow
	m.Diagram.Walk(func(n *diagram.Node, depth int) bool {
		rows = append(rows, treeRow{node: n, depth: depth})
		return !m.collapsed[n]
	})
	return rows
}

func (m TreeModel) length() int {
	if m.Relations {
		return len(m.Diagram.Relations)
	}
	return len(m.rows)
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.Relations = !m.Relations
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.length()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if m.Relations || m.Cursor >= len(m.rows) {
				return m, nil
			}
			n := m.rows[m.Cursor].node
			if n.IsLeaf() {
				return m, nil
			}
			m.collapsed[n] = !m.collapsed[n]
			m.rows = m.visibleRows()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	title := m.Diagram.Name
	if title == "" {
		title = "Diagram"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  tab resources/relations  q quit"))
	b.WriteString("\n\n")

	if m.Relations {
		b.WriteString(m.relationsView())
	} else {
		b.WriteString(m.treeView())
	}

	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, m.length()), m.length())))
	return b.String()
}

func (m TreeModel) treeView() string {
	var b strings.Builder
	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(treeLine(m.rows[i], m.collapsed[m.rows[i].node], i == m.Cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func treeLine(r treeRow, folded, current bool) string {
	cursor := "  "
	if current {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", r.depth)
	n := r.node

	var marker, detail string
	style := listNormalStyle
	switch n.Kind {
	case diagram.KindLeaf:
		marker = "•"
		icon := n.Icon
		if n.IconPath != "" {
			icon += " " + iconArrow + " " + filepath.Base(n.IconPath)
		}
		detail = icon
	case diagram.KindGroup:
		marker, style = "▾", listGroupStyle
		detail = fmt.Sprintf("group, %d", len(n.Children))
	case diagram.KindCluster:
		marker, style = "▾", listClusterStyle
		detail = fmt.Sprintf("cluster, %d", len(n.Children))
	}
	if folded {
		marker = "▸"
	}
	if current {
		style = listSelectedStyle
	}

	label := n.ID
	if n.Label != "" && n.Label != n.ID {
		label += " " + listDimStyle.Render("("+n.Label+")")
	}
	return cursor + indent + style.Render(marker+" ") + style.Render(label) + "  " + listDimStyle.Render(detail)
}

func (m TreeModel) relationsView() string {
	rels := m.Diagram.Relations
	end := min(m.Offset+m.Height, len(rels))

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := rels[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.From, arrowFor(r.Direction), r.To, r.Label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "From", "", "To", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 2 || col == 4 {
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func arrowFor(d diagram.Direction) string {
	switch d {
	case diagram.Incoming:
		return "←"
	case diagram.Bidirectional:
		return "↔"
	case diagram.Undirected:
		return "—"
	default:
		return "→"
	}
}
