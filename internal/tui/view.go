package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// boardTop is the first screen row of the column boxes: header plus one spacer line.
const boardTop = 2

// Board palette.
var (
	accentColor = lipgloss.Color("62")
	dragColor   = lipgloss.Color("212")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
)

// View renders the board screen.
func (m Model) View() tea.View {
	view := tea.NewView(m.render())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// render draws the full screen as a string.
func (m Model) render() string {
	helpStyle := lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))

	header := titleStyle.Render("kanboard")
	header += statusStyle.Render(fmt.Sprintf("  %d columns • %d tasks  [%s]", m.snap.ColumnCount(), m.snap.TaskCount(), m.modeLabel()))

	body := m.renderBoard()
	sections := []string{header, "", body}
	if line := m.statusLine(); line != "" {
		sections = append(sections, statusStyle.Render(line))
	}
	content := strings.Join(sections, "\n")

	footer := m.renderFooter(helpStyle)
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(footer)))
	}
	full := content + "\n" + footer

	height := lipgloss.Height(full)
	if m.height > 0 {
		height = m.height
	}
	switch {
	case m.mode == modeTaskInfo:
		full = overlayOnContent(full, m.renderTaskInfo(), m.width, height)
	case m.mode == modeActivityLog:
		full = overlayOnContent(full, m.renderActivityLog(), m.width, height)
	case m.drag.Dragging():
		x, y := m.previewOrigin()
		full = placeOnContent(full, m.renderDragPreview(), x, y, m.width, height)
	}
	return full
}

// modeLabel names the active interaction mode for the header.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeEditTask:
		return "edit task"
	case modeEditColumn:
		return "edit column"
	case modeTaskInfo:
		return "task info"
	case modeActivityLog:
		return "activity"
	}
	return m.drag.State.String()
}

// statusLine combines the drag summary and the last status message.
func (m Model) statusLine() string {
	parts := make([]string, 0, 2)
	switch m.drag.State {
	case app.DragTask:
		parts = append(parts, "dragging task "+displayContent(m.drag.Task.Content)+" • enter drop • esc cancel")
	case app.DragColumn:
		parts = append(parts, "dragging column "+displayTitle(m.drag.Column.Title)+" • enter drop • esc cancel")
	}
	if status := strings.TrimSpace(m.status); status != "" && status != "ready" {
		parts = append(parts, status)
	}
	return strings.Join(parts, " • ")
}

// renderFooter renders the inline editor or the help bar.
func (m Model) renderFooter(helpStyle lipgloss.Style) string {
	if m.mode == modeEditTask || m.mode == modeEditColumn {
		return lipgloss.NewStyle().
			BorderTop(true).
			BorderForeground(dimColor).
			Padding(0, 1).
			Width(max(0, m.width)).
			Render(m.input.View() + "\n" + helpStyle.Render("enter save • esc cancel"))
	}
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	return lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
}

// renderBoard joins every column box, or explains how to start.
func (m Model) renderBoard() string {
	boxes := m.columnBoxes()
	if len(boxes) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render(
			fmt.Sprintf("No columns yet. Press %s to add one.", m.keys.addColumn.Help().Key),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// columnBoxes renders one bordered box per column. Row 0 is the border, row 1 the title, and task
// k sits on row 2+k.
func (m Model) columnBoxes() []string {
	columns := m.snap.ColumnsInOrder()
	if len(columns) == 0 {
		return nil
	}
	colWidth := m.columnWidth()
	textWidth := max(1, colWidth-6)

	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	emptyStyle := lipgloss.NewStyle().Foreground(mutedColor)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedStyle := lipgloss.NewStyle().Foreground(dragColor).Background(lipgloss.Color("237")).Bold(true)

	boxes := make([]string, 0, len(columns))
	for colIdx, column := range columns {
		tasks := m.snap.TasksForColumn(column.ID)
		lines := []string{titleStyle.Render(truncate(fmt.Sprintf("%s (%d)", displayTitle(column.Title), len(tasks)), textWidth+2))}
		if len(tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			dragged := m.drag.State == app.DragTask && m.drag.Task.ID == task.ID
			prefix := "  "
			if selected {
				prefix = "> "
			}
			line := prefix + truncate(displayContent(task.Content), textWidth)
			switch {
			case dragged:
				line = draggedStyle.Render(line)
			case selected:
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}

		style := base
		switch {
		case m.drag.State == app.DragColumn && m.drag.Column.ID == column.ID:
			style = style.BorderForeground(dragColor)
		case colIdx == m.selectedColumn:
			style = style.BorderForeground(accentColor)
		}
		boxes = append(boxes, style.Render(strings.Join(lines, "\n")))
	}
	return boxes
}

// columnWidth returns the per-column content width for the current terminal width.
func (m Model) columnWidth() int {
	count := m.snap.ColumnCount()
	if count == 0 {
		return 24
	}
	w := 28
	if m.width > 0 {
		// Per-column overhead: border (2), horizontal padding (2), margin-right (1).
		const colOverhead = 5
		if candidate := (m.width - count*colOverhead) / count; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 16, 42)
}

// previewOrigin returns where the floating drag card is drawn.
func (m Model) previewOrigin() (int, int) {
	if m.pointerDrag {
		return m.pointerX + 2, m.pointerY + 1
	}
	x := 0
	boxes := m.columnBoxes()
	for idx := 0; idx < m.selectedColumn && idx < len(boxes); idx++ {
		x += lipgloss.Width(boxes[idx])
	}
	y := boardTop + 2
	if m.drag.State == app.DragTask {
		y += m.selectedTask + 1
	}
	return x + 2, y
}

// renderDragPreview renders the floating card for the dragged entity.
func (m Model) renderDragPreview() string {
	label := "task"
	text := displayContent(m.drag.Task.Content)
	if m.drag.State == app.DragColumn {
		label = "column"
		text = displayTitle(m.drag.Column.Title)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dragColor).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Foreground(mutedColor).Render("moving "+label) + "\n" + text)
}

// renderTaskInfo renders the task info overlay with the content as markdown.
func (m Model) renderTaskInfo() string {
	task, ok := m.snap.Task(m.infoID)
	if !ok {
		return renderOverlayBox(accentColor, "Task info", "task no longer exists\n\nesc close")
	}
	columnTitle := "-"
	if column, found := m.snap.Column(task.ColumnID); found {
		columnTitle = displayTitle(column.Title)
	}
	width := clamp(m.width-12, 24, 80)
	body := m.markdown.RenderOrPlain(task.Content, width)
	if strings.TrimSpace(body) == "" {
		body = "(empty)"
	}
	meta := lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("id %s • column %s", task.ID, columnTitle))
	return renderOverlayBox(accentColor, "Task info", body+"\n\n"+meta+"\n\nesc close")
}

// renderActivityLog renders the most recent change events, newest first.
func (m Model) renderActivityLog() string {
	if len(m.activity) == 0 {
		return renderOverlayBox(accentColor, "Activity", "no changes yet\n\nesc close")
	}
	lines := make([]string, 0, len(m.activity)+2)
	for _, event := range m.activity {
		lines = append(lines, formatChangeEvent(event))
	}
	lines = append(lines, "", "esc close")
	return renderOverlayBox(accentColor, "Activity", strings.Join(lines, "\n"))
}

// formatChangeEvent renders one change event as a single line.
func formatChangeEvent(event domain.ChangeEvent) string {
	line := fmt.Sprintf("#%d %s %s %s", event.Seq, event.Operation, event.EntityKind, event.EntityID)
	if event.Summary != "" {
		line += " • " + truncate(event.Summary, 48)
	}
	return line
}

// renderOverlayBox renders a titled modal box.
func renderOverlayBox(accent color.Color, title, body string) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(titleStyle.Render(title) + "\n" + body)
}

// fitLines fits content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay over base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		return overlay + "\n\n" + base
	}
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	return placeOnContent(base, centered, 0, 0, width, height)
}

// placeOnContent draws overlay over base with its top-left corner at (x, y), clamped on screen.
func placeOnContent(base, overlay string, x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	x = clamp(x, 0, max(0, width-lipgloss.Width(overlay)))
	y = clamp(y, 0, max(0, height-lipgloss.Height(overlay)))

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(10))
	return canvas.Render()
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
