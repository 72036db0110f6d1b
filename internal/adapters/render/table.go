package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/evanschultz/kanboard/internal/app"
)

// Table lays columns side by side with one task per row.
func Table(snap app.Snapshot) string {
	columns := snap.ColumnsInOrder()
	if len(columns) == 0 {
		return "(no columns)"
	}
	headers := make([]string, 0, len(columns))
	cells := make([][]string, 0, len(columns))
	rows := 0
	for _, column := range columns {
		headers = append(headers, titleOrPlaceholder(column.Title, "(untitled)"))
		tasks := snap.TasksForColumn(column.ID)
		contents := make([]string, 0, len(tasks))
		for _, task := range tasks {
			contents = append(contents, titleOrPlaceholder(task.Content, "(empty)"))
		}
		cells = append(cells, contents)
		rows = max(rows, len(contents))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for i := range rows {
		row := make([]string, len(columns))
		for c := range columns {
			if i < len(cells[c]) {
				row[c] = cells[c][i]
			}
		}
		t.Row(row...)
	}
	return t.String()
}
