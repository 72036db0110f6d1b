package tui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/kanboard/internal/app"
)

// boardHit describes what sits under one screen cell.
type boardHit struct {
	column int
	task   int
	header bool
}

// hitTest maps a screen cell onto the board. task is -1 when the cell is inside a column but not
// on a card.
func (m Model) hitTest(x, y int) (boardHit, bool) {
	if m.mode != modeNone || y < boardTop {
		return boardHit{}, false
	}
	columns := m.snap.ColumnsInOrder()
	left := 0
	for idx, box := range m.columnBoxes() {
		width := lipgloss.Width(box)
		if x < left || x >= left+width {
			left += width
			continue
		}
		hit := boardHit{column: idx, task: -1}
		row := y - boardTop
		if row <= 1 {
			hit.header = true
			return hit, true
		}
		if taskIdx := row - 2; taskIdx < len(m.snap.TasksForColumn(columns[idx].ID)) {
			hit.task = taskIdx
		}
		return hit, true
	}
	return boardHit{}, false
}

// targetAt returns the drop target under a screen cell.
func (m Model) targetAt(x, y int) app.DropTarget {
	hit, ok := m.hitTest(x, y)
	if !ok {
		return app.NoTarget
	}
	column := m.snap.ColumnsInOrder()[hit.column]
	if hit.task >= 0 {
		return app.TaskTarget(m.snap.TasksForColumn(column.ID)[hit.task].ID)
	}
	return app.ColumnTarget(column.ID)
}

// columnTargetAt returns the column whose area contains a screen cell, cards included.
func (m Model) columnTargetAt(x, y int) app.DropTarget {
	hit, ok := m.hitTest(x, y)
	if !ok {
		return app.NoTarget
	}
	return app.ColumnTarget(m.snap.ColumnsInOrder()[hit.column].ID)
}

// handleMouseClick starts a task drag on a card press and a column drag on a header press.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.drag.Dragging() {
		return m, nil
	}
	hit, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	column := m.snap.ColumnsInOrder()[hit.column]
	m.selectedColumn = hit.column

	switch {
	case hit.header:
		if m.session.Drag.StartColumnDrag(column.ID) {
			m.status = "grabbed " + displayTitle(column.Title)
		}
	case hit.task >= 0:
		m.selectedTask = hit.task
		task := m.snap.TasksForColumn(column.ID)[hit.task]
		if m.session.Drag.StartTaskDrag(task.ID) {
			m.status = "grabbed " + displayContent(task.Content)
		}
	default:
		m.clampSelections()
		return m, nil
	}
	m.pointerDrag = true
	m.pointerX, m.pointerY = msg.X, msg.Y
	m.refresh()
	return m, nil
}

// handleMouseMotion emits DragOver for whatever the pointer crosses during a task drag.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.pointerDrag || !m.drag.Dragging() {
		return m, nil
	}
	m.pointerX, m.pointerY = msg.X, msg.Y

	switch m.drag.State {
	case app.DragColumn:
		if hit, ok := m.hitTest(msg.X, msg.Y); ok {
			m.selectedColumn = hit.column
		}
	case app.DragTask:
		target := m.targetAt(msg.X, msg.Y)
		if target.IsZero() {
			return m, nil
		}
		active := m.drag.Task.ID
		m.session.Drag.DragOver(target)
		m.refresh()
		m.focusTask(active)
	}
	return m, nil
}

// handleMouseRelease ends the drag over whatever sits under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.pointerDrag {
		return m, nil
	}
	m.pointerDrag = false
	active := m.drag
	if !active.Dragging() {
		return m, nil
	}

	target := m.targetAt(msg.X, msg.Y)
	if active.State == app.DragColumn {
		target = m.columnTargetAt(msg.X, msg.Y)
	}
	m.session.Drag.DragEnd(target)
	m.refresh()
	switch active.State {
	case app.DragColumn:
		m.focusColumn(active.Column.ID)
		m.status = "dropped " + displayTitle(active.Column.Title)
	case app.DragTask:
		m.focusTask(active.Task.ID)
		m.status = "dropped " + displayContent(active.Task.Content)
	}
	return m, nil
}
