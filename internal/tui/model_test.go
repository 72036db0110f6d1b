package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// sequentialIDs returns an id generator producing prefix1, prefix2, ...
func sequentialIDs(prefix string) app.IDGenerator {
	n := 0
	return func() domain.ID {
		n++
		return domain.ID(fmt.Sprintf("%s%d", prefix, n))
	}
}

// newFixtureSession builds two columns: id1 holding "Write docs" and "Ship it", id2 holding "Review".
func newFixtureSession(t *testing.T) (*app.Session, domain.ID, domain.ID) {
	t.Helper()
	session := app.NewSession(sequentialIDs("id"), app.SessionConfig{SeedColumns: []string{"To Do", "Doing"}})
	columns := session.Board.ColumnsInOrder()
	if len(columns) != 2 {
		t.Fatalf("expected 2 seeded columns, got %d", len(columns))
	}
	add := func(column domain.ID, content string) {
		task, ok := session.Board.AddTask(column)
		if !ok {
			t.Fatalf("AddTask(%s) rejected", column)
		}
		session.Board.UpdateTaskContent(task.ID, content)
	}
	add(columns[0].ID, "Write docs")
	add(columns[0].ID, "Ship it")
	add(columns[1].ID, "Review")
	return session, columns[0].ID, columns[1].ID
}

// contents returns task contents of one column in order.
func contents(session *app.Session, column domain.ID) []string {
	tasks := session.Board.TasksForColumn(column)
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Content)
	}
	return out
}

// applyMsg runs one Update and asserts the returned model type.
func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return out
}

// press sends one named key.
func press(t *testing.T, m Model, name string) Model {
	t.Helper()
	switch name {
	case "enter":
		return applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	case "esc":
		return applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	case "space":
		return applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	}
	r := []rune(name)[0]
	return applyMsg(t, m, tea.KeyPressMsg{Code: r, Text: name})
}

// sized returns m after a window size message.
func sized(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 32})
}

// TestModelAddColumnAndTask verifies behavior for the covered scenario.
func TestModelAddColumnAndTask(t *testing.T) {
	session := app.NewSession(sequentialIDs("id"), app.SessionConfig{})
	m := sized(t, NewModel(session))

	m = press(t, m, "n")
	if m.status != "add a column first" {
		t.Fatalf("unexpected status %q", m.status)
	}
	m = press(t, m, "C")
	m = press(t, m, "n")

	columns := session.Board.ColumnsInOrder()
	if len(columns) != 1 || columns[0].Title != "Column 1" {
		t.Fatalf("unexpected columns %#v", columns)
	}
	if diff := cmp.Diff([]string{"Task 1"}, contents(session, columns[0].ID)); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}
	task, ok := m.currentTask()
	if !ok || task.Content != "Task 1" {
		t.Fatalf("expected cursor on new task, got %#v", task)
	}
	if !strings.Contains(m.render(), "Task 1") {
		t.Fatal("expected rendered board to include the new task")
	}
}

// TestModelKeyboardTaskDragAcrossColumns verifies behavior for the covered scenario.
func TestModelKeyboardTaskDragAcrossColumns(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "space")
	if m.drag.State != app.DragTask || m.drag.Task.Content != "Write docs" {
		t.Fatalf("expected task drag, got %#v", m.drag)
	}
	if !strings.Contains(m.render(), "moving task") {
		t.Fatal("expected drag preview in view")
	}

	m = press(t, m, "l")
	if diff := cmp.Diff([]string{"Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected source column (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Review", "Write docs"}, contents(session, doing)); diff != "" {
		t.Fatalf("unexpected destination column (-want +got):\n%s", diff)
	}
	if m.selectedColumn != 1 || m.selectedTask != 1 {
		t.Fatalf("expected cursor to follow dragged task, got col=%d task=%d", m.selectedColumn, m.selectedTask)
	}

	m = press(t, m, "enter")
	if m.drag.Dragging() || session.Drag.Active().Dragging() {
		t.Fatal("expected drag to end")
	}
	if !strings.Contains(m.status, "dropped Write docs") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelKeyboardTaskDragWithinColumn verifies behavior for the covered scenario.
func TestModelKeyboardTaskDragWithinColumn(t *testing.T) {
	session, todo, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "space")
	m = press(t, m, "k")
	if diff := cmp.Diff([]string{"Write docs", "Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("expected no move above the first task (-want +got):\n%s", diff)
	}
	m = press(t, m, "j")
	if diff := cmp.Diff([]string{"Ship it", "Write docs"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	m = press(t, m, "esc")
	if m.drag.Dragging() {
		t.Fatal("expected cancel to end the drag")
	}
	if diff := cmp.Diff([]string{"Ship it", "Write docs"}, contents(session, todo)); diff != "" {
		t.Fatalf("expected cancel to keep applied moves (-want +got):\n%s", diff)
	}
}

// TestModelKeyboardTaskDragIntoEmptyColumn verifies behavior for the covered scenario.
func TestModelKeyboardTaskDragIntoEmptyColumn(t *testing.T) {
	session, todo, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))
	m = press(t, m, "C")
	empty := session.Board.ColumnsInOrder()[2].ID

	m.selectedColumn, m.selectedTask = 0, 0
	m = press(t, m, "space")
	m = press(t, m, "l")
	m = press(t, m, "l")
	m = press(t, m, "enter")

	if diff := cmp.Diff([]string{"Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected source column (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Write docs"}, contents(session, empty)); diff != "" {
		t.Fatalf("unexpected destination column (-want +got):\n%s", diff)
	}
}

// TestModelKeyboardColumnDrag verifies behavior for the covered scenario.
func TestModelKeyboardColumnDrag(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "g")
	if m.drag.State != app.DragColumn {
		t.Fatalf("expected column drag, got %s", m.drag.State)
	}
	m = press(t, m, "l")
	m = press(t, m, "enter")

	got := []domain.ID{}
	for _, column := range session.Board.ColumnsInOrder() {
		got = append(got, column.ID)
	}
	if diff := cmp.Diff([]domain.ID{doing, todo}, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
	if m.selectedColumn != 1 {
		t.Fatalf("expected cursor on moved column, got %d", m.selectedColumn)
	}
}

// TestModelEditTaskAndColumn verifies behavior for the covered scenario.
func TestModelEditTaskAndColumn(t *testing.T) {
	session, todo, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "e")
	if m.mode != modeEditTask || m.input.Value() != "Write docs" {
		t.Fatalf("expected prefilled task editor, mode=%d value=%q", m.mode, m.input.Value())
	}
	m.input.SetValue("Write better docs")
	m = press(t, m, "enter")
	if diff := cmp.Diff([]string{"Write better docs", "Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}

	m = press(t, m, "E")
	if m.mode != modeEditColumn {
		t.Fatalf("expected column editor, got mode %d", m.mode)
	}
	m.input.SetValue("Backlog")
	m = press(t, m, "enter")
	column, _ := session.Snapshot().Column(todo)
	if column.Title != "Backlog" {
		t.Fatalf("unexpected column title %q", column.Title)
	}

	m = press(t, m, "e")
	m.input.SetValue("discarded")
	m = press(t, m, "esc")
	if m.mode != modeNone || m.status != "edit cancelled" {
		t.Fatalf("expected cancelled edit, mode=%d status=%q", m.mode, m.status)
	}
	if contents(session, todo)[0] != "Write better docs" {
		t.Fatal("expected cancelled edit to leave content untouched")
	}
}

// TestModelDeleteTaskAndColumn verifies behavior for the covered scenario.
func TestModelDeleteTaskAndColumn(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "x")
	if diff := cmp.Diff([]string{"Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}
	m = press(t, m, "l")
	m = press(t, m, "X")
	if _, ok := session.Snapshot().Column(doing); ok {
		t.Fatal("expected column removed")
	}
	if session.Snapshot().TaskCount() != 1 {
		t.Fatalf("expected cascade to leave 1 task, got %d", session.Snapshot().TaskCount())
	}
	if m.selectedColumn != 0 {
		t.Fatalf("expected cursor clamped to remaining column, got %d", m.selectedColumn)
	}
}

// TestModelCopyTask verifies behavior for the covered scenario.
func TestModelCopyTask(t *testing.T) {
	session, _, _ := newFixtureSession(t)
	var copied string
	m := sized(t, NewModel(session, WithClipboard(func(text string) error {
		copied = text
		return nil
	})))
	m = press(t, m, "y")
	if copied != "Write docs" || m.status != "copied task content" {
		t.Fatalf("unexpected copy result %q status %q", copied, m.status)
	}

	m = NewModel(session, WithClipboard(func(string) error { return errors.New("no clipboard") }))
	m = press(t, m, "y")
	if !strings.Contains(m.status, "no clipboard") {
		t.Fatalf("expected copy failure status, got %q", m.status)
	}
}

// TestModelTaskInfoAndActivityLog verifies behavior for the covered scenario.
func TestModelTaskInfoAndActivityLog(t *testing.T) {
	session, _, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))

	m = press(t, m, "i")
	if m.mode != modeTaskInfo {
		t.Fatalf("expected task info mode, got %d", m.mode)
	}
	if view := m.render(); !strings.Contains(view, "Task info") {
		t.Fatalf("expected task info overlay, got\n%s", view)
	}
	m = press(t, m, "esc")
	if m.mode != modeNone {
		t.Fatalf("expected overlay closed, got %d", m.mode)
	}

	m = press(t, m, "a")
	if m.mode != modeActivityLog || len(m.activity) == 0 {
		t.Fatalf("expected activity entries, mode=%d entries=%d", m.mode, len(m.activity))
	}
	if m.activity[0].Seq < m.activity[len(m.activity)-1].Seq {
		t.Fatal("expected newest activity first")
	}
	if view := m.render(); !strings.Contains(view, "Activity") {
		t.Fatalf("expected activity overlay, got\n%s", view)
	}
}

// TestModelMouseTaskDrag verifies behavior for the covered scenario.
func TestModelMouseTaskDrag(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))
	secondColumnX := lipgloss.Width(m.columnBoxes()[0]) + 2

	m = applyMsg(t, m, tea.MouseClickMsg{X: 3, Y: boardTop + 2, Button: tea.MouseLeft})
	if m.drag.State != app.DragTask || m.drag.Task.Content != "Write docs" {
		t.Fatalf("expected task drag from press, got %#v", m.drag)
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: secondColumnX, Y: boardTop + 2, Button: tea.MouseLeft})
	if diff := cmp.Diff([]string{"Review", "Write docs"}, contents(session, doing)); diff != "" {
		t.Fatalf("unexpected destination column (-want +got):\n%s", diff)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: secondColumnX, Y: boardTop + 2, Button: tea.MouseLeft})
	if m.drag.Dragging() || m.pointerDrag {
		t.Fatal("expected release to end the drag")
	}
	if diff := cmp.Diff([]string{"Ship it"}, contents(session, todo)); diff != "" {
		t.Fatalf("unexpected source column (-want +got):\n%s", diff)
	}
}

// TestModelMouseColumnDrag verifies behavior for the covered scenario.
func TestModelMouseColumnDrag(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))
	secondColumnX := lipgloss.Width(m.columnBoxes()[0]) + 2

	m = applyMsg(t, m, tea.MouseClickMsg{X: 3, Y: boardTop + 1, Button: tea.MouseLeft})
	if m.drag.State != app.DragColumn {
		t.Fatalf("expected column drag from header press, got %s", m.drag.State)
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: secondColumnX, Y: boardTop + 1, Button: tea.MouseLeft})
	if m.selectedColumn != 1 {
		t.Fatalf("expected drop cursor to follow pointer, got %d", m.selectedColumn)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: secondColumnX, Y: boardTop + 1, Button: tea.MouseLeft})

	got := []domain.ID{}
	for _, column := range session.Board.ColumnsInOrder() {
		got = append(got, column.ID)
	}
	if diff := cmp.Diff([]domain.ID{doing, todo}, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
}

// TestModelMouseColumnDragReleasedOverCard verifies a column drop on a card row reorders columns.
func TestModelMouseColumnDragReleasedOverCard(t *testing.T) {
	session, todo, doing := newFixtureSession(t)
	m := sized(t, NewModel(session))
	secondColumnX := lipgloss.Width(m.columnBoxes()[0]) + 2

	m = applyMsg(t, m, tea.MouseClickMsg{X: 3, Y: boardTop + 1, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseMotionMsg{X: secondColumnX, Y: boardTop + 2, Button: tea.MouseLeft})
	if target := m.targetAt(secondColumnX, boardTop+2); target.Kind != app.TargetTask {
		t.Fatalf("expected a card under the pointer, got %s", target.Kind)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: secondColumnX, Y: boardTop + 2, Button: tea.MouseLeft})
	if m.drag.Dragging() {
		t.Fatal("expected release to end the drag")
	}

	got := []domain.ID{}
	for _, column := range session.Board.ColumnsInOrder() {
		got = append(got, column.ID)
	}
	if diff := cmp.Diff([]domain.ID{doing, todo}, got); diff != "" {
		t.Fatalf("unexpected column order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Review"}, contents(session, doing)); diff != "" {
		t.Fatalf("column drop moved tasks (-want +got):\n%s", diff)
	}
	if m.status != "dropped To Do" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelHitTest verifies behavior for the covered scenario.
func TestModelHitTest(t *testing.T) {
	session, _, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))

	if _, ok := m.hitTest(3, 0); ok {
		t.Fatal("expected header row to miss the board")
	}
	hit, ok := m.hitTest(3, boardTop+3)
	if !ok || hit.column != 0 || hit.task != 1 || hit.header {
		t.Fatalf("unexpected hit %#v ok=%t", hit, ok)
	}
	hit, ok = m.hitTest(3, boardTop+10)
	if !ok || hit.task != -1 {
		t.Fatalf("expected column body hit, got %#v ok=%t", hit, ok)
	}
	if target := m.targetAt(3, boardTop+10); target.Kind != app.TargetColumn {
		t.Fatalf("expected column target, got %#v", target)
	}
}

// TestModelReloadConfig verifies behavior for the covered scenario.
func TestModelReloadConfig(t *testing.T) {
	session, todo, _ := newFixtureSession(t)
	m := sized(t, NewModel(session, WithReloadConfigCallback(func() (RuntimeConfig, error) {
		return RuntimeConfig{Keys: KeyConfig{AddTask: "t"}}, nil
	})))

	updated, cmd := m.Update(ReloadConfigMsg{})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	m = applyMsg(t, updated.(Model), cmd())
	if m.status != "config reloaded" {
		t.Fatalf("unexpected status %q", m.status)
	}
	m = press(t, m, "t")
	if got := len(contents(session, todo)); got != 3 {
		t.Fatalf("expected rebound add-task key to add a task, got %d tasks", got)
	}
}

// TestModelReloadConfigWithoutCallback verifies behavior for the covered scenario.
func TestModelReloadConfigWithoutCallback(t *testing.T) {
	session, _, _ := newFixtureSession(t)
	m := NewModel(session)
	_, cmd := m.Update(ReloadConfigMsg{})
	m = applyMsg(t, m, cmd())
	if !strings.Contains(m.status, "reload config failed") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelRefreshAfterExternalDelete verifies behavior for the covered scenario.
func TestModelRefreshAfterExternalDelete(t *testing.T) {
	session, _, _ := newFixtureSession(t)
	m := sized(t, NewModel(session))
	m = press(t, m, "space")
	dragged := m.drag.Task.ID

	session.Board.RemoveTask(dragged)
	m = press(t, m, "j")
	m = press(t, m, "enter")
	if m.drag.Dragging() {
		t.Fatal("expected drag to end after the dragged task vanished")
	}
	if _, ok := session.Snapshot().Task(dragged); ok {
		t.Fatal("expected removed task to stay removed")
	}
}
