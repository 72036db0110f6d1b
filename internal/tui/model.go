package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/kanboard/internal/adapters/render"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// activityLogMaxItems caps the activity overlay.
const activityLogMaxItems = 20

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define the overlay and edit modes.
const (
	modeNone inputMode = iota
	modeEditTask
	modeEditColumn
	modeTaskInfo
	modeActivityLog
)

// Model is the bubbletea model for one board session.
type Model struct {
	session *app.Session

	ready  bool
	width  int
	height int
	status string

	help help.Model
	keys keyMap

	snap           app.Snapshot
	drag           app.ActiveDrag
	selectedColumn int
	selectedTask   int

	// pointer tracks the mouse while a pointer drag is in progress.
	pointerDrag bool
	pointerX    int
	pointerY    int

	mode      inputMode
	input     textinput.Model
	editingID domain.ID
	infoID    domain.ID
	activity  []domain.ChangeEvent

	markdown     *render.MarkdownRenderer
	copyText     func(string) error
	reloadConfig ReloadConfigFunc
}

// ReloadConfigMsg asks the model to reload runtime settings through its reload callback.
type ReloadConfigMsg struct{}

// configReloadedMsg carries runtime settings loaded through the reload callback.
type configReloadedMsg struct {
	config RuntimeConfig
	err    error
}

// NewModel constructs a model bound to session.
func NewModel(session *app.Session, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		session:  session,
		status:   "ready",
		help:     h,
		keys:     newKeyMap(),
		markdown: render.NewMarkdownRenderer(),
		copyText: clipboardWriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.refresh()
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the received message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ReloadConfigMsg:
		return m, m.reloadRuntimeConfigCmd()

	case configReloadedMsg:
		if msg.err != nil {
			m.status = "reload config failed: " + msg.err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.config)
		m.status = "config reloaded"
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		if m.drag.Dragging() {
			return m.handleDragKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// refresh re-reads the board and drag state, then clamps the cursor.
func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	m.drag = m.session.Drag.Active()
	m.clampSelections()
}

// clampSelections keeps the cursor inside the current board.
func (m *Model) clampSelections() {
	columns := m.snap.ColumnsInOrder()
	if len(columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, len(m.currentColumnTasks())-1)
}

// currentColumn returns the column under the cursor.
func (m Model) currentColumn() (domain.Column, bool) {
	columns := m.snap.ColumnsInOrder()
	if len(columns) == 0 {
		return domain.Column{}, false
	}
	return columns[clamp(m.selectedColumn, 0, len(columns)-1)], true
}

// currentColumnTasks returns the tasks of the column under the cursor.
func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return m.snap.TasksForColumn(column.ID)
}

// currentTask returns the task under the cursor.
func (m Model) currentTask() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// focusTask moves the cursor onto id when it is still on the board.
func (m *Model) focusTask(id domain.ID) {
	task, ok := m.snap.Task(id)
	if !ok {
		return
	}
	m.focusColumn(task.ColumnID)
	for idx, candidate := range m.snap.TasksForColumn(task.ColumnID) {
		if candidate.ID == id {
			m.selectedTask = idx
			return
		}
	}
}

// focusColumn moves the cursor onto the column id.
func (m *Model) focusColumn(id domain.ID) {
	if idx := m.snap.ColumnIndex(id); idx >= 0 {
		m.selectedColumn = idx
	}
}

// handleNormalModeKey handles keys while no overlay or drag is active.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.reloadRuntimeConfigCmd()
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.addColumn):
		column := m.session.Board.AddColumn()
		m.refresh()
		m.focusColumn(column.ID)
		m.selectedTask = 0
		m.status = "added " + displayTitle(column.Title)
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "add a column first"
			return m, nil
		}
		task, added := m.session.Board.AddTask(column.ID)
		m.refresh()
		if added {
			m.focusTask(task.ID)
			m.status = "added " + displayContent(task.Content)
		}
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		if task, ok := m.currentTask(); ok {
			return m.startEdit(modeEditTask, task.ID, task.Content)
		}
		if column, ok := m.currentColumn(); ok {
			return m.startEdit(modeEditColumn, column.ID, column.Title)
		}
		return m, nil
	case key.Matches(msg, m.keys.editColumn):
		if column, ok := m.currentColumn(); ok {
			return m.startEdit(modeEditColumn, column.ID, column.Title)
		}
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.session.Board.RemoveTask(task.ID)
		m.refresh()
		m.status = "deleted " + displayContent(task.Content)
		return m, nil
	case key.Matches(msg, m.keys.deleteCol):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		m.session.Board.RemoveColumn(column.ID)
		m.refresh()
		m.status = "deleted " + displayTitle(column.Title)
		return m, nil
	case key.Matches(msg, m.keys.grabTask):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task to grab"
			return m, nil
		}
		if m.session.Drag.StartTaskDrag(task.ID) {
			m.status = "grabbed " + displayContent(task.Content)
		}
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.grabColumn):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column to grab"
			return m, nil
		}
		if m.session.Drag.StartColumnDrag(column.ID) {
			m.status = "grabbed " + displayTitle(column.Title)
		}
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task to copy"
			return m, nil
		}
		if err := m.copyText(task.Content); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied task content"
		return m, nil
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoID = task.ID
		return m, nil
	case key.Matches(msg, m.keys.activityLog):
		m.activity = m.session.Board.ChangeEvents(activityLogMaxItems)
		m.mode = modeActivityLog
		return m, nil
	default:
		return m, nil
	}
}

// handleDragKey handles keys while a drag gesture is active.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.session.Drag.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.session.Drag.Cancel()
		m.pointerDrag = false
		m.refresh()
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.drop):
		return m.finishKeyboardDrag()
	case key.Matches(msg, m.keys.moveLeft):
		return m.stepDrag(-1, 0)
	case key.Matches(msg, m.keys.moveRight):
		return m.stepDrag(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		return m.stepDrag(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		return m.stepDrag(0, 1)
	default:
		return m, nil
	}
}

// stepDrag moves the active drag one cell. Task drags emit DragOver for the neighbour in that
// direction; column drags only move the drop cursor.
func (m Model) stepDrag(dx, dy int) (tea.Model, tea.Cmd) {
	columns := m.snap.ColumnsInOrder()
	switch m.drag.State {
	case app.DragColumn:
		if dx != 0 {
			m.selectedColumn = clamp(m.selectedColumn+dx, 0, len(columns)-1)
		}
		return m, nil
	case app.DragTask:
	default:
		return m, nil
	}

	active := m.drag.Task.ID
	current, ok := m.snap.Task(active)
	if !ok {
		m.refresh()
		return m, nil
	}
	colIdx := m.snap.ColumnIndex(current.ColumnID)
	siblings := m.snap.TasksForColumn(current.ColumnID)
	pos := indexOfTask(siblings, active)

	var target app.DropTarget
	switch {
	case dy != 0:
		next := pos + dy
		if next < 0 || next >= len(siblings) {
			return m, nil
		}
		target = app.TaskTarget(siblings[next].ID)
	case dx != 0:
		nextCol := colIdx + dx
		if nextCol < 0 || nextCol >= len(columns) {
			return m, nil
		}
		dest := columns[nextCol]
		destTasks := m.snap.TasksForColumn(dest.ID)
		if len(destTasks) == 0 {
			target = app.ColumnTarget(dest.ID)
		} else {
			target = app.TaskTarget(destTasks[clamp(pos, 0, len(destTasks)-1)].ID)
		}
	}

	m.session.Drag.DragOver(target)
	m.refresh()
	m.focusTask(active)
	return m, nil
}

// finishKeyboardDrag ends the gesture over the column under the cursor.
func (m Model) finishKeyboardDrag() (tea.Model, tea.Cmd) {
	active := m.drag
	target := app.NoTarget
	if active.State == app.DragColumn {
		if column, ok := m.currentColumn(); ok {
			target = app.ColumnTarget(column.ID)
		}
	}
	m.session.Drag.DragEnd(target)
	m.pointerDrag = false
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

// startEdit opens the inline editor for one task or column.
func (m Model) startEdit(mode inputMode, id domain.ID, value string) (tea.Model, tea.Cmd) {
	prompt := "task: "
	if mode == modeEditColumn {
		prompt = "column: "
	}
	m.input = newModalInput(prompt, value, 200)
	m.mode = mode
	m.editingID = id
	return m, m.input.Focus()
}

// newModalInput constructs a prefilled text input.
func newModalInput(prompt, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// handleInputModeKey handles keys while an overlay or editor is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeTaskInfo, modeActivityLog:
		if key.Matches(msg, m.keys.cancel) || key.Matches(msg, m.keys.quit) || msg.String() == "enter" {
			m.mode = modeNone
			m.infoID = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.editingID = ""
		m.status = "edit cancelled"
		return m, nil
	case "enter":
		return m.submitEdit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitEdit commits the inline editor value.
func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	id := m.editingID
	mode := m.mode
	m.mode = modeNone
	m.editingID = ""

	applied := false
	switch mode {
	case modeEditTask:
		applied = m.session.Board.UpdateTaskContent(id, value)
	case modeEditColumn:
		applied = m.session.Board.RenameColumn(id, value)
	}
	m.refresh()
	if applied {
		m.status = "saved"
	} else {
		m.status = "nothing to save"
	}
	return m, nil
}

// applyRuntimeConfig applies runtime-updateable settings from a reload callback.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	WithRuntimeConfig(cfg)(m)
}

// reloadRuntimeConfigCmd reloads runtime settings through the configured callback.
func (m Model) reloadRuntimeConfigCmd() tea.Cmd {
	if m.reloadConfig == nil {
		return func() tea.Msg {
			return configReloadedMsg{err: fmt.Errorf("config reload callback is unavailable")}
		}
	}
	reload := m.reloadConfig
	return func() tea.Msg {
		cfg, err := reload()
		if err != nil {
			return configReloadedMsg{err: err}
		}
		return configReloadedMsg{config: cfg}
	}
}

// indexOfTask returns the position of id in tasks, or -1.
func indexOfTask(tasks []domain.Task, id domain.ID) int {
	for idx, task := range tasks {
		if task.ID == id {
			return idx
		}
	}
	return -1
}

// displayTitle renders a column title for status lines.
func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// displayContent renders task content for status lines.
func displayContent(content string) string {
	content = strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	if content == "" {
		return "(empty)"
	}
	return truncate(content, 32)
}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
