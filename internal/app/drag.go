package app

import (
	"sync"

	"github.com/evanschultz/kanboard/internal/domain"
)

// DragState identifies the controller's current gesture.
type DragState int

// DragState values.
const (
	DragIdle DragState = iota
	DragColumn
	DragTask
)

// String returns the lowercase state name.
func (s DragState) String() string {
	switch s {
	case DragColumn:
		return "dragging_column"
	case DragTask:
		return "dragging_task"
	default:
		return "idle"
	}
}

// TargetKind identifies what a pointer or cursor is currently over.
type TargetKind int

// TargetKind values.
const (
	TargetNone TargetKind = iota
	TargetColumn
	TargetTask
)

// String returns the lowercase target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetColumn:
		return "column"
	case TargetTask:
		return "task"
	default:
		return "none"
	}
}

// DropTarget names the entity under the pointer, if any.
type DropTarget struct {
	Kind TargetKind
	ID   domain.ID
}

// NoTarget is the empty drop target.
var NoTarget = DropTarget{}

// ColumnTarget returns a drop target over one column.
func ColumnTarget(id domain.ID) DropTarget {
	return DropTarget{Kind: TargetColumn, ID: id}
}

// TaskTarget returns a drop target over one task.
func TaskTarget(id domain.ID) DropTarget {
	return DropTarget{Kind: TargetTask, ID: id}
}

// IsZero reports whether the target names nothing.
func (t DropTarget) IsZero() bool {
	return t.Kind == TargetNone || t.ID.IsZero()
}

// ActiveDrag is the controller state plus the entity preview captured at drag start.
type ActiveDrag struct {
	State  DragState
	Column domain.Column
	Task   domain.Task
}

// ID returns the dragged entity id, or the zero id when idle.
func (a ActiveDrag) ID() domain.ID {
	switch a.State {
	case DragColumn:
		return a.Column.ID
	case DragTask:
		return a.Task.ID
	default:
		return ""
	}
}

// Dragging reports whether a gesture is in progress.
func (a ActiveDrag) Dragging() bool {
	return a.State != DragIdle
}

// DragController translates drag gestures into board operations.
type DragController struct {
	mu        sync.Mutex
	board     *Board
	active    ActiveDrag
	logger    Logger
	observers observerSet[ActiveDrag]
}

// NewDragController constructs an idle controller bound to board.
func NewDragController(board *Board, logger Logger) *DragController {
	if logger == nil {
		logger = nopLogger{}
	}
	return &DragController{board: board, logger: logger}
}

// Active returns the current gesture and its preview entity.
func (c *DragController) Active() ActiveDrag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Subscribe registers fn to receive every controller state change.
func (c *DragController) Subscribe(fn func(ActiveDrag)) func() {
	return c.observers.add(fn)
}

// setActive stores next and notifies observers outside the lock.
func (c *DragController) setActive(next ActiveDrag) {
	c.mu.Lock()
	c.active = next
	c.mu.Unlock()
	c.observers.notify(next)
}

// StartColumnDrag begins dragging a live column.
func (c *DragController) StartColumnDrag(id domain.ID) bool {
	column, ok := c.board.Snapshot().Column(id)
	if !ok {
		c.logger.Debug("drag start ignored", "reason", "column not found", "column_id", id)
		return false
	}
	return c.start(ActiveDrag{State: DragColumn, Column: column})
}

// StartTaskDrag begins dragging a live task.
func (c *DragController) StartTaskDrag(id domain.ID) bool {
	task, ok := c.board.Snapshot().Task(id)
	if !ok {
		c.logger.Debug("drag start ignored", "reason", "task not found", "task_id", id)
		return false
	}
	return c.start(ActiveDrag{State: DragTask, Task: task})
}

// start moves Idle to next. A gesture already in progress keeps running.
func (c *DragController) start(next ActiveDrag) bool {
	c.mu.Lock()
	if c.active.Dragging() {
		current := c.active.ID()
		c.mu.Unlock()
		c.logger.Debug("drag start ignored", "reason", "drag in progress", "active", current, "requested", next.ID())
		return false
	}
	c.active = next
	c.mu.Unlock()

	c.logger.Debug("drag started", "state", next.State.String(), "id", next.ID())
	c.observers.notify(next)
	return true
}

// DragOver applies incremental task moves while a task is dragged over target.
func (c *DragController) DragOver(target DropTarget) bool {
	active := c.Active()
	if active.State != DragTask || target.IsZero() || target.ID == active.Task.ID {
		return false
	}
	applied := c.board.ReorderOrReassignTask(active.Task.ID, target.ID, target.Kind == TargetColumn)
	if applied {
		c.logger.Debug("drag over applied", "task_id", active.Task.ID, "target", target.Kind.String(), "over", target.ID)
	}
	return applied
}

// DragEnd finishes the gesture. A column dropped on a different column is reordered; task drags
// were already applied by DragOver.
func (c *DragController) DragEnd(target DropTarget) bool {
	active := c.Active()
	if !active.Dragging() {
		return false
	}
	c.setActive(ActiveDrag{})

	if active.State != DragColumn || target.Kind != TargetColumn || target.IsZero() {
		c.logger.Debug("drag ended", "state", active.State.String(), "id", active.ID())
		return false
	}
	applied := c.board.ReorderColumns(active.Column.ID, target.ID)
	c.logger.Debug("drag ended", "state", active.State.String(), "id", active.ID(), "over", target.ID, "applied", applied)
	return applied
}

// Cancel abandons the gesture without further mutation.
func (c *DragController) Cancel() {
	if !c.Active().Dragging() {
		return
	}
	c.setActive(ActiveDrag{})
	c.logger.Debug("drag cancelled")
}
