package app

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/evanschultz/kanboard/internal/domain"
)

// Default titles for new entities; the %d verb receives the new collection length.
const (
	DefaultColumnTitleFormat = "Column %d"
	DefaultTaskContentFormat = "Task %d"
)

// maxIDAttempts bounds regeneration when the generator repeats a live id.
const maxIDAttempts = 8

// BoardConfig holds configuration for one board.
type BoardConfig struct {
	ColumnTitleFormat string
	TaskContentFormat string
	ChangeLogLimit    int
	Logger            Logger
}

// Board owns the column and task sequences of one session.
type Board struct {
	mu           sync.Mutex
	current      Snapshot
	idGen        IDGenerator
	columnFormat string
	taskFormat   string
	changes      *changeLog
	logger       Logger
	observers    observerSet[Snapshot]
}

// NewBoard constructs an empty board.
func NewBoard(idGen IDGenerator, cfg BoardConfig) *Board {
	if idGen == nil {
		idGen = UUIDGenerator
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Board{
		current: Snapshot{
			columns: []domain.Column{},
			tasks:   []domain.Task{},
		},
		idGen:        idGen,
		columnFormat: sanitizeTitleFormat(cfg.ColumnTitleFormat, DefaultColumnTitleFormat),
		taskFormat:   sanitizeTitleFormat(cfg.TaskContentFormat, DefaultTaskContentFormat),
		changes:      newChangeLog(cfg.ChangeLogLimit),
		logger:       logger,
	}
}

// sanitizeTitleFormat keeps formats carrying exactly one %d verb.
func sanitizeTitleFormat(format, fallback string) string {
	if strings.Count(format, "%d") != 1 || strings.Count(format, "%") != 1 {
		return fallback
	}
	return format
}

// mutation is the next sequence state computed by one operation.
type mutation struct {
	columns []domain.Column
	tasks   []domain.Task
	events  []domain.ChangeEvent
}

// apply runs fn against the current snapshot and publishes its result when fn reports a change.
func (b *Board) apply(fn func(cur Snapshot) (mutation, bool)) bool {
	b.mu.Lock()
	m, ok := fn(b.current)
	if !ok {
		b.mu.Unlock()
		return false
	}
	next := NewSnapshot(b.current.version+1, m.columns, m.tasks)
	b.current = next
	for _, event := range m.events {
		b.changes.append(event)
	}
	b.mu.Unlock()

	b.observers.notify(next)
	return true
}

// ignore traces one absorbed no-op.
func (b *Board) ignore(op, reason string, keyvals ...any) {
	b.logger.Debug(op+" ignored", append([]any{"reason", reason}, keyvals...)...)
}

// newIDLocked returns a generated id not used by any live entity.
func (b *Board) newIDLocked(cur Snapshot) domain.ID {
	var id domain.ID
	for range maxIDAttempts {
		id = b.idGen()
		if !id.IsZero() && !cur.hasID(id) {
			return id
		}
	}
	base := id
	if base.IsZero() {
		base = UUIDGenerator()
	}
	for n := 1; ; n++ {
		candidate := domain.ID(fmt.Sprintf("%s-%d", base, n))
		if !cur.hasID(candidate) {
			return candidate
		}
	}
}

// Snapshot returns the current immutable view of the board.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// ColumnsInOrder returns a copy of the column sequence.
func (b *Board) ColumnsInOrder() []domain.Column {
	return b.Snapshot().ColumnsInOrder()
}

// TasksForColumn returns the tasks owned by columnID in shared-sequence order.
func (b *Board) TasksForColumn(columnID domain.ID) []domain.Task {
	return b.Snapshot().TasksForColumn(columnID)
}

// ChangeEvents returns up to limit applied mutations, newest first.
func (b *Board) ChangeEvents(limit int) []domain.ChangeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changes.recent(limit)
}

// Subscribe registers fn to receive every newly published snapshot. The returned func
// unregisters it.
func (b *Board) Subscribe(fn func(Snapshot)) func() {
	return b.observers.add(fn)
}

// AddColumn appends a column with a fresh id and a default title.
func (b *Board) AddColumn() domain.Column {
	return b.addColumn("", false)
}

// AddTitledColumn appends a column with a fresh id and the given title in one mutation.
func (b *Board) AddTitledColumn(title string) domain.Column {
	return b.addColumn(title, true)
}

// addColumn appends one column, titled explicitly or from the default format.
func (b *Board) addColumn(title string, explicit bool) domain.Column {
	var created domain.Column
	b.apply(func(cur Snapshot) (mutation, bool) {
		if !explicit {
			title = fmt.Sprintf(b.columnFormat, len(cur.columns)+1)
		}
		column, err := domain.NewColumn(b.newIDLocked(cur), title)
		if err != nil {
			return mutation{}, false
		}
		created = column
		return mutation{
			columns: append(slices.Clone(cur.columns), column),
			tasks:   cur.tasks,
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationCreate,
				EntityKind: domain.EntityKindColumn,
				EntityID:   column.ID,
				Summary:    column.Title,
			}},
		}, true
	})
	return created
}

// RemoveColumn deletes a column and every task it owns in one step.
func (b *Board) RemoveColumn(id domain.ID) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		idx := cur.ColumnIndex(id)
		if idx < 0 {
			b.ignore("remove column", "column not found", "column_id", id)
			return mutation{}, false
		}
		removed := 0
		tasks := make([]domain.Task, 0, len(cur.tasks))
		for _, task := range cur.tasks {
			if task.ColumnID == id {
				removed++
				continue
			}
			tasks = append(tasks, task)
		}
		return mutation{
			columns: slices.Delete(slices.Clone(cur.columns), idx, idx+1),
			tasks:   tasks,
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationDelete,
				EntityKind: domain.EntityKindColumn,
				EntityID:   id,
				Summary:    fmt.Sprintf("%s (%d tasks)", cur.columns[idx].Title, removed),
			}},
		}, true
	})
}

// RenameColumn replaces a column's title.
func (b *Board) RenameColumn(id domain.ID, title string) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		idx := cur.ColumnIndex(id)
		if idx < 0 {
			b.ignore("rename column", "column not found", "column_id", id)
			return mutation{}, false
		}
		columns := slices.Clone(cur.columns)
		columns[idx].Rename(title)
		return mutation{
			columns: columns,
			tasks:   cur.tasks,
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationRename,
				EntityKind: domain.EntityKindColumn,
				EntityID:   id,
				Summary:    title,
			}},
		}, true
	})
}

// AddTask appends a task with default content to the end of the shared sequence. Unknown columns
// are a no-op so no task can reference a missing column.
func (b *Board) AddTask(columnID domain.ID) (domain.Task, bool) {
	var created domain.Task
	ok := b.apply(func(cur Snapshot) (mutation, bool) {
		if cur.ColumnIndex(columnID) < 0 {
			b.ignore("add task", "column not found", "column_id", columnID)
			return mutation{}, false
		}
		task, err := domain.NewTask(b.newIDLocked(cur), columnID, fmt.Sprintf(b.taskFormat, len(cur.tasks)+1))
		if err != nil {
			return mutation{}, false
		}
		created = task
		return mutation{
			columns: cur.columns,
			tasks:   append(slices.Clone(cur.tasks), task),
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationCreate,
				EntityKind: domain.EntityKindTask,
				EntityID:   task.ID,
				ColumnID:   columnID,
				Summary:    task.Content,
			}},
		}, true
	})
	return created, ok
}

// RemoveTask deletes one task.
func (b *Board) RemoveTask(id domain.ID) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		idx := cur.TaskIndex(id)
		if idx < 0 {
			b.ignore("remove task", "task not found", "task_id", id)
			return mutation{}, false
		}
		return mutation{
			columns: cur.columns,
			tasks:   slices.Delete(slices.Clone(cur.tasks), idx, idx+1),
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationDelete,
				EntityKind: domain.EntityKindTask,
				EntityID:   id,
				ColumnID:   cur.tasks[idx].ColumnID,
			}},
		}, true
	})
}

// UpdateTaskContent replaces a task's content.
func (b *Board) UpdateTaskContent(id domain.ID, content string) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		idx := cur.TaskIndex(id)
		if idx < 0 {
			b.ignore("update task", "task not found", "task_id", id)
			return mutation{}, false
		}
		tasks := slices.Clone(cur.tasks)
		tasks[idx].UpdateContent(content)
		return mutation{
			columns: cur.columns,
			tasks:   tasks,
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationUpdate,
				EntityKind: domain.EntityKindTask,
				EntityID:   id,
				ColumnID:   tasks[idx].ColumnID,
				Summary:    content,
			}},
		}, true
	})
}

// ReorderColumns moves column from to the position currently held by column to.
func (b *Board) ReorderColumns(from, to domain.ID) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		if from == to {
			b.ignore("reorder columns", "same column", "column_id", from)
			return mutation{}, false
		}
		fromIdx, toIdx := cur.ColumnIndex(from), cur.ColumnIndex(to)
		if fromIdx < 0 || toIdx < 0 {
			b.ignore("reorder columns", "column not found", "from", from, "to", to)
			return mutation{}, false
		}
		return mutation{
			columns: moveElement(cur.columns, fromIdx, toIdx),
			tasks:   cur.tasks,
			events: []domain.ChangeEvent{{
				Operation:  domain.ChangeOperationMove,
				EntityKind: domain.EntityKindColumn,
				EntityID:   from,
				Summary:    fmt.Sprintf("position %d -> %d", fromIdx+1, toIdx+1),
			}},
		}, true
	})
}

// ReorderOrReassignTask moves active relative to over. A task target makes active adopt the
// target's column and take its index in the shared sequence. A column target only reassigns
// active to that column and leaves its index unchanged.
func (b *Board) ReorderOrReassignTask(active, over domain.ID, overIsColumn bool) bool {
	return b.apply(func(cur Snapshot) (mutation, bool) {
		if active == over {
			b.ignore("reorder task", "same entity", "task_id", active)
			return mutation{}, false
		}
		activeIdx := cur.TaskIndex(active)
		if activeIdx < 0 {
			b.ignore("reorder task", "task not found", "task_id", active)
			return mutation{}, false
		}
		from := cur.tasks[activeIdx].ColumnID

		if overIsColumn {
			if cur.ColumnIndex(over) < 0 {
				b.ignore("reorder task", "column not found", "task_id", active, "column_id", over)
				return mutation{}, false
			}
			if from == over {
				return mutation{}, false
			}
			tasks := slices.Clone(cur.tasks)
			if err := tasks[activeIdx].Reassign(over); err != nil {
				return mutation{}, false
			}
			return mutation{
				columns: cur.columns,
				tasks:   tasks,
				events:  []domain.ChangeEvent{reassignEvent(active, from, over)},
			}, true
		}

		overIdx := cur.TaskIndex(over)
		if overIdx < 0 {
			b.ignore("reorder task", "target task not found", "task_id", active, "over", over)
			return mutation{}, false
		}
		tasks := slices.Clone(cur.tasks)
		target := tasks[overIdx].ColumnID
		if err := tasks[activeIdx].Reassign(target); err != nil {
			return mutation{}, false
		}
		events := make([]domain.ChangeEvent, 0, 2)
		if from != target {
			events = append(events, reassignEvent(active, from, target))
		}
		events = append(events, domain.ChangeEvent{
			Operation:  domain.ChangeOperationMove,
			EntityKind: domain.EntityKindTask,
			EntityID:   active,
			ColumnID:   target,
			Summary:    fmt.Sprintf("position %d -> %d", activeIdx+1, overIdx+1),
		})
		return mutation{
			columns: cur.columns,
			tasks:   moveElement(tasks, activeIdx, overIdx),
			events:  events,
		}, true
	})
}

// reassignEvent records a task changing columns.
func reassignEvent(taskID, from, to domain.ID) domain.ChangeEvent {
	return domain.ChangeEvent{
		Operation:  domain.ChangeOperationReassign,
		EntityKind: domain.EntityKindTask,
		EntityID:   taskID,
		ColumnID:   to,
		Summary:    fmt.Sprintf("%s -> %s", from, to),
	}
}

// moveElement removes the element at from and reinserts it at to, returning a new slice.
func moveElement[T any](in []T, from, to int) []T {
	out := slices.Clone(in)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
