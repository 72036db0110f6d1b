package app

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/evanschultz/kanboard/internal/domain"
)

// SnapshotSchema names the JSON export format.
const SnapshotSchema = "kanboard.snapshot.v1"

// Snapshot is an immutable view of the board at one version.
type Snapshot struct {
	version uint64
	columns []domain.Column
	tasks   []domain.Task
}

// NewSnapshot builds a snapshot from copies of the supplied sequences.
func NewSnapshot(version uint64, columns []domain.Column, tasks []domain.Task) Snapshot {
	return Snapshot{
		version: version,
		columns: slices.Clone(columns),
		tasks:   slices.Clone(tasks),
	}
}

// Version returns the mutation counter this snapshot was published at.
func (s Snapshot) Version() uint64 {
	return s.version
}

// ColumnsInOrder returns the column sequence.
func (s Snapshot) ColumnsInOrder() []domain.Column {
	return slices.Clone(s.columns)
}

// Tasks returns the shared task sequence across every column.
func (s Snapshot) Tasks() []domain.Task {
	return slices.Clone(s.tasks)
}

// TasksForColumn returns the tasks owned by columnID in shared-sequence order.
func (s Snapshot) TasksForColumn(columnID domain.ID) []domain.Task {
	out := make([]domain.Task, 0)
	for _, task := range s.tasks {
		if task.ColumnID == columnID {
			out = append(out, task)
		}
	}
	return out
}

// Column returns one column by id.
func (s Snapshot) Column(id domain.ID) (domain.Column, bool) {
	idx := s.ColumnIndex(id)
	if idx < 0 {
		return domain.Column{}, false
	}
	return s.columns[idx], true
}

// Task returns one task by id.
func (s Snapshot) Task(id domain.ID) (domain.Task, bool) {
	idx := s.TaskIndex(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx], true
}

// ColumnIndex returns the column's position, or -1.
func (s Snapshot) ColumnIndex(id domain.ID) int {
	return slices.IndexFunc(s.columns, func(c domain.Column) bool { return c.ID == id })
}

// TaskIndex returns the task's position in the shared sequence, or -1.
func (s Snapshot) TaskIndex(id domain.ID) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

// ColumnCount returns the number of live columns.
func (s Snapshot) ColumnCount() int {
	return len(s.columns)
}

// TaskCount returns the number of live tasks.
func (s Snapshot) TaskCount() int {
	return len(s.tasks)
}

// hasID reports whether id is taken by any live column or task.
func (s Snapshot) hasID(id domain.ID) bool {
	return s.ColumnIndex(id) >= 0 || s.TaskIndex(id) >= 0
}

// SnapshotDocument is the serialized form of a snapshot.
type SnapshotDocument struct {
	Schema  string           `json:"schema"`
	Version uint64           `json:"version"`
	Columns []SnapshotColumn `json:"columns"`
}

// SnapshotColumn is one column with its tasks in display order.
type SnapshotColumn struct {
	ID    domain.ID     `json:"id"`
	Title string        `json:"title"`
	Tasks []domain.Task `json:"tasks"`
}

// Document groups tasks under their columns for export.
func (s Snapshot) Document() SnapshotDocument {
	doc := SnapshotDocument{
		Schema:  SnapshotSchema,
		Version: s.version,
		Columns: make([]SnapshotColumn, 0, len(s.columns)),
	}
	for _, column := range s.columns {
		doc.Columns = append(doc.Columns, SnapshotColumn{
			ID:    column.ID,
			Title: column.Title,
			Tasks: s.TasksForColumn(column.ID),
		})
	}
	return doc
}

// MarshalJSON encodes the snapshot as a SnapshotDocument.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// Validate checks that identifiers are present and unique and that every task names its column.
func (d SnapshotDocument) Validate() error {
	if strings.TrimSpace(d.Schema) != SnapshotSchema {
		return fmt.Errorf("%w: unsupported schema %q", ErrInvalidSnapshot, d.Schema)
	}
	columnIDs := map[domain.ID]struct{}{}
	taskIDs := map[domain.ID]struct{}{}
	for i, column := range d.Columns {
		if column.ID.IsZero() {
			return fmt.Errorf("%w: columns[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, ok := columnIDs[column.ID]; ok {
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalidSnapshot, column.ID)
		}
		columnIDs[column.ID] = struct{}{}
		for j, task := range column.Tasks {
			if task.ID.IsZero() {
				return fmt.Errorf("%w: columns[%d].tasks[%d].id is required", ErrInvalidSnapshot, i, j)
			}
			if _, ok := taskIDs[task.ID]; ok {
				return fmt.Errorf("%w: duplicate task id %q", ErrInvalidSnapshot, task.ID)
			}
			if !task.ColumnID.IsZero() && task.ColumnID != column.ID {
				return fmt.Errorf("%w: task %q is listed under %q but names column %q", ErrInvalidSnapshot, task.ID, column.ID, task.ColumnID)
			}
			taskIDs[task.ID] = struct{}{}
		}
	}
	return nil
}
