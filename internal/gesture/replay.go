package gesture

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// Logger receives one trace line per replayed step.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// Result summarizes one replay.
type Result struct {
	Steps    int
	Applied  int
	Snapshot app.Snapshot
	Aliases  map[string]domain.ID
}

// Replayer drives a session from scripted steps.
type Replayer struct {
	session *app.Session
	logger  Logger
	aliases map[string]domain.ID
	names   map[domain.ID]string
}

// NewReplayer constructs a replayer bound to session. A nil logger is silent.
func NewReplayer(session *app.Session, logger Logger) *Replayer {
	return &Replayer{
		session: session,
		logger:  logger,
		aliases: map[string]domain.ID{},
		names:   map[domain.ID]string{},
	}
}

// Replay runs every step in order. It stops at the first failed expectation or when ctx is done.
func (r *Replayer) Replay(ctx context.Context, script Script) (Result, error) {
	if err := script.Validate(); err != nil {
		return Result{}, err
	}
	for _, title := range script.SeedColumns {
		column := r.session.Board.AddTitledColumn(title)
		r.bind(title, column.ID)
	}

	result := Result{}
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		applied, err := r.apply(step)
		result.Steps++
		if applied {
			result.Applied++
		}
		r.trace(i, step, applied)
		if err != nil {
			result.Snapshot = r.session.Snapshot()
			result.Aliases = r.aliasCopy()
			return result, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	result.Snapshot = r.session.Snapshot()
	result.Aliases = r.aliasCopy()
	return result, nil
}

// apply runs one step against the session.
func (r *Replayer) apply(step Step) (bool, error) {
	board, drag := r.session.Board, r.session.Drag
	switch step.Op {
	case OpAddColumn:
		var column domain.Column
		if step.Title != nil {
			column = board.AddTitledColumn(*step.Title)
		} else {
			column = board.AddColumn()
		}
		r.bind(step.As, column.ID)
		return true, nil
	case OpAddTask:
		task, ok := board.AddTask(r.resolve(step.Column))
		if !ok {
			return false, nil
		}
		if step.Content != nil {
			board.UpdateTaskContent(task.ID, *step.Content)
		}
		r.bind(step.As, task.ID)
		return true, nil
	case OpRenameColumn:
		return board.RenameColumn(r.resolve(step.Column), *step.Title), nil
	case OpEditTask:
		return board.UpdateTaskContent(r.resolve(step.Task), *step.Content), nil
	case OpRemoveColumn:
		return board.RemoveColumn(r.resolve(step.Column)), nil
	case OpRemoveTask:
		return board.RemoveTask(r.resolve(step.Task)), nil
	case OpDragStart:
		if strings.TrimSpace(step.Task) != "" {
			return drag.StartTaskDrag(r.resolve(step.Task)), nil
		}
		return drag.StartColumnDrag(r.resolve(step.Column)), nil
	case OpDragOver:
		return drag.DragOver(r.target(step)), nil
	case OpDragEnd:
		return drag.DragEnd(r.target(step)), nil
	case OpDragCancel:
		drag.Cancel()
		return false, nil
	case OpExpect:
		return false, r.expect(step)
	default:
		return false, fmt.Errorf("%w: unknown op %q", ErrInvalidScript, step.Op)
	}
}

// target resolves the step's drop target, if any.
func (r *Replayer) target(step Step) app.DropTarget {
	switch {
	case strings.TrimSpace(step.Task) != "":
		return app.TaskTarget(r.resolve(step.Task))
	case strings.TrimSpace(step.Column) != "":
		return app.ColumnTarget(r.resolve(step.Column))
	default:
		return app.NoTarget
	}
}

// expect compares current order with the step's expectation.
func (r *Replayer) expect(step Step) error {
	snap := r.session.Snapshot()
	if step.Columns != nil {
		got := make([]string, 0, snap.ColumnCount())
		for _, column := range snap.ColumnsInOrder() {
			got = append(got, r.name(column.ID))
		}
		if !slices.Equal(got, step.Columns) {
			return fmt.Errorf("%w: columns = [%s], want [%s]", ErrExpectationFailed, strings.Join(got, ", "), strings.Join(step.Columns, ", "))
		}
	}
	if step.Column == "" {
		return nil
	}
	columnID := r.resolve(step.Column)
	if _, ok := snap.Column(columnID); !ok {
		return fmt.Errorf("%w: column %q does not exist", ErrExpectationFailed, step.Column)
	}
	want := step.Tasks
	if want == nil {
		want = []string{}
	}
	got := []string{}
	for _, task := range snap.TasksForColumn(columnID) {
		got = append(got, r.name(task.ID))
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: column %s tasks = [%s], want [%s]", ErrExpectationFailed, step.Column, strings.Join(got, ", "), strings.Join(want, ", "))
	}
	return nil
}

// bind records alias for id when the step named one.
func (r *Replayer) bind(alias string, id domain.ID) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return
	}
	r.aliases[alias] = id
	r.names[id] = alias
}

// resolve maps an alias to its id, or treats ref as a literal id.
func (r *Replayer) resolve(ref string) domain.ID {
	ref = strings.TrimSpace(ref)
	if id, ok := r.aliases[ref]; ok {
		return id
	}
	return domain.ID(ref)
}

// name maps an id back to its alias for readable expectation output.
func (r *Replayer) name(id domain.ID) string {
	if alias, ok := r.names[id]; ok {
		return alias
	}
	return id.String()
}

// aliasCopy returns a copy of the alias table.
func (r *Replayer) aliasCopy() map[string]domain.ID {
	return maps.Clone(r.aliases)
}

// trace logs one replayed step.
func (r *Replayer) trace(i int, step Step, applied bool) {
	if r.logger == nil {
		return
	}
	r.logger.Debug("gesture step", "index", i, "op", string(step.Op), "applied", applied)
}
