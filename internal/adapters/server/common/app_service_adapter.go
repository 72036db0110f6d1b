package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// defaultChangeLimit bounds change feeds when callers omit a limit.
const defaultChangeLimit = 50

// SessionAdapter maps transport contracts onto one app.Session.
type SessionAdapter struct {
	mu      sync.Mutex
	session *app.Session
}

// NewSessionAdapter builds one common adapter over a board session.
func NewSessionAdapter(session *app.Session) *SessionAdapter {
	return &SessionAdapter{session: session}
}

// ready checks configuration and request cancellation.
func (a *SessionAdapter) ready(ctx context.Context) error {
	if a == nil || a.session == nil {
		return fmt.Errorf("session adapter is not configured: %w", ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request canceled: %w", err)
	}
	return nil
}

// result captures the post-operation version.
func (a *SessionAdapter) result(applied bool) MutationResult {
	return MutationResult{Applied: applied, Version: a.session.Snapshot().Version()}
}

// BoardState returns the board document, its content hash, and the drag state.
func (a *SessionAdapter) BoardState(ctx context.Context) (BoardState, error) {
	if err := a.ready(ctx); err != nil {
		return BoardState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := a.session.Snapshot().Document()
	hash, err := stateHash(doc)
	if err != nil {
		return BoardState{}, err
	}
	state := BoardState{
		Board:     doc,
		StateHash: hash,
		Drag:      dragStateFromApp(a.session.Drag.Active()),
	}
	if latest := a.session.Board.ChangeEvents(1); len(latest) > 0 {
		state.LastChangeSeq = latest[0].Seq
	}
	return state, nil
}

// ListChanges returns recent applied mutations, newest first.
func (a *SessionAdapter) ListChanges(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultChangeLimit
	}
	return a.session.Board.ChangeEvents(limit), nil
}

// AddColumn appends one column, optionally titled.
func (a *SessionAdapter) AddColumn(ctx context.Context, in AddColumnRequest) (ColumnResult, error) {
	if err := a.ready(ctx); err != nil {
		return ColumnResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var column domain.Column
	if in.Title != nil {
		column = a.session.Board.AddTitledColumn(*in.Title)
	} else {
		column = a.session.Board.AddColumn()
	}
	return ColumnResult{MutationResult: a.result(true), Column: column}, nil
}

// RenameColumn replaces one column title.
func (a *SessionAdapter) RenameColumn(ctx context.Context, in RenameColumnRequest) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	id, err := parseID("id", in.ID)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.RenameColumn(id, in.Title)), nil
}

// RemoveColumn deletes one column and its tasks.
func (a *SessionAdapter) RemoveColumn(ctx context.Context, rawID string) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	id, err := parseID("id", rawID)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.RemoveColumn(id)), nil
}

// MoveColumn moves one column onto another's position.
func (a *SessionAdapter) MoveColumn(ctx context.Context, in MoveColumnRequest) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	from, err := parseID("id", in.ID)
	if err != nil {
		return MutationResult{}, err
	}
	to, err := parseID("to", in.To)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.ReorderColumns(from, to)), nil
}

// AddTask appends one task to a column, optionally with content.
func (a *SessionAdapter) AddTask(ctx context.Context, in AddTaskRequest) (TaskResult, error) {
	if err := a.ready(ctx); err != nil {
		return TaskResult{}, err
	}
	columnID, err := parseID("column_id", in.ColumnID)
	if err != nil {
		return TaskResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	task, ok := a.session.Board.AddTask(columnID)
	if !ok {
		return TaskResult{MutationResult: a.result(false)}, nil
	}
	if in.Content != nil && a.session.Board.UpdateTaskContent(task.ID, *in.Content) {
		task.UpdateContent(*in.Content)
	}
	return TaskResult{MutationResult: a.result(true), Task: &task}, nil
}

// UpdateTask replaces one task's content.
func (a *SessionAdapter) UpdateTask(ctx context.Context, in UpdateTaskRequest) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	id, err := parseID("id", in.ID)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.UpdateTaskContent(id, in.Content)), nil
}

// RemoveTask deletes one task.
func (a *SessionAdapter) RemoveTask(ctx context.Context, rawID string) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	id, err := parseID("id", rawID)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.RemoveTask(id)), nil
}

// MoveTask reorders or reassigns one task relative to a task or column.
func (a *SessionAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (MutationResult, error) {
	if err := a.ready(ctx); err != nil {
		return MutationResult{}, err
	}
	id, err := parseID("id", in.ID)
	if err != nil {
		return MutationResult{}, err
	}
	over, err := parseID("over", in.Over)
	if err != nil {
		return MutationResult{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result(a.session.Board.ReorderOrReassignTask(id, over, in.OverColumn)), nil
}

// DragState returns the active gesture.
func (a *SessionAdapter) DragState(ctx context.Context) (DragState, error) {
	if err := a.ready(ctx); err != nil {
		return DragState{}, err
	}
	return dragStateFromApp(a.session.Drag.Active()), nil
}

// Drag applies one drag gesture event.
func (a *SessionAdapter) Drag(ctx context.Context, in DragRequest) (DragResult, error) {
	if err := a.ready(ctx); err != nil {
		return DragResult{}, err
	}
	action := strings.ToLower(strings.TrimSpace(in.Action))
	if !slices.Contains(supportedDragActions, action) {
		return DragResult{}, fmt.Errorf("unsupported action %q: %w", in.Action, ErrInvalidRequest)
	}
	target, err := parseTarget(in.Kind, in.ID, action == DragActionStart)
	if err != nil {
		return DragResult{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	drag := a.session.Drag
	var applied bool
	switch action {
	case DragActionStart:
		if target.Kind == app.TargetColumn {
			applied = drag.StartColumnDrag(target.ID)
		} else {
			applied = drag.StartTaskDrag(target.ID)
		}
	case DragActionOver:
		applied = drag.DragOver(target)
	case DragActionEnd:
		applied = drag.DragEnd(target)
	case DragActionCancel:
		drag.Cancel()
	}
	return DragResult{
		MutationResult: a.result(applied),
		Drag:           dragStateFromApp(drag.Active()),
	}, nil
}

// parseTarget validates a kind/id pair. Targets are optional except when required is set.
func parseTarget(kind, rawID string, required bool) (app.DropTarget, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	rawID = strings.TrimSpace(rawID)
	if kind == "" && rawID == "" && !required {
		return app.NoTarget, nil
	}
	id, err := parseID("id", rawID)
	if err != nil {
		return app.DropTarget{}, err
	}
	switch kind {
	case TargetKindColumn:
		return app.ColumnTarget(id), nil
	case TargetKindTask:
		return app.TaskTarget(id), nil
	default:
		return app.DropTarget{}, fmt.Errorf("kind must be %q or %q: %w", TargetKindColumn, TargetKindTask, ErrInvalidRequest)
	}
}

// parseID validates one required identifier field.
func parseID(field, raw string) (domain.ID, error) {
	id, err := domain.ParseID(raw)
	if err != nil {
		return "", fmt.Errorf("%s is required: %w", field, errors.Join(ErrInvalidRequest, err))
	}
	return id, nil
}

// dragStateFromApp converts controller state into its transport shape.
func dragStateFromApp(active app.ActiveDrag) DragState {
	out := DragState{State: active.State.String(), ID: active.ID()}
	switch active.State {
	case app.DragColumn:
		column := active.Column
		out.Column = &column
	case app.DragTask:
		task := active.Task
		out.Task = &task
	}
	return out
}

// stateHash returns a stable digest of the board document.
func stateHash(doc app.SnapshotDocument) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(doc.Columns)
	if err != nil {
		return "", fmt.Errorf("encode board state: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
