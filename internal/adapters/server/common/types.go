// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// Drag actions accepted by DragRequest.
const (
	DragActionStart  = "start"
	DragActionOver   = "over"
	DragActionEnd    = "end"
	DragActionCancel = "cancel"
)

// Target kinds accepted by requests naming a drag target.
const (
	TargetKindColumn = "column"
	TargetKindTask   = "task"
)

// supportedDragActions stores all drag actions in canonical order.
var supportedDragActions = []string{DragActionStart, DragActionOver, DragActionEnd, DragActionCancel}

// SupportedDragActions returns all canonical drag action values.
func SupportedDragActions() []string {
	return append([]string(nil), supportedDragActions...)
}

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// BoardState is the board document returned to HTTP and MCP callers.
type BoardState struct {
	Board         app.SnapshotDocument `json:"board"`
	StateHash     string               `json:"state_hash"`
	LastChangeSeq uint64               `json:"last_change_seq,omitempty"`
	Drag          DragState            `json:"drag"`
}

// DragState describes the active gesture.
type DragState struct {
	State  string         `json:"state"`
	ID     domain.ID      `json:"id,omitempty"`
	Column *domain.Column `json:"column,omitempty"`
	Task   *domain.Task   `json:"task,omitempty"`
}

// MutationResult reports whether one operation changed the board. Stale ids yield Applied=false.
type MutationResult struct {
	Applied bool   `json:"applied"`
	Version uint64 `json:"version"`
}

// ColumnResult reports one created column.
type ColumnResult struct {
	MutationResult
	Column domain.Column `json:"column"`
}

// TaskResult reports one created task.
type TaskResult struct {
	MutationResult
	Task *domain.Task `json:"task,omitempty"`
}

// DragResult reports one drag action and the resulting gesture state.
type DragResult struct {
	MutationResult
	Drag DragState `json:"drag"`
}

// AddColumnRequest captures input for a new column.
type AddColumnRequest struct {
	Title *string `json:"title,omitempty"`
}

// RenameColumnRequest captures input for renaming one column.
type RenameColumnRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MoveColumnRequest captures input for moving one column onto another's position.
type MoveColumnRequest struct {
	ID string `json:"id"`
	To string `json:"to"`
}

// AddTaskRequest captures input for a new task.
type AddTaskRequest struct {
	ColumnID string  `json:"column_id"`
	Content  *string `json:"content,omitempty"`
}

// UpdateTaskRequest captures input for replacing task content.
type UpdateTaskRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// MoveTaskRequest captures input for reordering or reassigning one task.
type MoveTaskRequest struct {
	ID         string `json:"id"`
	Over       string `json:"over"`
	OverColumn bool   `json:"over_is_column"`
}

// DragRequest captures one drag gesture event.
type DragRequest struct {
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
	ID     string `json:"id,omitempty"`
}

// BoardReader exposes read-only board state.
type BoardReader interface {
	BoardState(context.Context) (BoardState, error)
	ListChanges(context.Context, int) ([]domain.ChangeEvent, error)
}

// ColumnService exposes column operations.
type ColumnService interface {
	AddColumn(context.Context, AddColumnRequest) (ColumnResult, error)
	RenameColumn(context.Context, RenameColumnRequest) (MutationResult, error)
	RemoveColumn(context.Context, string) (MutationResult, error)
	MoveColumn(context.Context, MoveColumnRequest) (MutationResult, error)
}

// TaskService exposes task operations.
type TaskService interface {
	AddTask(context.Context, AddTaskRequest) (TaskResult, error)
	UpdateTask(context.Context, UpdateTaskRequest) (MutationResult, error)
	RemoveTask(context.Context, string) (MutationResult, error)
	MoveTask(context.Context, MoveTaskRequest) (MutationResult, error)
}

// DragService exposes the drag gesture controller.
type DragService interface {
	DragState(context.Context) (DragState, error)
	Drag(context.Context, DragRequest) (DragResult, error)
}

// BoardService bundles every board surface served over transports.
type BoardService interface {
	BoardReader
	ColumnService
	TaskService
	DragService
}
