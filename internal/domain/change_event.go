package domain

// ChangeOperation describes one applied board mutation.
type ChangeOperation string

// ChangeOperation values recorded by the board change log.
const (
	ChangeOperationCreate   ChangeOperation = "create"
	ChangeOperationRename   ChangeOperation = "rename"
	ChangeOperationUpdate   ChangeOperation = "update"
	ChangeOperationMove     ChangeOperation = "move"
	ChangeOperationReassign ChangeOperation = "reassign"
	ChangeOperationDelete   ChangeOperation = "delete"
)

// EntityKind identifies which board entity a change touched.
type EntityKind string

// EntityKind values.
const (
	EntityKindColumn EntityKind = "column"
	EntityKindTask   EntityKind = "task"
)

// ChangeEvent represents a single activity-log entry for one board mutation.
type ChangeEvent struct {
	Seq        uint64          `json:"seq"`
	Operation  ChangeOperation `json:"operation"`
	EntityKind EntityKind      `json:"entity_kind"`
	EntityID   ID              `json:"entity_id"`
	ColumnID   ID              `json:"column_id,omitempty"`
	Summary    string          `json:"summary,omitempty"`
}
