package domain

// Task represents one card. Column membership is the ColumnID field; order within a column is the
// task's relative position among same-column tasks in the board's shared task sequence.
type Task struct {
	ID       ID     `json:"id"`
	ColumnID ID     `json:"column_id"`
	Content  string `json:"content"`
}

// NewTask constructs a task bound to one column.
func NewTask(id, columnID ID, content string) (Task, error) {
	if id.IsZero() {
		return Task{}, ErrInvalidID
	}
	if columnID.IsZero() {
		return Task{}, ErrInvalidColumnID
	}
	return Task{
		ID:       id,
		ColumnID: columnID,
		Content:  content,
	}, nil
}

// UpdateContent replaces the task content.
func (t *Task) UpdateContent(content string) {
	t.Content = content
}

// Reassign moves the task into another column without touching its sequence position.
func (t *Task) Reassign(columnID ID) error {
	if columnID.IsZero() {
		return ErrInvalidColumnID
	}
	t.ColumnID = columnID
	return nil
}
