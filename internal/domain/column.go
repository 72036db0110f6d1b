package domain

// Column represents one ordered lane on the board. Display order comes from the board's column
// sequence, never from the column itself.
type Column struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// NewColumn constructs a column with a validated identifier.
func NewColumn(id ID, title string) (Column, error) {
	if id.IsZero() {
		return Column{}, ErrInvalidID
	}
	return Column{
		ID:    id,
		Title: title,
	}, nil
}

// Rename replaces the column title.
func (c *Column) Rename(title string) {
	c.Title = title
}
