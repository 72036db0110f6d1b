package app

import "strings"

// SessionConfig holds configuration for one board session.
type SessionConfig struct {
	Board       BoardConfig
	SeedColumns []string
}

// Session bundles the board and the drag controller bound to it.
type Session struct {
	Board *Board
	Drag  *DragController
}

// NewSession constructs a session, seeding any configured column titles.
func NewSession(idGen IDGenerator, cfg SessionConfig) *Session {
	board := NewBoard(idGen, cfg.Board)
	for _, title := range cfg.SeedColumns {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		board.AddTitledColumn(title)
	}
	return &Session{
		Board: board,
		Drag:  NewDragController(board, cfg.Board.Logger),
	}
}

// Snapshot returns the current board snapshot.
func (s *Session) Snapshot() Snapshot {
	return s.Board.Snapshot()
}

// Subscribe registers fn to receive each newly published snapshot.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	return s.Board.Subscribe(fn)
}
