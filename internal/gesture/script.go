package gesture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Op names one scripted board or drag action.
type Op string

// Op values accepted in scripts.
const (
	OpAddColumn    Op = "add_column"
	OpAddTask      Op = "add_task"
	OpRenameColumn Op = "rename_column"
	OpEditTask     Op = "edit_task"
	OpRemoveColumn Op = "remove_column"
	OpRemoveTask   Op = "remove_task"
	OpDragStart    Op = "drag_start"
	OpDragOver     Op = "drag_over"
	OpDragEnd      Op = "drag_end"
	OpDragCancel   Op = "drag_cancel"
	OpExpect       Op = "expect"
)

// ErrInvalidScript and related errors describe script failures.
var (
	ErrInvalidScript     = errors.New("invalid gesture script")
	ErrExpectationFailed = errors.New("expectation failed")
)

// Script is an ordered list of gesture steps.
type Script struct {
	Name        string   `toml:"name"`
	SeedColumns []string `toml:"seed_columns"`
	Steps       []Step   `toml:"steps"`
}

// Step is one scripted action. Column and Task hold aliases bound by earlier steps, or literal
// ids when no alias matches.
type Step struct {
	Op      Op       `toml:"op"`
	As      string   `toml:"as"`
	Column  string   `toml:"column"`
	Task    string   `toml:"task"`
	Title   *string  `toml:"title"`
	Content *string  `toml:"content"`
	Tasks   []string `toml:"tasks"`
	Columns []string `toml:"columns"`
}

// Parse decodes and validates a TOML script.
func Parse(r io.Reader) (Script, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	var script Script
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&script); err != nil {
		return Script{}, fmt.Errorf("decode toml: %w", err)
	}
	if err := script.Validate(); err != nil {
		return Script{}, err
	}
	return script, nil
}

// Load reads and parses one script file.
func Load(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks each step carries the fields its op needs.
func (s Script) Validate() error {
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("%w: steps[%d] (%s): %v", ErrInvalidScript, i, step.Op, err)
		}
	}
	return nil
}

// validate checks one step.
func (s Step) validate() error {
	column := strings.TrimSpace(s.Column) != ""
	task := strings.TrimSpace(s.Task) != ""
	switch s.Op {
	case OpAddColumn, OpDragEnd, OpDragCancel:
		return nil
	case OpAddTask, OpRemoveColumn:
		if !column {
			return errors.New("column is required")
		}
	case OpRenameColumn:
		if !column {
			return errors.New("column is required")
		}
		if s.Title == nil {
			return errors.New("title is required")
		}
	case OpEditTask:
		if !task {
			return errors.New("task is required")
		}
		if s.Content == nil {
			return errors.New("content is required")
		}
	case OpRemoveTask:
		if !task {
			return errors.New("task is required")
		}
	case OpDragStart, OpDragOver:
		if column == task {
			return errors.New("exactly one of column or task is required")
		}
	case OpExpect:
		if s.Columns == nil && !column {
			return errors.New("columns or column is required")
		}
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}
