package gesture

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/google/go-cmp/cmp"
)

const crossColumnScript = `
name = "cross column move"

[[steps]]
op = "add_column"
as = "col1"

[[steps]]
op = "add_column"
as = "col2"

[[steps]]
op = "add_task"
column = "col1"
as = "t1"
content = "write tests"

[[steps]]
op = "add_task"
column = "col1"
as = "t2"

[[steps]]
op = "add_task"
column = "col2"
as = "t3"

[[steps]]
op = "drag_start"
task = "t1"

[[steps]]
op = "drag_over"
task = "t3"

[[steps]]
op = "drag_end"
task = "t3"

[[steps]]
op = "expect"
column = "col1"
tasks = ["t2"]

[[steps]]
op = "expect"
column = "col2"
tasks = ["t3", "t1"]
`

type stepLogger struct {
	count int
}

func (l *stepLogger) Debug(string, ...any) {
	l.count++
}

func TestReplayCrossColumnMove(t *testing.T) {
	script, err := Parse(strings.NewReader(crossColumnScript))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	logger := &stepLogger{}
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	result, err := NewReplayer(session, logger).Replay(context.Background(), script)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Steps != 10 || result.Applied != 7 {
		t.Fatalf("unexpected counts steps=%d applied=%d", result.Steps, result.Applied)
	}
	if logger.count != 10 {
		t.Fatalf("expected one trace per step, got %d", logger.count)
	}
	t1, ok := result.Snapshot.Task(result.Aliases["t1"])
	if !ok {
		t.Fatal("expected t1 to exist")
	}
	if diff := cmp.Diff(domain.Task{ID: result.Aliases["t1"], ColumnID: result.Aliases["col2"], Content: "write tests"}, t1); diff != "" {
		t.Fatalf("t1 mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayExpectationFailure(t *testing.T) {
	script := Script{
		SeedColumns: []string{"todo", "done"},
		Steps: []Step{
			{Op: OpAddTask, Column: "todo", As: "a"},
			{Op: OpExpect, Columns: []string{"done", "todo"}},
		},
	}
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	result, err := NewReplayer(session, nil).Replay(context.Background(), script)
	if !errors.Is(err, ErrExpectationFailed) {
		t.Fatalf("expected ErrExpectationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "columns = [todo, done]") {
		t.Fatalf("unexpected error text %q", err)
	}
	if result.Steps != 2 || result.Snapshot.TaskCount() != 1 {
		t.Fatalf("unexpected partial result %#v", result)
	}
}

func TestReplayStaleReferencesAreNoops(t *testing.T) {
	script := Script{Steps: []Step{
		{Op: OpAddColumn, As: "a"},
		{Op: OpAddTask, Column: "ghost", As: "lost"},
		{Op: OpDragStart, Task: "lost"},
		{Op: OpDragStart, Column: "a"},
		{Op: OpRemoveColumn, Column: "a"},
		{Op: OpDragEnd, Column: "a"},
		{Op: OpDragCancel},
		{Op: OpExpect, Columns: []string{}},
	}}
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	result, err := NewReplayer(session, nil).Replay(context.Background(), script)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 3 {
		t.Fatalf("expected 3 applied steps, got %d", result.Applied)
	}
	if _, ok := result.Aliases["lost"]; ok {
		t.Fatal("failed add_task bound an alias")
	}
}

func TestReplayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	_, err := NewReplayer(session, nil).Replay(ctx, Script{Steps: []Step{{Op: OpAddColumn}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReplayBlankTaskReferenceUsesColumn(t *testing.T) {
	script := Script{
		SeedColumns: []string{"todo", "doing"},
		Steps: []Step{
			{Op: OpAddTask, Column: "todo", As: "t1"},
			{Op: OpDragStart, Task: "t1"},
			{Op: OpDragOver, Column: "doing", Task: "   "},
			{Op: OpDragEnd, Column: "doing", Task: " "},
			{Op: OpExpect, Column: "doing", Tasks: []string{"t1"}},
		},
	}
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	result, err := NewReplayer(session, nil).Replay(context.Background(), script)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 4 {
		t.Fatalf("expected 4 applied steps, got %d", result.Applied)
	}
}

func TestReplayTitledColumnsPublishOnce(t *testing.T) {
	title := "Backlog"
	script := Script{
		SeedColumns: []string{"todo"},
		Steps:       []Step{{Op: OpAddColumn, As: "b", Title: &title}},
	}
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{})
	var seen []string
	stop := session.Subscribe(func(snap app.Snapshot) {
		for _, column := range snap.ColumnsInOrder() {
			seen = append(seen, column.Title)
		}
	})
	defer stop()

	result, err := NewReplayer(session, nil).Replay(context.Background(), script)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if got := result.Snapshot.Version(); got != 2 {
		t.Fatalf("expected one mutation per titled column, version = %d", got)
	}
	if diff := cmp.Diff([]string{"todo", "todo", "Backlog"}, seen); diff != "" {
		t.Fatalf("subscribers saw intermediate titles (-want +got):\n%s", diff)
	}
	if got := len(session.Board.ChangeEvents(10)); got != 2 {
		t.Fatalf("expected 2 change events, got %d", got)
	}
}
