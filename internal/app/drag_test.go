package app

import (
	"testing"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestDragTaskEndToEnd(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)

	if !drag.StartTaskDrag("t1") {
		t.Fatal("StartTaskDrag(t1) = false")
	}
	active := drag.Active()
	if active.State != DragTask || active.Task.Content != "Task 1" {
		t.Fatalf("unexpected active drag %#v", active)
	}
	if !drag.DragOver(TaskTarget("t3")) {
		t.Fatal("DragOver(t3) = false")
	}
	if drag.DragEnd(TaskTarget("t3")) {
		t.Fatal("DragEnd() for a task drag reported an extra mutation")
	}
	if drag.Active().Dragging() {
		t.Fatal("expected idle after DragEnd")
	}
	if diff := cmp.Diff([]domain.ID{"t2"}, taskIDs(b.TasksForColumn("c1"))); diff != "" {
		t.Fatalf("c1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.ID{"t3", "t1"}, taskIDs(b.TasksForColumn("c2"))); diff != "" {
		t.Fatalf("c2 mismatch (-want +got):\n%s", diff)
	}
}

func TestDragTaskOverColumnReassigns(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)
	drag.StartTaskDrag("t2")
	if !drag.DragOver(ColumnTarget("c2")) {
		t.Fatal("DragOver(column c2) = false")
	}
	if diff := cmp.Diff([]domain.ID{"t2", "t3"}, taskIDs(b.TasksForColumn("c2"))); diff != "" {
		t.Fatalf("c2 mismatch (-want +got):\n%s", diff)
	}
	if drag.DragOver(TaskTarget("t2")) {
		t.Fatal("DragOver(self) = true")
	}
	if drag.DragOver(NoTarget) {
		t.Fatal("DragOver(none) = true")
	}
}

func TestDragColumnReordersOnDrop(t *testing.T) {
	b := NewBoard(scriptedIDs("a", "b", "c"), BoardConfig{})
	for range 3 {
		b.AddColumn()
	}
	drag := NewDragController(b, nil)
	if !drag.StartColumnDrag("a") {
		t.Fatal("StartColumnDrag(a) = false")
	}
	if drag.DragOver(ColumnTarget("c")) {
		t.Fatal("DragOver during a column drag reported a change")
	}
	if diff := cmp.Diff([]domain.ID{"a", "b", "c"}, columnIDs(b.ColumnsInOrder())); diff != "" {
		t.Fatalf("columns moved before drop (-want +got):\n%s", diff)
	}
	if !drag.DragEnd(ColumnTarget("c")) {
		t.Fatal("DragEnd(c) = false")
	}
	if diff := cmp.Diff([]domain.ID{"b", "c", "a"}, columnIDs(b.ColumnsInOrder())); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestDragColumnDropNoops(t *testing.T) {
	tests := []struct {
		name   string
		target DropTarget
	}{
		{name: "self", target: ColumnTarget("a")},
		{name: "task target", target: TaskTarget("t1")},
		{name: "no target", target: NoTarget},
		{name: "missing column", target: ColumnTarget("zzz")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBoard(scriptedIDs("a", "b", "t1"), BoardConfig{})
			b.AddColumn()
			b.AddColumn()
			b.AddTask("b")
			drag := NewDragController(b, nil)
			drag.StartColumnDrag("a")
			if drag.DragEnd(tc.target) {
				t.Fatalf("DragEnd(%#v) = true", tc.target)
			}
			if drag.Active().Dragging() {
				t.Fatal("expected idle after DragEnd")
			}
			if diff := cmp.Diff([]domain.ID{"a", "b"}, columnIDs(b.ColumnsInOrder())); diff != "" {
				t.Fatalf("columns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDragStartRejections(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)
	if drag.StartTaskDrag("missing") || drag.StartColumnDrag("missing") {
		t.Fatal("expected stale ids to be rejected")
	}
	if !drag.StartTaskDrag("t1") {
		t.Fatal("StartTaskDrag(t1) = false")
	}
	if drag.StartColumnDrag("c1") || drag.StartTaskDrag("t2") {
		t.Fatal("expected second drag start to be rejected")
	}
	if got := drag.Active().ID(); got != "t1" {
		t.Fatalf("active drag changed to %q", got)
	}
	if drag.DragEnd(NoTarget) {
		t.Fatal("DragEnd(none) = true")
	}
	if drag.DragEnd(NoTarget) {
		t.Fatal("DragEnd while idle = true")
	}
}

func TestDragCancelKeepsAppliedMoves(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)
	drag.StartTaskDrag("t1")
	drag.DragOver(TaskTarget("t3"))
	drag.Cancel()
	if drag.Active().Dragging() {
		t.Fatal("expected idle after Cancel")
	}
	if got, _ := b.Snapshot().Task("t1"); got.ColumnID != "c2" {
		t.Fatalf("expected applied move to stay, got column %q", got.ColumnID)
	}
	drag.Cancel()
}

func TestDeletionMidDragIsSafe(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)
	drag.StartTaskDrag("t1")
	b.RemoveTask("t1")
	if drag.DragOver(TaskTarget("t3")) {
		t.Fatal("DragOver with a deleted task = true")
	}
	if drag.DragEnd(TaskTarget("t3")) {
		t.Fatal("DragEnd with a deleted task = true")
	}

	drag.StartTaskDrag("t2")
	b.RemoveColumn("c2")
	if drag.DragOver(TaskTarget("t3")) || drag.DragOver(ColumnTarget("c2")) {
		t.Fatal("DragOver onto deleted entities = true")
	}
	drag.DragEnd(NoTarget)

	drag.StartColumnDrag("c1")
	b.RemoveColumn("c1")
	c3 := b.AddColumn()
	if drag.DragEnd(ColumnTarget(c3.ID)) {
		t.Fatal("DragEnd for a deleted column = true")
	}
	assertValid(t, b)
}

func TestDragSubscribeSeesStateChanges(t *testing.T) {
	b := newFixtureBoard(t)
	drag := NewDragController(b, nil)
	var states []DragState
	unsubscribe := drag.Subscribe(func(a ActiveDrag) {
		states = append(states, a.State)
		_ = drag.Active()
	})
	defer unsubscribe()
	drag.StartColumnDrag("c1")
	drag.DragEnd(NoTarget)
	drag.StartTaskDrag("t1")
	drag.Cancel()
	want := []DragState{DragColumn, DragIdle, DragTask, DragIdle}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestDragStateStrings(t *testing.T) {
	if DragIdle.String() != "idle" || DragColumn.String() != "dragging_column" || DragTask.String() != "dragging_task" {
		t.Fatal("unexpected drag state names")
	}
	if TargetNone.String() != "none" || TargetColumn.String() != "column" || TargetTask.String() != "task" {
		t.Fatal("unexpected target kind names")
	}
}
