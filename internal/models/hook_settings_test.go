package models

import "testing"

func TestHookSettings_PlaySound(t *testing.T) {
	s := HookSettings{"sound": "chime.wav"}
	got, ok := s.PlaySound()
	if !ok || got.Sound != "chime.wav" {
		t.Fatalf("PlaySound() = %+v, %v", got, ok)
	}

	if _, ok := (HookSettings{}).PlaySound(); ok {
		t.Fatal("expected missing sound key to report ok=false")
	}

	if _, ok := (HookSettings{"sound": 5}).PlaySound(); ok {
		t.Fatal("expected non-string sound to report ok=false")
	}
}

func TestHookSettings_MoveTask(t *testing.T) {
	next, ok := (HookSettings{"target": "next"}).MoveTask()
	if !ok || !next.Target.Next || next.Target.Named != "" {
		t.Fatalf("MoveTask(next) = %+v, %v", next, ok)
	}

	named, ok := (HookSettings{"target": "done"}).MoveTask()
	if !ok || named.Target.Next || named.Target.Named != "done" {
		t.Fatalf("MoveTask(named) = %+v, %v", named, ok)
	}

	if _, ok := (HookSettings{}).MoveTask(); ok {
		t.Fatal("expected missing target key to report ok=false")
	}
}

func TestTask_ExecutedHooks(t *testing.T) {
	task := &Task{}
	if task.HasExecuted("ch_1") {
		t.Fatal("expected fresh task to report no executed hooks")
	}

	task.MarkExecuted("ch_1")
	if !task.HasExecuted("ch_1") {
		t.Fatal("expected ch_1 to be marked executed")
	}

	clone := task.CloneExecutedHooks()
	clone["ch_2"] = struct{}{}
	if task.HasExecuted("ch_2") {
		t.Fatal("mutating clone must not affect the source task")
	}
}

func TestHookExecutionStatus_Classification(t *testing.T) {
	active := []HookExecutionStatus{HookExecutionPending, HookExecutionRunning}
	terminal := []HookExecutionStatus{HookExecutionCompleted, HookExecutionFailed, HookExecutionCancelled, HookExecutionSkipped}

	for _, s := range active {
		if !s.IsActive() || s.IsTerminal() {
			t.Fatalf("status %q expected active, non-terminal", s)
		}
	}
	for _, s := range terminal {
		if s.IsActive() || !s.IsTerminal() {
			t.Fatalf("status %q expected terminal, non-active", s)
		}
	}
}
