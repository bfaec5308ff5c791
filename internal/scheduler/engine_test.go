package scheduler

import (
	"testing"
	"time"

	"github.com/carlodandan/todoit/internal/model"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(Event{TaskID: "later", Stage: StageDueNow, TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Event{TaskID: "sooner", Stage: StageDueNow, TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.TaskID != "sooner" || second.TaskID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.TaskID, second.TaskID)
	}
}

func TestCancelSuppressesPendingEvents(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	for _, ev := range Plan("doomed", now.Add(60*time.Millisecond), now) {
		if err := engine.Schedule(ev); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	if err := engine.Schedule(Event{TaskID: "kept", Stage: StageDueNow, TriggerAt: now.Add(90 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule kept: %v", err)
	}

	engine.Cancel("doomed")
	engine.Cancel("doomed") // idempotent

	got := waitEvent(t, engine.C(), time.Second)
	if got.TaskID != "kept" {
		t.Fatalf("cancelled task still fired: %#v", got)
	}
}

func TestCancelAllSuppressesEverything(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		if err := engine.Schedule(Event{TaskID: id, Stage: StageDueNow, TriggerAt: now.Add(30 * time.Millisecond)}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}
	engine.CancelAll()

	select {
	case ev := <-engine.C():
		t.Fatalf("event fired after CancelAll: %#v", ev)
	case <-time.After(120 * time.Millisecond):
	}
}

func TestRearmReplacesSchedule(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	stale := now.Add(40 * time.Millisecond)
	if err := engine.Schedule(Event{TaskID: "stale", Stage: StageDueNow, TriggerAt: stale}); err != nil {
		t.Fatalf("schedule stale: %v", err)
	}

	due := now.Add(70 * time.Millisecond)
	done := now.Add(time.Hour)
	tasks := []model.Task{
		{ID: "fresh", Text: "fresh", DueDate: &due, CreatedAt: now},
		{ID: "done", Text: "done", Completed: true, DueDate: &done, CreatedAt: now},
		{ID: "no-deadline", Text: "open", CreatedAt: now},
	}
	if err := engine.Rearm(tasks, now); err != nil {
		t.Fatalf("rearm: %v", err)
	}

	got := waitEvent(t, engine.C(), time.Second)
	if got.TaskID != "fresh" || got.Stage != StageDueNow {
		t.Fatalf("unexpected event after rearm: %#v", got)
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{TaskID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestNonBlockingEmitDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{TaskID: "evt", Stage: StageDueNow, TriggerAt: now}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}
