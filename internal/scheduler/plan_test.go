package scheduler

import (
	"testing"
	"time"
)

func TestPlanAllThreeStagesForDistantDue(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	due := now.Add(2 * time.Hour)

	events := Plan("task-1", due, now)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %#v", events)
	}
	if events[0].Stage != StageAdvance60 || !events[0].TriggerAt.Equal(due.Add(-60*time.Minute)) {
		t.Fatalf("unexpected first event: %#v", events[0])
	}
	if events[1].Stage != StageAdvance10 || !events[1].TriggerAt.Equal(due.Add(-10*time.Minute)) {
		t.Fatalf("unexpected second event: %#v", events[1])
	}
	if events[2].Stage != StageDueNow || !events[2].TriggerAt.Equal(due) {
		t.Fatalf("unexpected third event: %#v", events[2])
	}
}

func TestPlanSkipsPastOffsets(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	// Due in 30 minutes: the 60-minute warning is already past.
	events := Plan("task-1", now.Add(30*time.Minute), now)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %#v", events)
	}
	if events[0].Stage != StageAdvance10 || events[1].Stage != StageDueNow {
		t.Fatalf("unexpected stages: %#v", events)
	}

	// Due in 5 minutes: only the due-time alert remains.
	events = Plan("task-1", now.Add(5*time.Minute), now)
	if len(events) != 1 || events[0].Stage != StageDueNow {
		t.Fatalf("expected only due-time event, got %#v", events)
	}
}

func TestPlanPastDueProducesNothing(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	if events := Plan("task-1", now.Add(-time.Minute), now); events != nil {
		t.Fatalf("expected nil for past due date, got %#v", events)
	}
}

func TestPlanDueExactlyNow(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	events := Plan("task-1", now, now)
	if len(events) != 1 || events[0].Stage != StageDueNow || !events[0].TriggerAt.Equal(now) {
		t.Fatalf("expected single due-time event at now, got %#v", events)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	due := now.Add(90 * time.Minute)
	first := Plan("task-1", due, now)
	second := Plan("task-1", due, now)
	if len(first) != len(second) {
		t.Fatalf("plan not deterministic: %#v vs %#v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plan not deterministic at %d: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestStageHelpers(t *testing.T) {
	if !StageDueNow.IsDue() || StageAdvance60.IsDue() || StageAdvance10.IsDue() {
		t.Fatal("IsDue misclassifies stages")
	}
	if StageAdvance60.MinutesBefore() != 60 || StageAdvance10.MinutesBefore() != 10 || StageDueNow.MinutesBefore() != 0 {
		t.Fatal("MinutesBefore returns wrong offsets")
	}
}
