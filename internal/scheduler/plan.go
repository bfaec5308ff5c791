package scheduler

import "time"

type Stage string

const (
	StageAdvance60 Stage = "advance_60m"
	StageAdvance10 Stage = "advance_10m"
	StageDueNow    Stage = "due_now"
)

// IsDue reports whether the stage means "due right now" as opposed to an
// advance warning.
func (s Stage) IsDue() bool {
	return s == StageDueNow
}

// MinutesBefore is the warning offset for advance stages, zero for due-time.
func (s Stage) MinutesBefore() int {
	switch s {
	case StageAdvance60:
		return 60
	case StageAdvance10:
		return 10
	default:
		return 0
	}
}

type Event struct {
	TaskID    string
	Stage     Stage
	TriggerAt time.Time
}

// Plan computes the reminder schedule for one due date as a pure function of
// (due, now): up to two advance warnings plus the due-time alert. Advance
// offsets already in the past are skipped; a due date in the past produces
// nothing. Recomputing on every load keeps restart behavior deterministic.
func Plan(taskID string, due, now time.Time) []Event {
	if due.Before(now) {
		return nil
	}
	out := make([]Event, 0, 3)
	if at := due.Add(-60 * time.Minute); !at.Before(now) {
		out = append(out, Event{TaskID: taskID, Stage: StageAdvance60, TriggerAt: at})
	}
	if at := due.Add(-10 * time.Minute); !at.Before(now) {
		out = append(out, Event{TaskID: taskID, Stage: StageAdvance10, TriggerAt: at})
	}
	out = append(out, Event{TaskID: taskID, Stage: StageDueNow, TriggerAt: due})
	return out
}
