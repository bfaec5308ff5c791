package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carlodandan/todoit/internal/model"
)

var ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")

type queueItem struct {
	event Event
	gen   uint64
	epoch uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.TriggerAt.Before(pq[j].event.TriggerAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine arms one-shot reminder timers and emits events on its channel when
// they fire. Cancellation is by task id and works through generations:
// Cancel bumps the task's generation, making every pending event for that
// task stale. Stale events are skipped at pop time, so cancelling an
// already-fired or already-cancelled reminder is a no-op.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	gens    map[string]uint64
	epoch   uint64
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		gens:   make(map[string]uint64),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("scheduler: engine stopped")
	}

	heap.Push(&e.queue, queueItem{event: ev, gen: e.gens[ev.TaskID], epoch: e.epoch})
	e.signalWakeup()
	return nil
}

// Cancel invalidates every pending reminder for the task. Immediate and
// idempotent.
func (e *Engine) Cancel(taskID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gens[taskID]++
}

// CancelAll invalidates every pending reminder, used when reminders are
// toggled off globally.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
}

// Rearm replaces the entire schedule with one derived from the current task
// collection. Timers do not survive a restart; callers run Rearm at startup
// and after any mutation that completes, deletes, or reschedules a task.
func (e *Engine) Rearm(tasks []model.Task, now time.Time) error {
	e.CancelAll()
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		for _, ev := range Plan(t.ID, *t.DueDate, now) {
			if err := e.Schedule(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		item := e.queue[0]
		if e.staleLocked(item) {
			heap.Pop(&e.queue)
			continue
		}
		return item.event, true
	}
	return Event{}, false
}

func (e *Engine) popDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Event, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if next.event.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		if e.staleLocked(item) {
			continue
		}
		out = append(out, item.event)
	}
	return out
}

func (e *Engine) staleLocked(item queueItem) bool {
	return item.epoch != e.epoch || item.gen != e.gens[item.event.TaskID]
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
