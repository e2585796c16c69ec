// Package scheduler fires reminder events when a task's date and time come
// due. Scheduling and cancellation are best effort: callers must never fail
// an operation because an alarm could not be placed.
package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
)

var (
	ErrNoTriggerTime = errors.New("scheduler: task has no time")
	ErrStopped       = errors.New("scheduler: engine stopped")
)

// AlarmEvent is emitted on the output channel when a task reminder is due.
type AlarmEvent struct {
	TaskID      string
	Description string
	Type        model.TaskType
	TriggerAt   time.Time
}

type queueItem struct {
	event AlarmEvent
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

type Engine struct {
	mu       sync.Mutex
	queue    priorityQueue
	canceled map[string]struct{}
	out      chan AlarmEvent
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
	loc      *time.Location
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:    make(priorityQueue, 0),
		canceled: make(map[string]struct{}),
		out:      make(chan AlarmEvent, bufferSize),
		wakeup:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		loc:      time.Local,
	}
}

func (e *Engine) C() <-chan AlarmEvent {
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

// Schedule queues a reminder for the task's date and time. Tasks without a
// clock time have no alarm.
func (e *Engine) Schedule(task model.Task) error {
	if task.Time == "" {
		return ErrNoTriggerTime
	}
	trigger, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, task.Date+" "+task.Time, e.loc)
	if err != nil {
		return fmt.Errorf("scheduler: bad trigger for task %s: %w", task.ID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	delete(e.canceled, task.ID)
	heap.Push(&e.queue, queueItem{event: AlarmEvent{
		TaskID:      task.ID,
		Description: task.Description,
		Type:        task.Type,
		TriggerAt:   trigger,
	}})
	e.signalWakeup()
	return nil
}

// Cancel drops any queued reminder for the task. Unknown ids are a no-op.
func (e *Engine) Cancel(taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	e.canceled[taskID] = struct{}{}
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
			due := e.popDue(time.Now())
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

func (e *Engine) peek() (AlarmEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return AlarmEvent{}, false
	}
	return e.queue[0].event, true
}

// popDue removes every due event, silently discarding canceled ones.
func (e *Engine) popDue(now time.Time) []AlarmEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]AlarmEvent, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		if _, skip := e.canceled[item.event.TaskID]; skip {
			delete(e.canceled, item.event.TaskID)
			continue
		}
		out = append(out, item.event)
	}
	return out
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
