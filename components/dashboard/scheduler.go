package dashboard

import (
	"sync"
	"time"
)

// Timer is a cancellable handle returned by a Scheduler.
type Timer interface {
	Stop()
}

// Scheduler starts recurring and one-shot timers. Callbacks may run on any goroutine.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
	After(delay time.Duration, fn func()) Timer
}

// NewTimeScheduler returns a Scheduler backed by the runtime timers.
func NewTimeScheduler() Scheduler {
	return timeScheduler{}
}

type timeScheduler struct{}

func (timeScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				select {
				case <-t.done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

func (timeScheduler) After(delay time.Duration, fn func()) Timer {
	return afterTimer{timer: time.AfterFunc(delay, fn)}
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

type afterTimer struct {
	timer *time.Timer
}

func (t afterTimer) Stop() {
	t.timer.Stop()
}

// ManualScheduler is a virtual clock. Timers only fire when Advance moves time past
// their deadline, which makes timer-driven code deterministic under test.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers map[int]*manualTimer
}

type manualTimer struct {
	owner    *ManualScheduler
	id       int
	next     time.Time
	interval time.Duration
	fn       func()
}

// NewManualScheduler starts a virtual clock at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		now:    start,
		timers: make(map[int]*manualTimer),
	}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) Timer {
	return s.add(interval, interval, fn)
}

// After implements Scheduler.
func (s *ManualScheduler) After(delay time.Duration, fn func()) Timer {
	return s.add(delay, 0, fn)
}

func (s *ManualScheduler) add(delay, interval time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{
		owner:    s,
		id:       s.seq,
		next:     s.now.Add(delay),
		interval: interval,
		fn:       fn,
	}
	s.timers[t.id] = t
	return t
}

func (t *manualTimer) Stop() {
	t.owner.mu.Lock()
	delete(t.owner.timers, t.id)
	t.owner.mu.Unlock()
}

// Now returns the virtual time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Active returns the number of timers that have not been stopped or fired (one-shot).
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()
	for {
		s.mu.Lock()
		due := s.nextDue(target)
		if due == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = due.next
		if due.interval > 0 {
			due.next = due.next.Add(due.interval)
		} else {
			delete(s.timers, due.id)
		}
		fn := due.fn
		s.mu.Unlock()
		fn()
	}
}

func (s *ManualScheduler) nextDue(target time.Time) *manualTimer {
	var due *manualTimer
	for _, t := range s.timers {
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) || (t.next.Equal(due.next) && t.id < due.id) {
			due = t
		}
	}
	return due
}
