// Package reminder runs the periodic scan that fires at most one due-soon
// reminder per task and due date.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"docket/internal/notify"
	"docket/internal/todo"
)

const (
	// MaxInterval is the longest tick that still lands at least twice inside
	// a one-minute reminder window, the shortest lead time a task can set.
	MaxInterval     = time.Minute / 2
	DefaultInterval = MaxInterval
)

// Store is the slice of the task engine the scheduler needs. MarkNotified
// must apply every flag change as one update.
type Store interface {
	MarkNotified(due func(todo.Task) bool) []todo.Task
}

type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// Scheduler is an explicitly owned ticker handle. Tick can be driven directly
// for deterministic stepping; Start and Stop manage the background loop.
type Scheduler struct {
	store    Store
	notifier notify.Notifier
	toaster  notify.Toaster
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(store Store, notifier notify.Notifier, toaster notify.Toaster, opts Options) *Scheduler {
	s := &Scheduler{
		store:    store,
		notifier: notifier,
		toaster:  toaster,
		interval: opts.Interval,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.interval > MaxInterval {
		s.interval = MaxInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	return s
}

// Due reports whether t is inside its reminder window at now and has not
// been reminded yet.
func Due(t todo.Task, now time.Time) bool {
	if t.Completed || !t.ReminderEnabled || t.DueDate == nil || t.Notified {
		return false
	}
	remaining := t.DueDate.Sub(now)
	return remaining > 0 && remaining <= t.LeadTime()
}

// Tick evaluates every task once at now. Flags are committed before any
// dispatch, so a failing notifier can never cause a repeat. It returns the
// tasks reminded on this tick.
func (s *Scheduler) Tick(now time.Time) []todo.Task {
	fired := s.store.MarkNotified(func(t todo.Task) bool { return Due(t, now) })
	for _, t := range fired {
		s.dispatch(t, now)
	}
	return fired
}

func (s *Scheduler) dispatch(t todo.Task, now time.Time) {
	s.log.Info("reminder fired", "task", t.ID, "due", t.DueDate)

	if s.notifier.Permission() == notify.PermissionGranted {
		mins := int(math.Ceil(t.DueDate.Sub(now).Minutes()))
		title := "Task Due Soon: " + t.Text
		body := fmt.Sprintf("Due in %d mins", mins)
		if err := s.show(title, body, strconv.Itoa(t.ID)); err != nil {
			s.log.Warn("notification failed", "task", t.ID, "err", err)
		}
	}
	if s.toaster != nil {
		s.toaster.Toast("Reminder", fmt.Sprintf("%q is due soon!", t.Text), notify.SeverityWarning)
	}
}

func (s *Scheduler) show(title, body, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return s.notifier.Show(title, body, tag)
}

// Start launches the background loop. Calling Start on a running scheduler
// does nothing. The loop ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.log.Debug("reminder loop started", "interval", s.interval)

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(s.now())
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. An in-flight tick runs to
// completion first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Debug("reminder loop stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) Interval() time.Duration { return s.interval }
