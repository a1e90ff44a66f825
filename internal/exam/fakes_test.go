package exam_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-exams/internal/exam"
)

/* ---------------- clock, scheduler and repository fakes ---------------- */

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler records timers instead of running them; fire runs one by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) Schedule(d time.Duration, f func()) exam.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// fire runs the timer's callback the way time.AfterFunc would, even if it
// was stopped too late to matter.
func (t *fakeTimer) fire() { t.f() }

// flakyRepo wraps a store and fails appends while fail is set.
type flakyRepo struct {
	exam.Store
	mu      sync.Mutex
	fail    bool
	appends int
}

var errDiskFull = errors.New("disk full")

func (r *flakyRepo) AppendAttempt(ctx context.Context, a exam.Attempt) error {
	r.mu.Lock()
	r.appends++
	fail := r.fail
	r.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return r.Store.AppendAttempt(ctx, a)
}

func (r *flakyRepo) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

// reverser is a deterministic Shuffler that reverses the sequence.
type reverser struct{}

func (reverser) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

/* ---------------- fixtures ---------------- */

func intp(v int) *int { return &v }

func twoQuestionExam() exam.Exam {
	return exam.Exam{
		ID:           "exam-1",
		Title:        "General Knowledge",
		DurationMin:  30,
		PassingScore: intp(60),
		Questions: []exam.Question{
			{ID: "q1", Text: "Capital of France?", Choices: []string{"Paris", "Rome", "Oslo"}, AnswerIndex: 0, Marks: 1},
			{ID: "q2", Text: "2+2?", Choices: []string{"3", "4", "5"}, AnswerIndex: 1, Marks: 1},
		},
	}
}
