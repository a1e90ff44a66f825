package exam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mind-engage/mindengage-exams/internal/grading"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
	StateTimedOut   State = "timed_out"
	StateCanceled   State = "canceled"
)

type Clock func() time.Time

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The default is time.AfterFunc.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Outcome is what a taker sees after a graded terminal transition.
type Outcome struct {
	Attempt    Attempt      `json:"attempt"`
	Percentage float64      `json:"percentage"`
	Passed     bool         `json:"passed"`
	TimedOut   bool         `json:"timed_out"`
	Review     []ReviewItem `json:"review,omitempty"`
}

type ReviewItem struct {
	QuestionID   string `json:"question_id"`
	Text         string `json:"text"`
	Selected     *int   `json:"selected,omitempty"`
	SelectedText string `json:"selected_text,omitempty"`
	AnswerIndex  int    `json:"answer_index"`
	AnswerText   string `json:"answer_text"`
	Correct      bool   `json:"correct"`
}

// Session is one taker's attempt while it runs. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	exam      Exam
	userID    string
	attemptNo int
	snapshot  []Question
	index     map[string]struct{}
	responses map[string]int
	state     State
	startedAt time.Time
	deadline  time.Time
	timer     Timer

	record    *Attempt
	persisted bool
	done      chan struct{}
}

func (s *Session) ExamID() string    { return s.exam.ID }
func (s *Session) ExamTitle() string { return s.exam.Title }
func (s *Session) UserID() string    { return s.userID }

// ShowsFeedback reports whether the taker may see answer keys after finishing.
func (s *Session) ShowsFeedback() bool { return s.exam.ShowFeedback }

// MaxAttempts is the exam's attempt limit when the session started, 0 for none.
func (s *Session) MaxAttempts() int { return s.exam.MaxAttempts }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Deadline() time.Time  { return s.deadline }

// AttemptNumber is 1 for the taker's first attempt at the exam.
func (s *Session) AttemptNumber() int { return s.attemptNo }

// Remaining is the countdown left at now, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Questions returns the snapshot without answer keys.
func (s *Session) Questions() []PublicQuestion { return toPublic(s.snapshot) }

func (s *Session) Responses() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyResponses(s.responses)
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Outcome returns the graded result once the attempt was saved.
func (s *Session) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil || !s.persisted {
		return Outcome{}, false
	}
	return s.outcomeLocked(), true
}

// Controller owns the session table: at most one in-progress session per taker.
type Controller struct {
	repo         AttemptRepository
	now          Clock
	shuffler     Shuffler
	shuffleMu    sync.Mutex
	schedule     Scheduler
	onAutoSubmit func(Outcome)

	mu       sync.Mutex
	active   map[string]*Session
	starting map[string]struct{}
}

type Option func(*Controller)

func WithClock(c Clock) Option                  { return func(x *Controller) { x.now = c } }
func WithShuffler(s Shuffler) Option            { return func(x *Controller) { x.shuffler = s } }
func WithScheduler(s Scheduler) Option          { return func(x *Controller) { x.schedule = s } }
func WithAutoSubmitHook(f func(Outcome)) Option { return func(x *Controller) { x.onAutoSubmit = f } }

func NewController(repo AttemptRepository, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		now:      time.Now,
		shuffler: globalShuffler{},
		schedule: afterFunc,
		active:   map[string]*Session{},
		starting: map[string]struct{}{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Current returns the taker's open session, including one whose record is
// still waiting to be saved.
func (c *Controller) Current(userID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.active[userID]
	return s, ok
}

// Remaining is the session's countdown by the controller's clock.
func (c *Controller) Remaining(s *Session) time.Duration { return s.Remaining(c.now()) }

// Start gates, snapshots and opens a timed session for userID. When the
// countdown is already over the session times out inside Start; a failed
// save is then returned as ErrPersistence and the session stays reachable
// through Current for a retried Submit.
func (c *Controller) Start(ctx context.Context, ex Exam, userID string) (*Session, error) {
	if err := c.reserve(userID); err != nil {
		return nil, err
	}
	s, err := c.open(ctx, ex, userID)

	c.mu.Lock()
	delete(c.starting, userID)
	if err == nil {
		c.active[userID] = s
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info().Str("exam_id", ex.ID).Str("user_id", userID).
		Int("attempt", s.attemptNo).Time("deadline", s.deadline).Msg("session started")

	d := s.deadline.Sub(s.startedAt)
	if d <= 0 {
		if err := c.expire(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	s.mu.Lock()
	if s.state == StateInProgress {
		s.timer = c.schedule(d, func() { _ = c.expire(s) })
	}
	s.mu.Unlock()
	return s, nil
}

// reserve claims the taker's slot so the attempt count can be read without
// holding the table lock.
func (c *Controller) reserve(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if open, ok := c.active[userID]; ok {
		return fmt.Errorf("%w: a session for exam %s is already open", ErrInvalidState, open.exam.ID)
	}
	if _, ok := c.starting[userID]; ok {
		return fmt.Errorf("%w: a session is already starting", ErrInvalidState)
	}
	c.starting[userID] = struct{}{}
	return nil
}

func (c *Controller) open(ctx context.Context, ex Exam, userID string) (*Session, error) {
	now := c.now()
	if !IsAvailable(ex, now) {
		return nil, fmt.Errorf("exam %s: %w", ex.ID, ErrUnavailable)
	}
	records, err := c.repo.QueryAttempts(ctx, AttemptFilter{UserID: userID, ExamID: ex.ID})
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	used := AttemptsUsed(records, userID, ex.ID)
	if !CanStart(ex, used) {
		return nil, &QuotaError{Used: used, Max: ex.MaxAttempts}
	}

	c.shuffleMu.Lock()
	snap, err := NewSnapshot(ex, c.shuffler)
	c.shuffleMu.Unlock()
	if err != nil {
		return nil, err
	}

	s := &Session{
		exam:      ex,
		userID:    userID,
		attemptNo: used + 1,
		snapshot:  snap,
		index:     make(map[string]struct{}, len(snap)),
		responses: map[string]int{},
		state:     StateInProgress,
		startedAt: now,
		deadline:  now.Add(ex.Duration()),
		done:      make(chan struct{}),
	}
	for _, q := range snap {
		s.index[q.ID] = struct{}{}
	}
	return s, nil
}

// RecordResponse stores the taker's selection, replacing any earlier one.
// The choice index is not range-checked; grading treats it as wrong.
func (c *Controller) RecordResponse(s *Session, questionID string, choice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidState, s.state)
	}
	if !c.now().Before(s.deadline) {
		return fmt.Errorf("%w: time is up", ErrInvalidState)
	}
	if _, ok := s.index[questionID]; !ok {
		return fmt.Errorf("question %s: %w", questionID, ErrNotFound)
	}
	s.responses[questionID] = choice
	return nil
}

// Submit grades and saves the attempt. Calling it again after the session
// finished only retries a failed save; otherwise it returns the same outcome.
func (c *Controller) Submit(ctx context.Context, s *Session) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
		trigger := StateSubmitted
		if !c.now().Before(s.deadline) {
			trigger = StateTimedOut
		}
		c.finalizeLocked(s, trigger)
	case StateSubmitted, StateTimedOut:
	default:
		return Outcome{}, fmt.Errorf("%w: session is %s", ErrInvalidState, s.state)
	}
	if err := c.persistLocked(ctx, s); err != nil {
		return Outcome{}, err
	}
	return s.outcomeLocked(), nil
}

// Cancel discards an in-progress session without grading it.
func (c *Controller) Cancel(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return fmt.Errorf("%w: session is %s", ErrInvalidState, s.state)
	}
	c.stopTimerLocked(s)
	s.state = StateCanceled
	close(s.done)
	c.release(s)
	log.Info().Str("exam_id", s.exam.ID).Str("user_id", s.userID).Msg("session canceled")
	return nil
}

func (c *Controller) expire(s *Session) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return nil
	}
	c.finalizeLocked(s, StateTimedOut)
	err := c.persistLocked(context.Background(), s)
	out := s.outcomeLocked()
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("exam_id", out.Attempt.ExamID).Str("user_id", out.Attempt.UserID).
			Msg("auto-submit could not save attempt")
		return err
	}
	log.Info().Str("exam_id", out.Attempt.ExamID).Str("user_id", out.Attempt.UserID).
		Str("attempt_id", out.Attempt.ID).Msg("time up, attempt auto-submitted")
	if c.onAutoSubmit != nil {
		c.onAutoSubmit(out)
	}
	return nil
}

func (c *Controller) stopTimerLocked(s *Session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// finalizeLocked is the single graded exit: it freezes responses, releases
// the timer and builds the record.
func (c *Controller) finalizeLocked(s *Session, trigger State) {
	c.stopTimerLocked(s)
	s.state = trigger
	close(s.done)

	res := grading.Grade(gradingView(s.snapshot), s.responses)
	s.record = &Attempt{
		ID:             uuid.NewString(),
		ExamID:         s.exam.ID,
		ExamTitle:      s.exam.Title,
		UserID:         s.userID,
		StartedAt:      s.startedAt,
		Responses:      copyResponses(s.responses),
		Questions:      s.snapshot,
		Total:          res.Total,
		TotalQuestions: res.TotalQuestions,
		Score:          res.Score,
		Correct:        res.Correct,
		PassingScore:   s.exam.PassThreshold(),
		TimedOut:       trigger == StateTimedOut,
		SubmittedAt:    c.now(),
	}
}

func (c *Controller) persistLocked(ctx context.Context, s *Session) error {
	if s.persisted {
		return nil
	}
	if err := c.repo.AppendAttempt(ctx, *s.record); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.persisted = true
	c.release(s)
	return nil
}

func (c *Controller) release(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active[s.userID] == s {
		delete(c.active, s.userID)
	}
}

func (s *Session) outcomeLocked() Outcome {
	a := *s.record
	out := Outcome{
		Attempt:    a,
		Percentage: grading.Percentage(a.Score, a.Total),
		Passed:     grading.Passed(a.Score, a.Total, a.PassingScore),
		TimedOut:   a.TimedOut,
	}
	if s.exam.ShowFeedback {
		out.Review = Review(a)
	}
	return out
}

// Review lists, per snapshot question, what was selected and what was right.
func Review(a Attempt) []ReviewItem {
	items := make([]ReviewItem, 0, len(a.Questions))
	for _, q := range a.Questions {
		it := ReviewItem{QuestionID: q.ID, Text: q.Text, AnswerIndex: q.AnswerIndex}
		if q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices) {
			it.AnswerText = q.Choices[q.AnswerIndex]
		}
		if sel, ok := a.Responses[q.ID]; ok {
			it.Selected = &sel
			if sel >= 0 && sel < len(q.Choices) {
				it.SelectedText = q.Choices[sel]
			}
			it.Correct = sel == q.AnswerIndex
		}
		items = append(items, it)
	}
	return items
}

func gradingView(qs []Question) []grading.Q {
	out := make([]grading.Q, 0, len(qs))
	for _, q := range qs {
		out = append(out, grading.Q{ID: q.ID, AnswerIndex: q.AnswerIndex, Marks: q.Marks})
	}
	return out
}

func copyResponses(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
