package exam

import "time"

// DefaultPassingScore applies when an exam does not set passing_score.
const DefaultPassingScore = 60

type Question struct {
	ID          string   `json:"id" validate:"required"`
	Text        string   `json:"text" validate:"required"`
	Choices     []string `json:"choices" validate:"min=2,dive,required"`
	AnswerIndex int      `json:"answer_index"`
	Marks       float64  `json:"marks" validate:"gt=0"`

	// ChoiceOrder is only set on snapshot questions: ChoiceOrder[i] is the
	// authored position of Choices[i].
	ChoiceOrder []int `json:"choice_order,omitempty"`
}

type Exam struct {
	ID                 string     `json:"id" validate:"required"`
	SubjectID          string     `json:"subject_id"`
	Title              string     `json:"title" validate:"required"`
	Description        string     `json:"description,omitempty"`
	DurationMin        int        `json:"duration_min" validate:"min=0"`
	PassingScore       *int       `json:"passing_score,omitempty" validate:"omitempty,min=0,max=100"`
	MaxAttempts        int        `json:"max_attempts" validate:"min=0"` // 0 = unlimited
	RandomizeQuestions bool       `json:"randomize_questions"`
	RandomizeChoices   bool       `json:"randomize_choices"`
	ShowFeedback       bool       `json:"show_feedback"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Questions          []Question `json:"questions" validate:"dive"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// PassThreshold returns the passing percentage, falling back to the default.
func (e Exam) PassThreshold() int {
	if e.PassingScore == nil {
		return DefaultPassingScore
	}
	return *e.PassingScore
}

func (e Exam) Duration() time.Duration {
	return time.Duration(e.DurationMin) * time.Minute
}

// Attempt is a finalized attempt record. It embeds the session snapshot so
// it can be regraded or displayed after the exam is edited or deleted.
type Attempt struct {
	ID             string         `json:"id"`
	ExamID         string         `json:"exam_id"`
	ExamTitle      string         `json:"exam_title"`
	UserID         string         `json:"user_id"`
	StartedAt      time.Time      `json:"started_at"`
	Responses      map[string]int `json:"responses"` // questionID -> choice index
	Questions      []Question     `json:"questions"`
	Total          float64        `json:"total"`
	TotalQuestions int            `json:"total_questions"`
	Score          float64        `json:"score"`
	Correct        int            `json:"correct"`
	PassingScore   int            `json:"passing_score"`
	TimedOut       bool           `json:"timed_out"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"` // student|teacher|admin
	PassHash string `json:"-"`
}

// PublicQuestion is what a taker sees while a session is running.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
	Marks   float64  `json:"marks"`
}

func toPublic(qs []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, PublicQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Choices: append([]string(nil), q.Choices...),
			Marks:   q.Marks,
		})
	}
	return out
}

// StripAnswers returns a copy of the exam safe to show to takers.
func StripAnswers(e Exam) (Exam, []PublicQuestion) {
	qs := toPublic(e.Questions)
	e.Questions = nil
	return e, qs
}
