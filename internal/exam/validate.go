package exam

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(questionRules, Question{})
	v.RegisterStructValidation(examRules, Exam{})
	return v
}

func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
		sl.ReportError(q.AnswerIndex, "AnswerIndex", "answer_index", "answerindex", "")
	}
}

func examRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Exam)
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		sl.ReportError(e.EndDate, "EndDate", "end_date", "window", "")
	}
	seen := make(map[string]struct{}, len(e.Questions))
	for _, q := range e.Questions {
		if _, dup := seen[q.ID]; dup {
			sl.ReportError(q.ID, "Questions", "questions", "uniqueid", q.ID)
			return
		}
		seen[q.ID] = struct{}{}
	}
}

// Normalize fills ids and defaults an uploaded exam may leave out: an exam or
// question id, and one mark for unmarked questions.
func Normalize(e *Exam) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	for i := range e.Questions {
		q := &e.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Marks == 0 {
			q.Marks = 1
		}
		q.ChoiceOrder = nil
	}
}

// Validate checks an exam definition before it is stored.
func Validate(e Exam) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid exam: %w", err)
	}
	return nil
}
