package exam_test

import (
	"testing"
	"time"

	"github.com/mind-engage/mindengage-exams/internal/exam"
)

func TestNormalize_FillsIDsAndMarks(t *testing.T) {
	e := exam.Exam{
		Title: "Untitled ids",
		Questions: []exam.Question{
			{Text: "a?", Choices: []string{"x", "y"}, ChoiceOrder: []int{1, 0}},
			{ID: "keep", Text: "b?", Choices: []string{"x", "y"}, Marks: 2.5},
		},
	}
	exam.Normalize(&e)
	if e.ID == "" || e.Questions[0].ID == "" {
		t.Fatalf("ids not filled: %+v", e)
	}
	if e.Questions[1].ID != "keep" {
		t.Fatalf("existing id replaced")
	}
	if e.Questions[0].Marks != 1 || e.Questions[1].Marks != 2.5 {
		t.Fatalf("marks = %v, %v", e.Questions[0].Marks, e.Questions[1].Marks)
	}
	if e.Questions[0].ChoiceOrder != nil {
		t.Fatalf("choice order must be cleared on authored questions")
	}
	if err := exam.Validate(e); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	cases := map[string]func(*exam.Exam){
		"missing title":         func(e *exam.Exam) { e.Title = "" },
		"negative duration":     func(e *exam.Exam) { e.DurationMin = -1 },
		"passing over 100":      func(e *exam.Exam) { e.PassingScore = intp(101) },
		"negative max":          func(e *exam.Exam) { e.MaxAttempts = -2 },
		"end before start":      func(e *exam.Exam) { e.StartDate, e.EndDate = &start, &end },
		"one choice":            func(e *exam.Exam) { e.Questions[0].Choices = []string{"only"} },
		"empty choice":          func(e *exam.Exam) { e.Questions[0].Choices[1] = "" },
		"answer out of range":   func(e *exam.Exam) { e.Questions[0].AnswerIndex = 3 },
		"negative answer":       func(e *exam.Exam) { e.Questions[0].AnswerIndex = -1 },
		"negative marks":        func(e *exam.Exam) { e.Questions[0].Marks = -1 },
		"duplicate question":    func(e *exam.Exam) { e.Questions[1].ID = e.Questions[0].ID },
		"question without text": func(e *exam.Exam) { e.Questions[1].Text = "" },
	}
	for name, mutate := range cases {
		e := twoQuestionExam()
		mutate(&e)
		if err := exam.Validate(e); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
	if err := exam.Validate(twoQuestionExam()); err != nil {
		t.Fatalf("valid exam rejected: %v", err)
	}
}
