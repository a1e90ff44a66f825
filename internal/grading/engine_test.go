package grading_test

import (
	"testing"

	"github.com/mind-engage/mindengage-exams/internal/grading"
)

func threeQuestions() []grading.Q {
	return []grading.Q{
		{ID: "q1", AnswerIndex: 0, Marks: 1},
		{ID: "q2", AnswerIndex: 1, Marks: 1},
		{ID: "q3", AnswerIndex: 2, Marks: 1},
	}
}

func TestGrade_PartialAndPass(t *testing.T) {
	res := grading.Grade(threeQuestions(), map[string]int{"q1": 0, "q2": 1, "q3": 0})
	if res.Score != 2 || res.Correct != 2 || res.Total != 3 || res.TotalQuestions != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := grading.FormatPercentage(res.Score, res.Total); got != "66.67" {
		t.Fatalf("percentage = %s, want 66.67", got)
	}
	if !grading.Passed(res.Score, res.Total, 60) {
		t.Fatalf("66.67%% should pass a 60%% threshold")
	}
}

func TestGrade_UnansweredAndOutOfRange(t *testing.T) {
	res := grading.Grade(threeQuestions(), map[string]int{"q1": 7, "q2": -1})
	if res.Score != 0 || res.Correct != 0 {
		t.Fatalf("want zero score, got %+v", res)
	}
	if res.Total != 3 {
		t.Fatalf("total = %v, want 3", res.Total)
	}
}

func TestGrade_ResponsesForUnknownQuestionsIgnored(t *testing.T) {
	res := grading.Grade(threeQuestions(), map[string]int{"zz": 0, "q1": 0})
	if res.Score != 1 || res.Correct != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestGrade_FractionalMarks(t *testing.T) {
	qs := []grading.Q{
		{ID: "a", AnswerIndex: 0, Marks: 0.1},
		{ID: "b", AnswerIndex: 0, Marks: 0.2},
		{ID: "c", AnswerIndex: 0, Marks: 2.5},
	}
	res := grading.Grade(qs, map[string]int{"a": 0, "b": 0})
	if res.Score != 0.3 {
		t.Fatalf("score = %v, want 0.3 exactly", res.Score)
	}
	if res.Total != 2.8 {
		t.Fatalf("total = %v, want 2.8", res.Total)
	}
}

func TestPassed_ThresholdTie(t *testing.T) {
	// 3 of 5 = 60%
	if !grading.Passed(3, 5, 60) {
		t.Fatalf("exactly at threshold must pass")
	}
	if grading.Passed(2.99, 5, 60) {
		t.Fatalf("below threshold must fail")
	}
	// 0.6 of 1 through decimal is exactly 60
	if !grading.Passed(0.6, 1, 60) {
		t.Fatalf("0.6/1 should be exactly 60%%")
	}
}

func TestPercentage_EmptyExam(t *testing.T) {
	res := grading.Grade(nil, map[string]int{"q1": 0})
	if res.Total != 0 || res.TotalQuestions != 0 {
		t.Fatalf("got %+v", res)
	}
	if p := grading.Percentage(res.Score, res.Total); p != 0 {
		t.Fatalf("percentage = %v, want 0", p)
	}
	if grading.Passed(0, 0, 60) {
		t.Fatalf("empty exam cannot pass a 60%% threshold")
	}
	if !grading.Passed(0, 0, 0) {
		t.Fatalf("0%% threshold is always met")
	}
	if got := grading.FormatPercentage(0, 0); got != "0.00" {
		t.Fatalf("format = %s", got)
	}
}
