package exam_test

import (
	"testing"
	"time"

	"github.com/mind-engage/mindengage-exams/internal/exam"
)

func TestIsAvailable(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	before, after := now.Add(-time.Hour), now.Add(time.Hour)

	cases := []struct {
		name       string
		start, end *time.Time
		want       bool
	}{
		{"no window", nil, nil, true},
		{"open start", nil, &after, true},
		{"open end", &before, nil, true},
		{"inside", &before, &after, true},
		{"not yet", &after, nil, false},
		{"closed", nil, &before, false},
		{"at start instant", &now, nil, true},
		{"at end instant", nil, &now, true},
	}
	for _, tc := range cases {
		ex := exam.Exam{StartDate: tc.start, EndDate: tc.end}
		if got := exam.IsAvailable(ex, now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAttemptsUsedAndCanStart(t *testing.T) {
	records := []exam.Attempt{
		{UserID: "u1", ExamID: "e1"},
		{UserID: "u1", ExamID: "e1"},
		{UserID: "u1", ExamID: "e2"},
		{UserID: "u2", ExamID: "e1"},
	}
	if n := exam.AttemptsUsed(records, "u1", "e1"); n != 2 {
		t.Fatalf("used = %d, want 2", n)
	}
	if n := exam.AttemptsUsed(nil, "u1", "e1"); n != 0 {
		t.Fatalf("used = %d, want 0", n)
	}

	for max := 0; max <= 4; max++ {
		for used := 0; used <= 5; used++ {
			want := !(max > 0 && used >= max)
			if got := exam.CanStart(exam.Exam{MaxAttempts: max}, used); got != want {
				t.Errorf("CanStart(max=%d, used=%d) = %v", max, used, got)
			}
		}
	}
}
