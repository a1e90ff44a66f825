package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/report"
)

func sampleExam() exam.Exam {
	p := 60
	return exam.Exam{ID: "gk", Title: "General  Knowledge Quiz", PassingScore: &p}
}

func sampleAttempts() []exam.Attempt {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	return []exam.Attempt{
		{ID: "a1", ExamID: "gk", UserID: "u1", Score: 2, Total: 3, Correct: 2, TotalQuestions: 3, SubmittedAt: at},
		{ID: "a2", ExamID: "gk", UserID: "ghost", Score: 1, Total: 3, Correct: 1, TotalQuestions: 3, SubmittedAt: at.Add(time.Hour)},
		{ID: "a3", ExamID: "gk", UserID: "u1", Score: 1.5, Total: 2.5, Correct: 1, TotalQuestions: 2, SubmittedAt: at.Add(2 * time.Hour)},
	}
}

func users(id string) (exam.User, bool) {
	if id == "u1" {
		return exam.User{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"}, true
	}
	return exam.User{}, false
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteResultsCSV(&buf, sampleExam(), sampleAttempts(), users); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	want := [][]string{
		{"Student Name", "Email", "Score", "Total", "Percentage", "Correct Answers", "Total Questions", "Status", "Submitted At"},
		{"Ada Lovelace", "ada@example.com", "2", "3", "66.67%", "2", "3", "Passed", "2024-02-03T04:05:06Z"},
		{"Unknown", "N/A", "1", "3", "33.33%", "1", "3", "Failed", "2024-02-03T05:05:06Z"},
		{"Ada Lovelace", "ada@example.com", "1.5", "2.5", "60.00%", "1", "2", "Passed", "2024-02-03T06:05:06Z"},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestWriteResultsCSV_NoAttempts(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteResultsCSV(&buf, sampleExam(), nil, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Fatalf("want header only, got %d rows", len(rows))
	}
}

func TestFilename(t *testing.T) {
	if got := report.Filename(sampleExam()); got != "General_Knowledge_Quiz_results.csv" {
		t.Fatalf("filename = %q", got)
	}
	if got := report.Filename(exam.Exam{ID: "x1", Title: "  "}); got != "x1_results.csv" {
		t.Fatalf("filename = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	st, ok := report.Summarize(sampleExam(), sampleAttempts())
	if !ok {
		t.Fatalf("no stats")
	}
	// 66.67, 33.33, 60.00
	if st.TotalAttempts != 3 || st.UniqueStudents != 2 {
		t.Fatalf("counts = %+v", st)
	}
	if st.AverageScore != 53.3 || st.HighestScore != 66.7 || st.LowestScore != 33.3 || st.PassRate != 66.7 {
		t.Fatalf("stats = %+v", st)
	}

	if _, ok := report.Summarize(sampleExam(), nil); ok {
		t.Fatalf("stats without attempts")
	}
	other := []exam.Attempt{{ExamID: "elsewhere", Score: 1, Total: 1}}
	if _, ok := report.Summarize(sampleExam(), other); ok {
		t.Fatalf("counted another exam's attempts")
	}
}
