package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/grading"
)

var header = []string{
	"Student Name", "Email", "Score", "Total", "Percentage",
	"Correct Answers", "Total Questions", "Status", "Submitted At",
}

// UserLookup resolves a taker for display; ok is false for unknown users.
type UserLookup func(userID string) (u exam.User, ok bool)

// WriteResultsCSV writes one header row then one row per attempt. Status is
// judged against the exam's current passing score.
func WriteResultsCSV(w io.Writer, ex exam.Exam, attempts []exam.Attempt, users UserLookup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	threshold := ex.PassThreshold()
	for _, a := range attempts {
		name, email := "Unknown", "N/A"
		if users != nil {
			if u, ok := users(a.UserID); ok {
				name, email = u.Name, u.Email
			}
		}
		status := "Failed"
		if grading.Passed(a.Score, a.Total, threshold) {
			status = "Passed"
		}
		if err := cw.Write([]string{
			name,
			email,
			formatNumber(a.Score),
			formatNumber(a.Total),
			grading.FormatPercentage(a.Score, a.Total) + "%",
			strconv.Itoa(a.Correct),
			strconv.Itoa(a.TotalQuestions),
			status,
			a.SubmittedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the download name for an exam's results, e.g.
// "General_Knowledge_results.csv".
func Filename(ex exam.Exam) string {
	title := strings.Join(strings.Fields(ex.Title), "_")
	if title == "" {
		title = ex.ID
	}
	return title + "_results.csv"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
