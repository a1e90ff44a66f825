package report

import (
	"github.com/shopspring/decimal"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/grading"
)

type Stats struct {
	TotalAttempts  int     `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"` // percent
	HighestScore   float64 `json:"highest_score"`
	LowestScore    float64 `json:"lowest_score"`
	PassRate       float64 `json:"pass_rate"` // percent of attempts that passed
	UniqueStudents int     `json:"unique_students"`
}

// Summarize aggregates the exam's attempts. ok is false when there are none.
func Summarize(ex exam.Exam, attempts []exam.Attempt) (st Stats, ok bool) {
	threshold := ex.PassThreshold()
	takers := map[string]struct{}{}
	sum, passed := 0.0, 0
	for _, a := range attempts {
		if a.ExamID != ex.ID {
			continue
		}
		pct := grading.Percentage(a.Score, a.Total)
		if st.TotalAttempts == 0 || pct > st.HighestScore {
			st.HighestScore = pct
		}
		if st.TotalAttempts == 0 || pct < st.LowestScore {
			st.LowestScore = pct
		}
		st.TotalAttempts++
		sum += pct
		if grading.Passed(a.Score, a.Total, threshold) {
			passed++
		}
		takers[a.UserID] = struct{}{}
	}
	if st.TotalAttempts == 0 {
		return Stats{}, false
	}
	st.AverageScore = round1(sum / float64(st.TotalAttempts))
	st.HighestScore = round1(st.HighestScore)
	st.LowestScore = round1(st.LowestScore)
	st.PassRate = round1(float64(passed) / float64(st.TotalAttempts) * 100)
	st.UniqueStudents = len(takers)
	return st, true
}

func round1(f float64) float64 {
	return decimal.NewFromFloat(f).Round(1).InexactFloat64()
}
