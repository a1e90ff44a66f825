package grading

import "github.com/shopspring/decimal"

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID          string
	AnswerIndex int
	Marks       float64
}

// Result is the outcome of grading a full response set.
type Result struct {
	Score          float64
	Correct        int
	Total          float64
	TotalQuestions int
}

var hundred = decimal.NewFromInt(100)

// Grade awards a question's marks when its recorded response equals the
// answer index. Missing and out-of-range responses score nothing.
func Grade(qs []Q, responses map[string]int) Result {
	score, total := decimal.Zero, decimal.Zero
	correct := 0
	for _, q := range qs {
		m := decimal.NewFromFloat(q.Marks)
		total = total.Add(m)
		if sel, ok := responses[q.ID]; ok && sel == q.AnswerIndex {
			score = score.Add(m)
			correct++
		}
	}
	return Result{
		Score:          score.InexactFloat64(),
		Correct:        correct,
		Total:          total.InexactFloat64(),
		TotalQuestions: len(qs),
	}
}

func percentage(score, total float64) decimal.Decimal {
	t := decimal.NewFromFloat(total)
	if t.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(score).Div(t).Mul(hundred)
}

// Percentage is score/total*100, or 0 for an empty exam.
func Percentage(score, total float64) float64 {
	return percentage(score, total).InexactFloat64()
}

// Passed reports whether the percentage reaches threshold. A score exactly
// at the threshold passes.
func Passed(score, total float64, threshold int) bool {
	return percentage(score, total).GreaterThanOrEqual(decimal.NewFromInt(int64(threshold)))
}

// FormatPercentage renders a percentage with two decimals, e.g. "66.67".
func FormatPercentage(score, total float64) string {
	return percentage(score, total).StringFixed(2)
}
