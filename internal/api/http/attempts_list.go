package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/grading"
	"github.com/mind-engage/mindengage-exams/internal/rbac"
)

type attemptView struct {
	exam.Attempt
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// GET /attempts?exam_id=...&user_id=...&limit=50&offset=0
// Callers without attempt:view-all only ever see their own attempts, and
// without the snapshot's answer keys.
func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f := exam.AttemptFilter{
			ExamID: strings.TrimSpace(r.URL.Query().Get("exam_id")),
			UserID: strings.TrimSpace(r.URL.Query().Get("user_id")),
		}
		all := rbac.Can(ctx, "attempt:view-all")
		if !all {
			f.UserID = rbac.SubjectFromContext(ctx)
		}
		list, err := store.QueryAttempts(ctx, f)
		if err != nil {
			writeError(w, err)
			return
		}
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
		if offset > len(list) {
			offset = len(list)
		}
		list = list[offset:]
		if limit > 0 && limit < len(list) {
			list = list[:limit]
		}

		out := make([]attemptView, 0, len(list))
		for _, a := range list {
			if !all {
				a.Questions = nil
			}
			out = append(out, attemptView{
				Attempt:    a,
				Percentage: grading.Percentage(a.Score, a.Total),
				Passed:     grading.Passed(a.Score, a.Total, a.PassingScore),
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}
