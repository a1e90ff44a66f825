// internal/api/http/exams.go
package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/rbac"
)

// examView is an exam as a taker sees it, without answer keys.
type examView struct {
	exam.Exam
	Questions     []exam.PublicQuestion `json:"questions,omitempty"`
	QuestionCount int                   `json:"question_count"`
	Available     bool                  `json:"available"`
	AttemptsUsed  int                   `json:"attempts_used"`
	CanStart      bool                  `json:"can_start"`
}

func newExamView(e exam.Exam, d Deps, used int, withQuestions bool) examView {
	stripped, qs := exam.StripAnswers(e)
	v := examView{
		Exam:          stripped,
		QuestionCount: len(qs),
		Available:     exam.IsAvailable(e, d.now()),
		AttemptsUsed:  used,
	}
	v.CanStart = v.Available && exam.CanStart(e, used)
	if withQuestions {
		v.Questions = qs
	}
	return v
}

// POST /exams
func UploadExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		exam.Normalize(&e)
		if err := exam.Validate(e); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := store.PutExam(r.Context(), e); err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]string{"status": "ok", "id": e.ID})
	}
}

// GET /exams?q=&limit=&offset=
func ListExamsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := d.Store.ListExams(ctx, exam.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		sub := rbac.SubjectFromContext(ctx)
		mine, err := d.Store.QueryAttempts(ctx, exam.AttemptFilter{UserID: sub})
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]examView, 0, len(list))
		for _, e := range list {
			out = append(out, newExamView(e, d, exam.AttemptsUsed(mine, sub, e.ID), false))
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /exams/{examID}. Authors get the full exam, everyone else the
// answer-free view.
func GetExamHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		e, err := d.Store.GetExam(ctx, chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if rbac.Can(ctx, "exam:create") {
			respondJSON(w, http.StatusOK, e)
			return
		}
		sub := rbac.SubjectFromContext(ctx)
		mine, err := d.Store.QueryAttempts(ctx, exam.AttemptFilter{UserID: sub, ExamID: e.ID})
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, newExamView(e, d, exam.AttemptsUsed(mine, sub, e.ID), true))
	}
}

// DELETE /exams/{examID}. Recorded attempts are kept.
func DeleteExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteExam(r.Context(), chi.URLParam(r, "examID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
