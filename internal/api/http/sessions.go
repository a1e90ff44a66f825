package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/rbac"
)

type sessionView struct {
	ExamID        string                `json:"exam_id"`
	ExamTitle     string                `json:"exam_title"`
	State         exam.State            `json:"state"`
	StartedAt     time.Time             `json:"started_at"`
	Deadline      time.Time             `json:"deadline"`
	RemainingSec  int64                 `json:"remaining_sec"`
	AttemptNumber int                   `json:"attempt_number"`
	MaxAttempts   int                   `json:"max_attempts"`
	Questions     []exam.PublicQuestion `json:"questions"`
	Responses     map[string]int        `json:"responses"`
}

func newSessionView(c *exam.Controller, s *exam.Session) sessionView {
	return sessionView{
		ExamID:        s.ExamID(),
		ExamTitle:     s.ExamTitle(),
		State:         s.State(),
		StartedAt:     s.StartedAt(),
		Deadline:      s.Deadline(),
		RemainingSec:  int64(c.Remaining(s) / time.Second),
		AttemptNumber: s.AttemptNumber(),
		MaxAttempts:   s.MaxAttempts(),
		Questions:     s.Questions(),
		Responses:     s.Responses(),
	}
}

func currentSession(c *exam.Controller, r *http.Request) (*exam.Session, error) {
	sub := rbac.SubjectFromContext(r.Context())
	s, ok := c.Current(sub)
	if !ok {
		return nil, fmt.Errorf("open session for %s: %w", sub, exam.ErrNotFound)
	}
	return s, nil
}

// POST /exams/{examID}/sessions
func StartSessionHandler(store exam.Store, c *exam.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		e, err := store.GetExam(ctx, chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		s, err := c.Start(ctx, e, rbac.SubjectFromContext(ctx))
		if err != nil {
			writeError(w, err)
			return
		}
		if out, done := s.Outcome(); done {
			// zero-length exam, already timed out
			respondJSON(w, http.StatusOK, takerOutcome(s, out))
			return
		}
		respondJSON(w, http.StatusCreated, newSessionView(c, s))
	}
}

// GET /sessions/current
func CurrentSessionHandler(c *exam.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(c, r)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, newSessionView(c, s))
	}
}

// PUT /sessions/current/responses/{questionID}  { "choice": 2 }
func RecordResponseHandler(c *exam.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Choice *int `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Choice == nil {
			http.Error(w, "choice required", http.StatusBadRequest)
			return
		}
		s, err := currentSession(c, r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := c.RecordResponse(s, chi.URLParam(r, "questionID"), *req.Choice); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /sessions/current/submit
func SubmitSessionHandler(c *exam.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(c, r)
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := c.Submit(r.Context(), s)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, takerOutcome(s, out))
	}
}

// DELETE /sessions/current
func CancelSessionHandler(c *exam.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(c, r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := c.Cancel(s); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// takerOutcome hides the snapshot's answer keys unless the exam shows feedback.
func takerOutcome(s *exam.Session, out exam.Outcome) exam.Outcome {
	if !s.ShowsFeedback() {
		out.Attempt.Questions = nil
	}
	return out
}
