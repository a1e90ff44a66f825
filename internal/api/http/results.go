package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/report"
	"github.com/mind-engage/mindengage-exams/internal/storage"
)

func userLookup(ctx context.Context, store exam.Store) report.UserLookup {
	return func(id string) (exam.User, bool) {
		u, err := store.GetUser(ctx, id)
		return u, err == nil
	}
}

func examResults(ctx context.Context, store exam.Store, examID string) (exam.Exam, []exam.Attempt, error) {
	e, err := store.GetExam(ctx, examID)
	if err != nil {
		return exam.Exam{}, nil, err
	}
	list, err := store.QueryAttempts(ctx, exam.AttemptFilter{ExamID: e.ID})
	if err != nil {
		return exam.Exam{}, nil, err
	}
	return e, list, nil
}

// GET /exams/{examID}/stats answers null while the exam has no attempts.
func StatsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, list, err := examResults(r.Context(), store, chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		st, ok := report.Summarize(e, list)
		if !ok {
			respondJSON(w, http.StatusOK, nil)
			return
		}
		respondJSON(w, http.StatusOK, st)
	}
}

// GET /exams/{examID}/results.csv
func ResultsCSVHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		e, list, err := examResults(ctx, store, chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := report.WriteResultsCSV(&buf, e, list, userLookup(ctx, store)); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(e)))
		_, _ = w.Write(buf.Bytes())
	}
}

// POST /exams/{examID}/results/export writes the CSV into the blob store
// for later download under /exports/.
// The returned url is absolute when publicURL is set.
func ExportResultsHandler(store exam.Store, bs storage.BlobStore, publicURL string, now func() time.Time) http.HandlerFunc {
	base := strings.TrimRight(publicURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		e, list, err := examResults(ctx, store, chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := report.WriteResultsCSV(&buf, e, list, userLookup(ctx, store)); err != nil {
			writeError(w, err)
			return
		}
		name := now().UTC().Format("20060102T150405Z") + "_" + report.Filename(e)
		key, err := bs.Put(path.Join("exports", e.ID, name), &buf)
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"key":      key,
			"url":      base + "/" + key,
			"attempts": len(list),
		})
	}
}
