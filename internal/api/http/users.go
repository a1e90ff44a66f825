package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	auth "github.com/mind-engage/mindengage-exams/internal/auth/middleware"
	"github.com/mind-engage/mindengage-exams/internal/exam"
)

var knownRoles = map[string]bool{"student": true, "teacher": true, "admin": true}

// POST /users  { "name": "...", "email": "...", "role": "student", "password": "..." }
func CreateUserHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Role == "" {
			req.Role = "student"
		}
		if req.Email == "" || req.Password == "" || !knownRoles[req.Role] {
			http.Error(w, "email, password and a known role are required", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		if _, err := store.FindUserByEmail(ctx, req.Email); err == nil {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		} else if !errors.Is(err, exam.ErrNotFound) {
			writeError(w, err)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		u := exam.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Role: req.Role, PassHash: hash}
		if err := store.PutUser(ctx, u); err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, u)
	}
}
