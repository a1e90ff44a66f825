package http

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-exams/internal/auth/middleware"
	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/rbac"
	"github.com/mind-engage/mindengage-exams/internal/storage"
	syncx "github.com/mind-engage/mindengage-exams/internal/sync"
)

// Deps is what the HTTP surface needs. Blobs and Events are optional; their
// routes are only mounted when set.
type Deps struct {
	Store    exam.Store
	Sessions *exam.Controller
	Auth     *auth.AuthService
	Blobs    storage.BlobStore
	Events   *syncx.EventRepo

	// AllowRoleClaim trusts the token's role for accounts missing from the store.
	AllowRoleClaim bool
	// PublicURL prefixes links handed out to clients, e.g. export downloads.
	PublicURL string
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// IdentityFromStore adapts the user table for login.
func IdentityFromStore(store exam.Store) auth.IdentityLookup {
	return func(ctx context.Context, login string) (auth.Identity, error) {
		u, err := store.FindUserByEmail(ctx, login)
		if err != nil {
			return auth.Identity{}, err
		}
		return auth.Identity{Subject: u.ID, Role: u.Role, PassHash: u.PassHash}, nil
	}
}

// RoleFromStore returns the stored role of a subject.
func RoleFromStore(store exam.Store) auth.RoleLookup {
	return func(ctx context.Context, sub string) (string, error) {
		u, err := store.GetUser(ctx, sub)
		if err != nil {
			return "", err
		}
		return u.Role, nil
	}
}

// Mount registers login and the protected API on r.
func Mount(r chi.Router, d Deps) {
	r.Post("/auth/login", auth.LoginHandler(d.Auth, IdentityFromStore(d.Store)))

	// Protected API (JWT → stored role → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		pr.Use(auth.AttachRoleFromStore(RoleFromStore(d.Store), d.AllowRoleClaim))

		pr.With(rbac.Require("users:create")).Post("/users", CreateUserHandler(d.Store))

		pr.With(rbac.Require("exam:create")).Post("/exams", UploadExamHandler(d.Store))
		pr.With(rbac.Require("exam:view")).Get("/exams", ListExamsHandler(d))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}", GetExamHandler(d))
		pr.With(rbac.Require("exam:delete")).Delete("/exams/{examID}", DeleteExamHandler(d.Store))

		// taker flow
		pr.With(rbac.Require("session:start")).
			Post("/exams/{examID}/sessions", StartSessionHandler(d.Store, d.Sessions))
		pr.With(rbac.Require("session:view")).
			Get("/sessions/current", CurrentSessionHandler(d.Sessions))
		pr.With(rbac.Require("session:respond")).
			Put("/sessions/current/responses/{questionID}", RecordResponseHandler(d.Sessions))
		pr.With(rbac.Require("session:submit")).
			Post("/sessions/current/submit", SubmitSessionHandler(d.Sessions))
		pr.With(rbac.Require("session:cancel")).
			Delete("/sessions/current", CancelSessionHandler(d.Sessions))

		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", ListAttemptsHandler(d.Store))

		// results
		pr.With(rbac.Require("results:view")).Get("/exams/{examID}/stats", StatsHandler(d.Store))
		pr.With(rbac.Require("results:export")).Get("/exams/{examID}/results.csv", ResultsCSVHandler(d.Store))
		if d.Blobs != nil {
			pr.With(rbac.Require("results:export")).
				Post("/exams/{examID}/results/export", ExportResultsHandler(d.Store, d.Blobs, d.PublicURL, d.now))
			pr.With(rbac.Require("results:export")).Route("/exports", func(er chi.Router) {
				MountExports(er, d.Blobs)
			})
		}
		if d.Events != nil {
			pr.With(rbac.Require("events:view")).Get("/events", ListEventsHandler(d.Events))
		}
	})
}
