package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mind-engage/mindengage-exams/internal/rbac"
)

func TestChecker(t *testing.T) {
	c := rbac.NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "session:start", true},
		{"student", "session:submit", true},
		{"student", "exam:create", false},
		{"student", "attempt:view-all", false},
		{"teacher", "results:export", true},
		{"teacher", "session:start", false},
		{"teacher", "events:view", true},
		{"admin", "anything:at-all", true},
		{"", "exam:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
	if !c.Any("student", "exam:create", "attempt:view-own") {
		t.Fatalf("Any should match the second permission")
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := rbac.Require("exam:create")(ok)

	for role, want := range map[string]int{"teacher": 200, "student": 403, "": 403} {
		req := httptest.NewRequest(http.MethodPost, "/exams", nil)
		req = req.WithContext(rbac.WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := rbac.WithSubject(rbac.WithRole(context.Background(), "student"), "u1")
	if rbac.SubjectFromContext(ctx) != "u1" || rbac.RoleFromContext(ctx) != "student" {
		t.Fatalf("context values lost")
	}
	if !rbac.Can(ctx, "attempt:view-own") || rbac.Can(ctx, "attempt:view-all") {
		t.Fatalf("Can disagrees with rules")
	}
}

func TestRequireAny(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := rbac.RequireAny("attempt:view-own", "attempt:view-all")(ok)

	for role, want := range map[string]int{"student": 200, "teacher": 200, "admin": 200, "guest": 403} {
		req := httptest.NewRequest(http.MethodGet, "/attempts", nil)
		req = req.WithContext(rbac.WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}
