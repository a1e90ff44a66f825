package rbac

import (
	"context"
	"net/http"
)

var defaultChecker = NewChecker(nil)

// guard lets the request through when allowed accepts its context.
func guard(allowed func(ctx context.Context) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(r.Context()) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(ctx context.Context) bool { return Can(ctx, perm) })
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(ctx context.Context) bool {
		return defaultChecker.Any(RoleFromContext(ctx), perms...)
	})
}
