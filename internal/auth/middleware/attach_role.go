package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mind-engage/mindengage-exams/internal/exam"
	"github.com/mind-engage/mindengage-exams/internal/rbac"
)

// RoleLookup returns the stored role for a subject.
type RoleLookup func(ctx context.Context, sub string) (string, error)

// AttachRoleFromStore replaces the token's role claim with the stored one,
// so demoted accounts lose access before their token expires.
// allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromStore(lookup RoleLookup, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := lookup(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, exam.ErrNotFound) && allowClaimFallback && claimRole != "":
				next.ServeHTTP(w, r)
			default:
				if err != nil && !errors.Is(err, exam.ErrNotFound) {
					log.Error().Err(err).Str("sub", sub).Msg("role lookup")
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
