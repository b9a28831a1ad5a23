package middleware

import (
	"context"
	"net/http"

	abcookie "github.com/brendadeeznuts1111/abcookie"
)

type assignmentContextKey struct{}

// SubjectResolver extracts the stable subject identifier from a request,
// typically a user ID from the session or an anonymous device ID cookie.
// Returning "" is allowed; anonymous subjects share one deterministic arm.
type SubjectResolver func(r *http.Request) string

// AssignmentFromContext returns the variant assignment a middleware in the
// chain resolved for this request.
func AssignmentFromContext(ctx context.Context) (abcookie.Assignment, bool) {
	res, ok := ctx.Value(assignmentContextKey{}).(abcookie.Assignment)
	return res, ok
}

// Assign returns middleware that resolves the request's variant for one
// experiment and injects it into the request context. A valid variant
// cookie is honored as-is; a missing, forged, or stale one triggers a fresh
// deterministic assignment and a Set-Cookie on the response.
func Assign(manager *abcookie.Manager, experimentID string, resolve SubjectResolver) func(http.Handler) http.Handler {
	return handle(manager, experimentID, resolve, true)
}

// Observe is the read-only form of [Assign]: it resolves the variant the
// same way but never writes a cookie, which suits endpoints that must not
// mutate response headers (caches, redirects).
func Observe(manager *abcookie.Manager, experimentID string, resolve SubjectResolver) func(http.Handler) http.Handler {
	return handle(manager, experimentID, resolve, false)
}

func handle(manager *abcookie.Manager, experimentID string, resolve SubjectResolver, issue bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			subjectID := ""
			if resolve != nil {
				subjectID = resolve(r)
			}

			if cookie, err := r.Cookie(manager.CookieName(experimentID)); err == nil {
				result := manager.ValidateVariant(r.Context(), cookie.Value, subjectID)
				if result.Valid {
					assignment := abcookie.Assignment{
						SubjectID:  subjectID,
						Experiment: experimentID,
						Variant:    result.Variant,
					}
					next.ServeHTTP(w, r.WithContext(withAssignment(r.Context(), assignment)))
					return
				}
			}

			assignment, err := manager.AssignVariant(r.Context(), subjectID, experimentID)
			if err != nil {
				// Bad experiment configuration on the route itself; the
				// page still renders, just without a variant.
				next.ServeHTTP(w, r)
				return
			}

			if issue {
				cookie, err := manager.CreateVariantCookie(r.Context(), subjectID, assignment.Variant, experimentID)
				if err == nil {
					http.SetCookie(w, cookie)
				}
			}

			next.ServeHTTP(w, r.WithContext(withAssignment(r.Context(), assignment)))
		})
	}
}

func withAssignment(ctx context.Context, assignment abcookie.Assignment) context.Context {
	return context.WithValue(ctx, assignmentContextKey{}, assignment)
}
