package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	abcookie "github.com/brendadeeznuts1111/abcookie"
)

func testManager(t *testing.T) *abcookie.Manager {
	t.Helper()
	cfg := abcookie.DefaultConfig()
	cfg.Signer.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Cookie.Secure = false

	manager, err := abcookie.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(manager.Close)
	return manager
}

func subjectFromHeader(r *http.Request) string {
	return r.Header.Get("X-Subject")
}

func captureAssignment(t *testing.T, got *abcookie.Assignment, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assignment, ok := AssignmentFromContext(r.Context())
		*found = ok
		if ok {
			*got = assignment
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAssignIssuesCookieOnFirstVisit(t *testing.T) {
	manager := testManager(t)

	var assignment abcookie.Assignment
	var found bool
	handler := Assign(manager, "landing", subjectFromHeader)(captureAssignment(t, &assignment, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "user123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !found {
		t.Fatal("no assignment in context")
	}
	if assignment.Variant == "" {
		t.Fatalf("empty variant: %+v", assignment)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 Set-Cookie, got %d", len(cookies))
	}
	if cookies[0].Name != manager.CookieName("landing") {
		t.Fatalf("cookie name = %q", cookies[0].Name)
	}
}

func TestAssignHonorsValidCookie(t *testing.T) {
	manager := testManager(t)

	// First pass issues the cookie.
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "user123")
	issuer := Assign(manager, "landing", subjectFromHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	issuer.ServeHTTP(first, req)

	issued := first.Result().Cookies()
	if len(issued) != 1 {
		t.Fatalf("expected issued cookie, got %d", len(issued))
	}

	// Second pass presents it back; no re-issue should happen.
	var assignment abcookie.Assignment
	var found bool
	handler := Assign(manager, "landing", subjectFromHeader)(captureAssignment(t, &assignment, &found))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "user123")
	req.AddCookie(issued[0])
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !found {
		t.Fatal("no assignment in context")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("valid cookie was re-issued")
	}
}

func TestAssignReissuesOnForeignCookie(t *testing.T) {
	manager := testManager(t)

	// Cookie issued for another subject must be replaced.
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "alice")
	issuer := Assign(manager, "landing", subjectFromHeader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	issuer.ServeHTTP(first, req)
	issued := first.Result().Cookies()

	var assignment abcookie.Assignment
	var found bool
	handler := Assign(manager, "landing", subjectFromHeader)(captureAssignment(t, &assignment, &found))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "bob")
	req.AddCookie(issued[0])
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !found {
		t.Fatal("no assignment in context")
	}
	if assignment.SubjectID != "bob" {
		t.Fatalf("assignment subject = %q", assignment.SubjectID)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("foreign cookie not re-issued")
	}
}

func TestObserveNeverSetsCookie(t *testing.T) {
	manager := testManager(t)

	var assignment abcookie.Assignment
	var found bool
	handler := Observe(manager, "landing", subjectFromHeader)(captureAssignment(t, &assignment, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Subject", "user123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !found {
		t.Fatal("no assignment in context")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("Observe wrote a Set-Cookie")
	}
}

func TestAssignNilManagerPassesThrough(t *testing.T) {
	var found bool
	var assignment abcookie.Assignment
	handler := Assign(nil, "landing", subjectFromHeader)(captureAssignment(t, &assignment, &found))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if found {
		t.Fatal("assignment present without a manager")
	}
}
