package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticResolver map[string]string

func (r staticResolver) Resolve(token string) (string, bool) {
	userID, ok := r[token]
	return userID, ok
}

func newProtected(resolver TokenResolver) (http.Handler, *string) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		seen = principal
		w.WriteHeader(http.StatusOK)
	})
	reject := func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}
	return Middleware(resolver, reject)(handler), &seen
}

func TestMiddlewareAcceptsBearerHeader(t *testing.T) {
	protected, seen := newProtected(staticResolver{"tok-1": "ann"})

	req := httptest.NewRequest(http.MethodPost, "/articles", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != "ann" {
		t.Fatalf("principal = %q, want %q", *seen, "ann")
	}
}

func TestMiddlewareFallsBackToCookie(t *testing.T) {
	protected, seen := newProtected(staticResolver{"tok-1": "ann"})

	req := httptest.NewRequest(http.MethodPost, "/articles", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tok-1"})
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != "ann" {
		t.Fatalf("principal = %q, want %q", *seen, "ann")
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	protected, seen := newProtected(staticResolver{})

	req := httptest.NewRequest(http.MethodPost, "/articles", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *seen != "" {
		t.Fatal("handler ran for an unauthenticated request")
	}
}

func TestMiddlewareRejectsUnknownToken(t *testing.T) {
	protected, seen := newProtected(staticResolver{"tok-1": "ann"})

	req := httptest.NewRequest(http.MethodPost, "/articles", nil)
	req.Header.Set("Authorization", "Bearer tok-2")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *seen != "" {
		t.Fatal("handler ran with an invalid token")
	}
}

func TestPrincipalFromContextAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	if _, ok := PrincipalFromContext(req.Context()); ok {
		t.Fatal("principal reported for a request that never passed the middleware")
	}
}
