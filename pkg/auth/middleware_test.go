package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// identityRecorder captures the identity the middleware resolved.
func identityRecorder(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidBearerToken(t *testing.T) {
	svc := newTestTokenService(t, 0)
	token, err := svc.Issue(Claim{Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	r := httptest.NewRequest("GET", "/users", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id == nil || id.Username != "alice" {
		t.Errorf("identity = %+v, want alice", id)
	}
}

func TestMiddleware_QueryTokenFallback(t *testing.T) {
	svc := newTestTokenService(t, 0)
	token, err := svc.Issue(Claim{Username: "bob"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	r := httptest.NewRequest("GET", "/users?"+TokenField+"="+token, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id == nil || id.Username != "bob" {
		t.Errorf("identity = %+v, want bob", id)
	}
}

func TestMiddleware_MissingTokenIsAnonymous(t *testing.T) {
	svc := newTestTokenService(t, 0)

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	r := httptest.NewRequest("GET", "/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id != nil {
		t.Errorf("identity = %+v, want anonymous", id)
	}
	// Anonymous is not a rejection: the handler still ran.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMiddleware_InvalidTokenIsAnonymous(t *testing.T) {
	svc := newTestTokenService(t, 0)

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	r := httptest.NewRequest("GET", "/users", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id != nil {
		t.Errorf("identity = %+v, want anonymous", id)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMiddleware_HeaderWinsOverQuery(t *testing.T) {
	svc := newTestTokenService(t, 0)
	headerToken, _ := svc.Issue(Claim{Username: "alice"})
	queryToken, _ := svc.Issue(Claim{Username: "bob"})

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	r := httptest.NewRequest("GET", "/users?"+TokenField+"="+queryToken, nil)
	r.Header.Set("Authorization", "Bearer "+headerToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id == nil || id.Username != "alice" {
		t.Errorf("identity = %+v, want alice (header token)", id)
	}
}

func TestMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	svc := newTestTokenService(t, 0)
	token, _ := svc.Issue(Claim{Username: "alice"})

	var id *Identity
	handler := Middleware(svc)(identityRecorder(&id))

	// A non-Bearer Authorization header yields no token; the query field is
	// not consulted as a second chance.
	r := httptest.NewRequest("GET", "/users?"+TokenField+"="+token, nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if id != nil {
		t.Errorf("identity = %+v, want anonymous", id)
	}
}
