package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ivankudzin/matrimony/internal/services/auth"
)

func TestRequireRoleAllowsCaseInsensitiveMatch(t *testing.T) {
	mw := RequireRole("ADMIN")

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/profiles/MAT010001/premium", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   "admin",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsForbiddenRole(t *testing.T) {
	mw := RequireRole("admin")

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/profiles/MAT010001/premium", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 2,
		SID:    "sid-2",
		Role:   "user",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsMissingIdentity(t *testing.T) {
	mw := RequireRole("admin")

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/profiles/1/verification", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		in    string
		token string
		ok    bool
	}{
		{in: "Bearer abc", token: "abc", ok: true},
		{in: "bearer abc", token: "abc", ok: true},
		{in: "Basic abc", ok: false},
		{in: "Bearer ", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		token, ok := extractBearerToken(tc.in)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("extractBearerToken(%q): got (%q, %v) want (%q, %v)", tc.in, token, ok, tc.token, tc.ok)
		}
	}
}

type observation struct {
	method string
	route  string
	status int
}

type observerStub struct {
	seen []observation
}

func (o *observerStub) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{method: method, route: route, status: status})
}

func TestRequestLoggerObservesRoutePattern(t *testing.T) {
	observer := &observerStub{}
	r := chi.NewRouter()
	ApplyMiddlewares(r, nil, []string{"http://localhost:3000"}, observer)
	r.Get("/v1/chat/{userID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/chat/42", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTeapot)
	}
	if len(observer.seen) != 1 {
		t.Fatalf("unexpected observations: got %d want 1", len(observer.seen))
	}
	got := observer.seen[0]
	if got.method != http.MethodGet || got.route != "/v1/chat/{userID}" || got.status != http.StatusTeapot {
		t.Fatalf("unexpected observation: %+v", got)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := chi.NewRouter()
	ApplyMiddlewares(r, nil, []string{"http://localhost:3000"}, nil)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin for foreign site: got %q", got)
	}
}
