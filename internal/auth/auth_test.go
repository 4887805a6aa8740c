package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	repo "Taper/internal/repo"

	"github.com/golang-jwt/jwt/v5"
)

func newEnv() *Authenv {
	return &Authenv{JWTkey: []byte("test-key"), Repo: repo.NewMemory()}
}

func do(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv()
	rec := do(env.RegisterHandler, `{"login":"reza","email":"reza@example.com","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("no session cookie")
	}
	if rec := do(env.RegisterHandler, `{"login":"reza","email":"reza@example.com","password":"secret1"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status %d", rec.Code)
	}
	if rec := do(env.RegisterHandler, `{"login":"a","email":"a@example.com","password":"123"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("short password status %d", rec.Code)
	}

	tests := []struct {
		body string
		want int
	}{
		{`{"login":"reza","password":"secret1"}`, http.StatusOK},
		{`{"login":"reza","password":"wrong!!"}`, http.StatusUnauthorized},
		{`{"login":"nobody","password":"secret1"}`, http.StatusUnauthorized},
		{`{"login":"","password":""}`, http.StatusBadRequest},
		{`nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(env.AuthHandler, tt.body); rec.Code != tt.want {
			t.Errorf("login %s: status %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newEnv()
	var seen int
	h := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))

	token, err := env.NewToken(7, "reza", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != 7 {
		t.Fatalf("cookie: status %d user %d", rec.Code, seen)
	}

	seen = 0
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != 7 {
		t.Fatalf("bearer: status %d user %d", rec.Code, seen)
	}

	expired, _ := env.NewToken(7, "reza", time.Now().Add(-2*SessionTTL))
	seen = 0
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: expired})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != 7 {
		t.Fatalf("bearer with stale cookie: status %d user %d", rec.Code, seen)
	}

	seen = 0
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic cmV6YTpwdw==")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != 7 {
		t.Fatalf("basic header with cookie: status %d user %d", rec.Code, seen)
	}


	other, _ := (&Authenv{JWTkey: []byte("other")}).NewToken(7, "reza", time.Now())
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7, "login": "reza"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	for name, tok := range map[string]string{"missing": "", "expired": expired, "wrong key": other, "alg none": none, "garbage": "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tok != "" {
			req.AddCookie(&http.Cookie{Name: "session_token", Value: tok})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d", name, rec.Code)
		}
	}
}

func TestLimitMiddleware(t *testing.T) {
	l := NewIPRateLimiter(0, 2)
	h := l.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 4)
	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.1:1001", "10.0.0.1:1002", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	want := []int{200, 200, 429, 200}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("got %v, want %v", codes, want)
		}
	}
}
