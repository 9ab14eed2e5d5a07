package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromCtx(r)
	role, _ := RoleFromCtx(r)
	w.Write([]byte(id + "|" + role)) //nolint:errcheck
}

func TestIdentifyAttachesValidToken(t *testing.T) {
	tok, err := auth.GenerateToken("user-1", auth.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	Identify(http.HandlerFunc(echoIdentity)).ServeHTTP(rec, req)

	assert.Equal(t, "user-1|customer", rec.Body.String())
}

func TestIdentifyPassesAnonymousThrough(t *testing.T) {
	for _, header := range []string{"", "Bearer not-a-jwt", "Basic abc"} {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		Identify(http.HandlerFunc(echoIdentity)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Equal(t, "|", rec.Body.String(), header)
	}
}

func TestIdentifyQueryToken(t *testing.T) {
	tok, err := auth.GenerateToken("maker-1", auth.RoleFoodMaker)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	Identify(http.HandlerFunc(echoIdentity)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/orders?access_token="+tok, nil))

	assert.Equal(t, "maker-1|food_maker", rec.Body.String())
}

func TestAuthenticateRejectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	Authenticate(http.HandlerFunc(echoIdentity)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Evict())
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRecoveryReturns500(t *testing.T) {
	rec := httptest.NewRecorder()
	Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://tiffin.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS(DefaultCORSOptions())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}
