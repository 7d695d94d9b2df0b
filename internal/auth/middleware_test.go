package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/auth"
	"github.com/mahendra-dev/backend-bangunan/internal/common"
)

const testSecret = "bangunan-test-secret"

func signToken(t *testing.T, sub string, roles []string, exp time.Time) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Subject(sub).
		Issuer("bangunan-auth").
		Expiration(exp)
	if roles != nil {
		builder = builder.Claim("roles", roles)
	}
	tok, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)
	return string(signed)
}

func newMiddleware() auth.Middleware {
	return auth.Middleware{Verifier: auth.Verifier{
		Secret: []byte(testSecret),
		Issuer: "bangunan-auth",
	}}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	mw := newMiddleware()
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	mw := newMiddleware()
	token := signToken(t, "cust-1", nil, time.Now().Add(-time.Hour))
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	mw := newMiddleware()
	token := signToken(t, "cust-1", []string{"admin"}, time.Now().Add(time.Hour))
	var gotID string
	var gotAdmin bool
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = common.CustomerID(r.Context())
		gotAdmin = common.HasRole(r.Context(), "admin")
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cust-1", gotID)
	require.True(t, gotAdmin)
}

func TestRequireRole(t *testing.T) {
	mw := newMiddleware()
	token := signToken(t, "cust-2", []string{"customer"}, time.Now().Add(time.Hour))
	handler := mw.RequireAuth(auth.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticatePassesThroughAnonymously(t *testing.T) {
	mw := newMiddleware()
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := common.CustomerID(r.Context())
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
