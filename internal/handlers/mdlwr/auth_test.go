package mdlwr

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hackvote/pkg/user"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, key string, claims gojwt.MapClaims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newRouter(t *testing.T, admins user.Admins) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth, err := NewAuthMiddleware(testSecret, admins, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/", auth.MiddlewareFunc())
	api.GET("/me", func(c *gin.Context) {
		p, err := PrincipalFrom(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, p)
	})
	api.GET("/admin", RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Principal(t *testing.T) {
	r := newRouter(t, user.NewStaticAdmins("boss"))
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		token      string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "participant",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "u1", "role": "participant", "exp": exp}),
			path:       "/me",
			wantStatus: http.StatusOK,
			wantBody:   `{"user_id":"u1","is_admin":false}`,
		},
		{
			name:       "admin by role",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "u2", "role": "admin", "exp": exp}),
			path:       "/me",
			wantStatus: http.StatusOK,
			wantBody:   `{"user_id":"u2","is_admin":true}`,
		},
		{
			name:       "admin by static list",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "boss", "exp": exp}),
			path:       "/me",
			wantStatus: http.StatusOK,
			wantBody:   `{"user_id":"boss","is_admin":true}`,
		},
		{
			name:       "no token",
			path:       "/me",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			token:      signed(t, "other", gojwt.MapClaims{"user_id": "u1", "exp": exp}),
			path:       "/me",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
			path:       "/me",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no user id",
			token:      signed(t, testSecret, gojwt.MapClaims{"role": "admin", "exp": exp}),
			path:       "/me",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "admin route as participant",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "u1", "exp": exp}),
			path:       "/admin",
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":{"code":"ADMIN_ONLY","message":"admin rights required"}}`,
		},
		{
			name:       "admin route as admin",
			token:      signed(t, testSecret, gojwt.MapClaims{"user_id": "u2", "role": "admin", "exp": exp}),
			path:       "/admin",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.path, tt.token)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				require.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	auth, err := NewAuthMiddleware(testSecret, nil, time.Hour)
	require.NoError(t, err)

	token, expire, err := IssueToken(auth, user.Principal{UserID: "u9", IsAdmin: true})
	require.NoError(t, err)
	require.True(t, expire.After(time.Now()))

	r := newRouter(t, nil)
	w := do(r, "/admin", token)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestPrincipalFrom_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := PrincipalFrom(c)
	require.ErrorIs(t, err, user.ErrNoPrincipal)

	SetPrincipal(c, user.Principal{UserID: "u1"})
	p, err := PrincipalFrom(c)
	require.NoError(t, err)
	require.Equal(t, "u1", p.UserID)
}
