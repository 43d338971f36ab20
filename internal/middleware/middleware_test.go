package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/models"
	"workshops/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *security.TokenIssuer) *gin.Engine {
	log := zerolog.Nop()
	r := gin.New()
	r.Use(RequestID(log), Recovery(log), Logger(log), CORS([]string{"https://workshops.example"}))

	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	authed := r.Group("/", Auth(tokens))
	authed.GET("/me", func(c *gin.Context) {
		claims, _ := Claims(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	authed.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, tokens *security.TokenIssuer, roles ...string) http.Header {
	t.Helper()
	token, err := tokens.Generate("user-1", "a@b.com", roles)
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestAuth(t *testing.T) {
	tokens := security.NewTokenIssuer("secret", "workshops-api", "workshops-web", time.Hour)
	r := newRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer nonsense"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", http.Header{"Authorization": {"Basic abc"}}).Code)

	other := security.NewTokenIssuer("other-secret", "workshops-api", "workshops-web", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", bearer(t, other, "USER")).Code)

	w := do(r, http.MethodGet, "/me", bearer(t, tokens, "USER"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"user-1"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	tokens := security.NewTokenIssuer("secret", "workshops-api", "workshops-web", time.Hour)
	r := newRouter(tokens)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", bearer(t, tokens, "USER")).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", bearer(t, tokens, "ADMIN")).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter(security.NewTokenIssuer("secret", "a", "b", time.Hour))

	w := do(r, http.MethodGet, "/open", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))

	w = do(r, http.MethodGet, "/open", nil)
	assert.Len(t, w.Header().Get("X-Request-Id"), 36)
}

func TestCORS(t *testing.T) {
	r := newRouter(security.NewTokenIssuer("secret", "a", "b", time.Hour))

	w := do(r, http.MethodOptions, "/open", http.Header{"Origin": {"https://workshops.example"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://workshops.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodGet, "/open", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := newRouter(security.NewTokenIssuer("secret", "a", "b", time.Hour))

	w := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
