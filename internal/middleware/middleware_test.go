package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Initialize(); err != nil {
		panic(err)
	}
	utils.SetJWTSecret("middleware-test-secret")
}

func TestResolveLang(t *testing.T) {
	cases := map[string]string{
		"":               "pt_BR",
		"pt":             "pt_BR",
		"pt-BR,pt;q=0.9": "pt_BR",
		"en-US,en;q=0.9": "en",
		"en-GB":          "en",
		"fr":             "pt_BR",
		";;;":            "pt_BR",
	}
	for header, want := range cases {
		assert.Equal(t, want, ResolveLang(header), header)
	}
}

func TestExtractResource(t *testing.T) {
	assert.Equal(t, "movimentacoes", extractResourceType("/api/v1/movimentacoes/12/aprovar"))
	assert.Equal(t, "bens", extractResourceType("/api/v1/bens"))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "unknown", extractResourceType("/"))

	id := extractResourceID("/api/v1/movimentacoes/12/aprovar")
	require.NotNil(t, id)
	assert.Equal(t, uint(12), *id)
	assert.Nil(t, extractResourceID("/api/v1/movimentacoes/acoes/aprovar"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))

	// anything but a uuid is replaced
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

type fakeLoader map[uint]*models.Usuario

func (l fakeLoader) GetUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	if u, ok := l[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func authEngine(loader UsuarioLoader) *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/me", AuthRequired(loader), func(c *gin.Context) {
		c.String(http.StatusOK, GetAtor(c).Username)
	})
	r.GET("/gestor", AuthRequired(loader), GestorRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	loader := fakeLoader{
		1: {BaseModel: models.BaseModel{ID: 1}, Username: "gestor", IsActive: true, Grupos: []string{string(models.PapelGestorPatrimonio)}},
		2: {BaseModel: models.BaseModel{ID: 2}, Username: "operador", IsActive: true, Grupos: []string{string(models.PapelOperadorInventario)}},
		3: {BaseModel: models.BaseModel{ID: 3}, Username: "inativo", IsActive: false},
	}
	r := authEngine(loader)

	token := func(id uint) string {
		tok, err := utils.GenerateJWT(id, "", nil, 1)
		require.NoError(t, err)
		return tok
	}

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token(3)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token(99)).Code)

	w := get(r, "/me", token(1))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gestor", w.Body.String())

	assert.Equal(t, http.StatusNoContent, get(r, "/gestor", token(1)).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/gestor", token(2)).Code)

	// the token's roles are ignored, the stored ones apply
	forged, err := utils.GenerateJWT(2, "operador", []string{string(models.PapelGestorPatrimonio)}, 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/gestor", forged).Code)
}

func TestAuthRequiredTranslatesMessage(t *testing.T) {
	r := authEngine(fakeLoader{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), i18n.T("en", i18n.KeyAuthRequired))
}

func TestAuditLogMiddleware(t *testing.T) {
	st := store.NewMemoryStore()
	r := gin.New()
	r.Use(RequestID())
	r.Use(AuditLogMiddleware(st))
	r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })
	r.GET("/api/v1/bens", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bens", nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"login":"gestor","password":"segredo"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Eventually(t, func() bool { return len(st.AuditLogs()) == 1 }, time.Second, 10*time.Millisecond)
	entry := st.AuditLogs()[0]
	assert.Equal(t, "POST /api/v1/auth/login", entry.Action)
	assert.Equal(t, "auth", entry.ResourceType)
	assert.Equal(t, http.StatusUnauthorized, entry.StatusCode)
	assert.Equal(t, w.Header().Get(RequestIDHeader), entry.RequestID)
	assert.Equal(t, "gestor", entry.NewValues["login"])
	assert.NotContains(t, entry.NewValues, "password")
}
