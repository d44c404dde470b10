package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-0123456789"

func newRouter(provider IdentityProvider, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.InitNop()
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(provider)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	})
	r.GET("/me", handlers...)
	return r
}

func token(t *testing.T, role model.UserRole, expiry time.Duration) string {
	user := &model.User{Name: "uma", Email: "uma@example.com", Role: role}
	user.ID = 5
	tok, err := util.GenerateJWT(user, testSecret, expiry)
	require.NoError(t, err)
	return tok
}

func TestSessionIdentity(t *testing.T) {
	r := newRouter(&SessionIdentityProvider{Secret: testSecret})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"bearer token", "/me", "Bearer " + token(t, model.Trainee, time.Hour), http.StatusOK},
		{"query token", "/me?token=" + token(t, model.Trainee, time.Hour), "", http.StatusOK},
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"expired token", "/me", "Bearer " + token(t, model.Trainee, -time.Minute), http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"userId":5`)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(&SessionIdentityProvider{Secret: testSecret}, model.Admin)

	for role, want := range map[model.UserRole]int{
		model.Trainee: http.StatusForbidden,
		model.Admin:   http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role, time.Hour))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, string(role))
	}
}

func TestFixedIdentity(t *testing.T) {
	logger.InitNop()
	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.Auth.IdentityMode = util.IdentityFixed
	cfg.Auth.Fixed = config.FixedIdentity{UserID: 42, Name: "Dev", Role: "admin"}

	provider, err := NewIdentityProvider(cfg)
	require.NoError(t, err)

	r := newRouter(provider, model.Admin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":42`)

	cfg.Server.Mode = "release"
	_, err = NewIdentityProvider(cfg)
	assert.Error(t, err)

	cfg.Auth.IdentityMode = "magic"
	cfg.Server.Mode = "debug"
	_, err = NewIdentityProvider(cfg)
	assert.Error(t, err)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.InitNop()
	r := gin.New()
	r.GET("/intake", OptionalAuthMiddleware(&SessionIdentityProvider{Secret: testSecret}), func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, identity.Email)
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no token", "", "guest"},
		{"invalid token", "Bearer nope", "guest"},
		{"valid token", "Bearer " + token(t, model.Trainee, time.Hour), "uma@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/intake", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
