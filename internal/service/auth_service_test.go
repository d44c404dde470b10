package service

import (
	"testing"
	"time"

	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/testutil"
	"care_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour}}
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuthService(t)

	user, err := s.Register(RegisterRequest{Name: " Lena ", Email: "Lena@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Lena", user.Name)
	assert.Equal(t, "lena@example.com", user.Email)
	assert.Equal(t, model.Trainee, user.Role)
	assert.NotEqual(t, "correct horse", user.Password)

	res, err := s.Login(LoginRequest{Email: "lena@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLogin)

	claims, err := util.ParseJWT(res.Token, s.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Trainee, claims.Role)

	stored, err := s.Profile(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newAuthService(t)
	_, err := s.Register(RegisterRequest{Name: "Max", Email: "max@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = s.Register(RegisterRequest{Name: "Max 2", Email: "MAX@example.com", Password: "password2"})
	require.Error(t, err)
	assert.True(t, util.IsConflict(err))
}

func TestRegisterValidation(t *testing.T) {
	s := newAuthService(t)
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"blank name", RegisterRequest{Name: "   ", Email: "a@example.com", Password: "password1"}, "name"},
		{"bad email", RegisterRequest{Name: "A", Email: "nope", Password: "password1"}, "email"},
		{"short password", RegisterRequest{Name: "A", Email: "a@example.com", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.req)
			var verr *util.ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newAuthService(t)
	_, err := s.Register(RegisterRequest{Name: "Noor", Email: "noor@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = s.Login(LoginRequest{Email: "noor@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = s.Login(LoginRequest{Email: "ghost@example.com", Password: "password1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestCreateAdmin(t *testing.T) {
	s := newAuthService(t)
	admin, err := s.CreateAdmin("Root", "root@example.com", "password1")
	require.NoError(t, err)

	stored, err := s.Profile(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Admin, stored.Role)
}
