package middleware

import (
	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/logger"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

var ErrMissingToken = errors.New("missing bearer token")

// Identity 当前请求的调用者
type Identity struct {
	UserID uint           `json:"userId"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Role   model.UserRole `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i.Role == model.Admin
}

// IdentityProvider 从请求中解析身份，启动时选定一种实现
type IdentityProvider interface {
	Resolve(c *gin.Context) (*Identity, error)
}

// SessionIdentityProvider Authorization: Bearer <jwt>，websocket 握手可用 ?token=
type SessionIdentityProvider struct {
	Secret string
}

func (p *SessionIdentityProvider) Resolve(c *gin.Context) (*Identity, error) {
	tokenString := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := util.ParseJWT(tokenString, p.Secret)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}

// FixedIdentityProvider 开发和测试环境使用，所有请求都是同一个身份
type FixedIdentityProvider struct {
	Identity Identity
}

func (p *FixedIdentityProvider) Resolve(*gin.Context) (*Identity, error) {
	id := p.Identity
	return &id, nil
}

func NewIdentityProvider(cfg *config.Config) (IdentityProvider, error) {
	switch cfg.Auth.IdentityMode {
	case util.IdentitySession:
		return &SessionIdentityProvider{Secret: cfg.JWT.Secret}, nil
	case util.IdentityFixed:
		if cfg.Server.Mode == "release" {
			return nil, errors.New("fixed identity is not allowed in release mode")
		}
		role := model.UserRole(cfg.Auth.Fixed.Role)
		if role == "" {
			role = model.Trainee
		}
		logger.Log.Warn("Using fixed identity for all requests", zap.Uint("user_id", cfg.Auth.Fixed.UserID))
		return &FixedIdentityProvider{Identity: Identity{
			UserID: cfg.Auth.Fixed.UserID,
			Name:   cfg.Auth.Fixed.Name,
			Email:  cfg.Auth.Fixed.Email,
			Role:   role,
		}}, nil
	}
	return nil, fmt.Errorf("unknown identity mode %q", cfg.Auth.IdentityMode)
}

func AuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := provider.Resolve(c)
		if err != nil {
			logger.Log.Debug("Identity resolution failed", zap.Error(err), zap.String("path", c.FullPath()))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware 令牌缺失或无效时按游客处理
func OptionalAuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := provider.Resolve(c); err == nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// CurrentIdentity 只在 AuthMiddleware 或 OptionalAuthMiddleware 之后可用
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok && identity != nil
}

// RoleMiddleware 管理员拥有所有权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := identity.IsAdmin()
		for _, role := range roles {
			if identity.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
