package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/user-service/internal/container"
	handlers "github.com/motormarket/user-service/internal/interface/http"
	"github.com/motormarket/user-service/internal/interface/middleware"
	"github.com/motormarket/user-service/pkg/helpers"
)

// UserModule wires account HTTP handlers and auth middleware into routes.
// Public: POST /api/register, POST /api/login
// Protected: GET/PUT /api/users/:id, POST /api/users/:id/avatar, GET /api/search/users
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  *helpers.TokenManager
}

func NewUserModule(h *handlers.UserHandler, tokens *helpers.TokenManager) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		// /search/users rather than /users/search: gin's tree rejects a
		// static child next to the :id wildcard.
		auth.GET("/search/users", m.Handler.Search)
		auth.GET("/users/:id", m.Handler.GetUser)
		auth.PUT("/users/:id", m.Handler.EditUser)
		auth.POST("/users/:id/avatar", m.Handler.UploadAvatar)
	}
}
