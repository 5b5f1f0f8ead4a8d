package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/user-service/internal/container"
	handlers "github.com/motormarket/user-service/internal/interface/http"
	"github.com/motormarket/user-service/internal/interface/middleware"
	"github.com/motormarket/user-service/pkg/helpers"
)

// FavoritesModule wires the favorites and owned-car routes. All routes
// require an authenticated caller.
type FavoritesModule struct {
	Handler *handlers.FavoritesHandler
	Tokens  *helpers.TokenManager
}

func NewFavoritesModule(h *handlers.FavoritesHandler, tokens *helpers.TokenManager) *FavoritesModule {
	return &FavoritesModule{Handler: h, Tokens: tokens}
}

func (m *FavoritesModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/:id/favorites", m.Handler.List)
		auth.POST("/users/:id/favorites", m.Handler.Add)
		auth.DELETE("/users/:id/favorites/:carID", m.Handler.Remove)
		auth.GET("/users/:id/cars", m.Handler.OwnedCars)
	}
}
