package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/motormarket/user-service/internal/application"
	"github.com/motormarket/user-service/internal/domain/entity"
	"github.com/motormarket/user-service/pkg/response"
	"github.com/motormarket/user-service/pkg/validation"
)

type FavoritesHandler struct {
	Svc    *application.FavoritesService
	Logger *logrus.Logger
}

func NewFavoritesHandler(svc *application.FavoritesService, logger *logrus.Logger) *FavoritesHandler {
	return &FavoritesHandler{Svc: svc, Logger: logger}
}

func carView(car entity.Car) gin.H {
	return gin.H{
		"id":          car.ID,
		"owner_id":    car.OwnerID,
		"title":       car.Title,
		"make":        car.Make,
		"model":       car.Model,
		"year":        car.Year,
		"price_cents": car.PriceCents,
		"created_at":  car.CreatedAt,
	}
}

func carViews(cars []entity.Car) []gin.H {
	out := make([]gin.H, 0, len(cars))
	for _, c := range cars {
		out = append(out, carView(c))
	}
	return out
}

type addFavoriteRequest struct {
	CarID string `json:"car_id" binding:"required"`
}

// Add POST /api/users/:id/favorites
func (h *FavoritesHandler) Add(c *gin.Context) {
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if appErr := h.Svc.AddFavorite(c.Request.Context(), c.Param("id"), req.CarID); appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Car added to favorites", nil)
}

// Remove DELETE /api/users/:id/favorites/:carID
func (h *FavoritesHandler) Remove(c *gin.Context) {
	if appErr := h.Svc.RemoveFavorite(c.Request.Context(), c.Param("id"), c.Param("carID")); appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Car removed from favorites", nil)
}

// List GET /api/users/:id/favorites
func (h *FavoritesHandler) List(c *gin.Context) {
	cars, appErr := h.Svc.ListFavorites(c.Request.Context(), c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorites": carViews(cars)}, "favorites", nil)
}

// OwnedCars GET /api/users/:id/cars
func (h *FavoritesHandler) OwnedCars(c *gin.Context) {
	cars, appErr := h.Svc.ListOwnedCars(c.Request.Context(), c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cars": carViews(cars)}, "cars", nil)
}
