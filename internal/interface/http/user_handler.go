package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/motormarket/user-service/internal/application"
	"github.com/motormarket/user-service/internal/domain/entity"
	"github.com/motormarket/user-service/pkg/response"
	"github.com/motormarket/user-service/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// respondError maps the service error kind to an HTTP status. This is the
// only place a kind becomes a status code.
func respondError(c *gin.Context, err *application.Error) {
	status := http.StatusInternalServerError
	switch err.Kind {
	case application.KindValidation:
		status = http.StatusBadRequest
	case application.KindUnauthorized:
		status = http.StatusUnauthorized
	case application.KindNotFound:
		status = http.StatusNotFound
	case application.KindConflict:
		status = http.StatusConflict
	}
	response.Error[any](c, status, err.Message, nil)
}

// userView is the serializable profile shape. The password digest is never
// part of it.
func userView(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"type":       u.Type,
		"phone":      u.Phone,
		"avatar_url": u.AvatarURL,
		"favorites":  u.Favorites,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Semantic checks (email syntax, password length, phone length) run inside
// the service so registration's precondition order is preserved; binding
// only enforces field presence here.
type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Type     string `json:"type"`
	Phone    string `json:"phone" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type editUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Type  *string `json:"type"`
}

// Register POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, appErr := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Type:     req.Type,
		Phone:    req.Phone,
	})
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"token": token}, "registered successfully", nil)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, appErr := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "login successful", nil)
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	u, appErr := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userView(u)}, "profile", nil)
}

// EditUser PUT /api/users/:id
func (h *UserHandler) EditUser(c *gin.Context) {
	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, appErr := h.Svc.EditUser(c.Request.Context(), c.Param("id"), application.EditInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Type:  req.Type,
	})
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userView(u)}, "profile updated", nil)
}

// UploadAvatar POST /api/users/:id/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, appErr := h.Svc.UploadAvatar(c.Request.Context(), c.Param("id"), f,
		fh.Filename, fh.Header.Get("Content-Type"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

// Search GET /api/search/users?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, appErr := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": hits}, "search results", gin.H{"count": len(hits)})
}
