package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/motormarket/user-service/internal/application"
	"github.com/motormarket/user-service/internal/domain/entity"
	repo "github.com/motormarket/user-service/internal/domain/repository"
	handlers "github.com/motormarket/user-service/internal/interface/http"
	"github.com/motormarket/user-service/internal/interface/middleware"
	"github.com/motormarket/user-service/pkg/helpers"
	"github.com/motormarket/user-service/pkg/validation"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*entity.User{}}
}

func (m *stubUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *stubUserRepo) Update(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *stubUserRepo) AddFavorite(ctx context.Context, userID, carID string) error {
	return nil
}

func (m *stubUserRepo) RemoveFavorite(ctx context.Context, userID, carID string) error {
	return nil
}

type envelope struct {
	Status    int            `json:"status"`
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	Data      map[string]any `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubUserRepo, *helpers.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	users := newStubUserRepo()
	tokens := helpers.NewTokenManager("test-secret", 0)
	svc := application.NewUserService(users, tokens)
	h := handlers.NewUserHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	auth := api.Group("/")
	auth.Use(middleware.Auth(tokens))
	auth.GET("/users/:id", h.GetUser)
	auth.PUT("/users/:id", h.EditUser)
	return r, users, tokens
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func registerPayload() map[string]any {
	return map[string]any{
		"name":     "Jane Doe",
		"email":    "jane@example.com",
		"password": "password1",
		"phone":    "5551234567",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	r, _, tokens := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/register", "", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	tok, _ := env.Data["token"].(string)
	require.NotEmpty(t, tok)
	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	require.NotEmpty(t, claims.UserID)

	require.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpointShortPassword(t *testing.T) {
	r, _, _ := newTestRouter(t)

	payload := registerPayload()
	payload["password"] = "short12"
	w, env := doJSON(t, r, http.MethodPost, "/api/register", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)
	require.Equal(t, "Password must be at least 8 characters", env.Message)
}

func TestLoginEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	_, env := doJSON(t, r, http.MethodPost, "/api/register", "", registerPayload())
	require.True(t, env.Success)

	w, env := doJSON(t, r, http.MethodPost, "/api/login", "", map[string]any{
		"email": "jane@example.com", "password": "wrongpass1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, env.Success)
	require.Equal(t, "Invalid credentials", env.Message)

	w, env = doJSON(t, r, http.MethodPost, "/api/login", "", map[string]any{
		"email": "jane@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	require.NotEmpty(t, env.Data["token"])
	require.NotContains(t, w.Body.String(), "password")
}

func TestGetUserRequiresAuthAndStripsPassword(t *testing.T) {
	r, users, tokens := newTestRouter(t)
	_, env := doJSON(t, r, http.MethodPost, "/api/register", "", registerPayload())
	require.True(t, env.Success)
	u, err := users.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodGet, "/api/users/"+u.ID, "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := tokens.Generate(u.ID)
	require.NoError(t, err)
	w, env = doJSON(t, r, http.MethodGet, "/api/users/"+u.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	require.NotContains(t, strings.ToLower(w.Body.String()), "password")

	user, _ := env.Data["user"].(map[string]any)
	require.Equal(t, "jane@example.com", user["email"])
}

func TestEditUserEndpointRejectsAdmin(t *testing.T) {
	r, users, tokens := newTestRouter(t)
	_, env := doJSON(t, r, http.MethodPost, "/api/register", "", registerPayload())
	require.True(t, env.Success)
	u, err := users.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	tok, err := tokens.Generate(u.ID)
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodPut, "/api/users/"+u.ID, tok, map[string]any{"type": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)
	require.Equal(t, "Invalid user type", env.Message)

	w, env = doJSON(t, r, http.MethodPut, "/api/users/"+u.ID, tok, map[string]any{"name": "Jane Smith"})
	require.Equal(t, http.StatusOK, w.Code)
	user, _ := env.Data["user"].(map[string]any)
	require.Equal(t, "Jane Smith", user["name"])
	require.Equal(t, "user", user["type"])
	require.NotContains(t, w.Body.String(), "password")
}
