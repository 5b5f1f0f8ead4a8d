package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/motormarket/user-service/internal/application"
	"github.com/motormarket/user-service/internal/domain/entity"
	repo "github.com/motormarket/user-service/internal/domain/repository"
	"github.com/motormarket/user-service/pkg/helpers"
)

// memUserRepo is an in-memory UserRepository with the same uniqueness and
// favorites semantics as the Postgres implementation.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Favorites = append([]string(nil), u.Favorites...)
	return &c
}

func (m *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
	m.users[u.ID] = cloneUser(u)
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) Update(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range m.users {
		if id != u.ID && other.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	c := cloneUser(u)
	c.Favorites = stored.Favorites
	m.users[u.ID] = c
	return nil
}

func (m *memUserRepo) AddFavorite(ctx context.Context, userID, carID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, id := range u.Favorites {
		if id == carID {
			return repo.ErrDuplicateFavorite
		}
	}
	u.Favorites = append(u.Favorites, carID)
	return nil
}

func (m *memUserRepo) RemoveFavorite(ctx context.Context, userID, carID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	out := u.Favorites[:0]
	for _, id := range u.Favorites {
		if id != carID {
			out = append(out, id)
		}
	}
	u.Favorites = out
	return nil
}

func (m *memUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func newUserService(users repo.UserRepository) *application.UserService {
	return application.NewUserService(users, helpers.NewTokenManager("test-secret", 0))
}

func validRegistration() application.RegisterInput {
	return application.RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "password1",
		Phone:    "5551234567",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	token, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)
	require.NotEmpty(t, token)

	claims, err := svc.Tokens.Parse(token)
	require.NoError(t, err)

	u, err := users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, entity.TypeUser, u.Type)
	require.NotEqual(t, "password1", u.Password, "password must be stored hashed")
	require.True(t, helpers.CompareHashAndPassword(u.Password, "password1"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)

	_, appErr = svc.Register(ctx, validRegistration())
	require.NotNil(t, appErr)
	require.Equal(t, application.KindConflict, appErr.Kind)
	require.Equal(t, "User already exists", appErr.Message)
	require.Equal(t, 1, users.count())
}

func TestRegisterDuplicateWinsOverLaterChecks(t *testing.T) {
	// The uniqueness probe runs first, so a duplicate of an existing account
	// is reported even when later preconditions would also fail.
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	in := validRegistration()
	_, appErr := svc.Register(ctx, in)
	require.Nil(t, appErr)

	in.Password = "short"
	_, appErr = svc.Register(ctx, in)
	require.NotNil(t, appErr)
	require.Equal(t, "User already exists", appErr.Message)
}

func TestRegisterInvalidEmail(t *testing.T) {
	users := newMemUserRepo()
	svc := newUserService(users)

	in := validRegistration()
	in.Email = "not-an-email"
	_, appErr := svc.Register(context.Background(), in)
	require.NotNil(t, appErr)
	require.Equal(t, application.KindValidation, appErr.Kind)
	require.Equal(t, "Invalid email", appErr.Message)
}

func TestRegisterPasswordBoundary(t *testing.T) {
	ctx := context.Background()

	in := validRegistration()
	in.Password = "1234567" // 7 chars
	_, appErr := newUserService(newMemUserRepo()).Register(ctx, in)
	require.NotNil(t, appErr)
	require.Equal(t, "Password must be at least 8 characters", appErr.Message)

	in.Password = "12345678" // 8 chars
	_, appErr = newUserService(newMemUserRepo()).Register(ctx, in)
	require.Nil(t, appErr)
}

func TestRegisterPhoneBoundary(t *testing.T) {
	ctx := context.Background()
	for phone, wantOK := range map[string]bool{
		"12345":             false, // 5
		"123456":            true,  // 6
		"1234567890123456":  true,  // 16
		"12345678901234567": false, // 17
	} {
		in := validRegistration()
		in.Phone = phone
		_, appErr := newUserService(newMemUserRepo()).Register(ctx, in)
		if wantOK {
			require.Nil(t, appErr, "phone %q should be accepted", phone)
		} else {
			require.NotNil(t, appErr, "phone %q should be rejected", phone)
			require.Equal(t, "Invalid phone number", appErr.Message)
		}
	}
}

func TestRegisterTypeClamp(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	in := validRegistration()
	in.Type = "superadmin"
	_, appErr := svc.Register(ctx, in)
	require.Nil(t, appErr)
	u, _ := users.GetByEmail(ctx, in.Email)
	require.Equal(t, entity.TypeUser, u.Type)

	// Inherited behavior: registration still accepts admin.
	in2 := validRegistration()
	in2.Email = "root@example.com"
	in2.Type = entity.TypeAdmin
	_, appErr = svc.Register(ctx, in2)
	require.Nil(t, appErr)
	u2, _ := users.GetByEmail(ctx, in2.Email)
	require.Equal(t, entity.TypeAdmin, u2.Type)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)

	_, appErr = svc.Login(ctx, "nobody@example.com", "password1")
	require.NotNil(t, appErr)
	require.Equal(t, application.KindNotFound, appErr.Kind)
	require.Equal(t, "User does not exist", appErr.Message)

	_, appErr = svc.Login(ctx, "jane@example.com", "wrongpass1")
	require.NotNil(t, appErr)
	require.Equal(t, application.KindUnauthorized, appErr.Kind)
	require.Equal(t, "Invalid credentials", appErr.Message)

	token, appErr := svc.Login(ctx, "jane@example.com", "password1")
	require.Nil(t, appErr)
	require.NotEmpty(t, token)
}

func TestGetUserNotFound(t *testing.T) {
	svc := newUserService(newMemUserRepo())
	_, appErr := svc.GetUser(context.Background(), "missing")
	require.NotNil(t, appErr)
	require.Equal(t, application.KindNotFound, appErr.Kind)
	require.Equal(t, "User not found", appErr.Message)
}

func TestEditUserAppliesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)
	u, _ := users.GetByEmail(ctx, "jane@example.com")

	newName := "Jane Smith"
	updated, appErr := svc.EditUser(ctx, u.ID, application.EditInput{Name: &newName})
	require.Nil(t, appErr)
	require.Equal(t, "Jane Smith", updated.Name)
	require.Equal(t, "jane@example.com", updated.Email)
	require.Equal(t, "5551234567", updated.Phone)
	require.Equal(t, entity.TypeUser, updated.Type, "type must be unchanged when not supplied")
}

func TestEditUserRejectsAdminType(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)
	u, _ := users.GetByEmail(ctx, "jane@example.com")

	admin := entity.TypeAdmin
	_, appErr = svc.EditUser(ctx, u.ID, application.EditInput{Type: &admin})
	require.NotNil(t, appErr)
	require.Equal(t, application.KindValidation, appErr.Kind)
	require.Equal(t, "Invalid user type", appErr.Message)

	dealer := entity.TypeDealer
	updated, appErr := svc.EditUser(ctx, u.ID, application.EditInput{Type: &dealer})
	require.Nil(t, appErr)
	require.Equal(t, entity.TypeDealer, updated.Type)
}

func TestEditUserEmailConflict(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)
	other := validRegistration()
	other.Email = "john@example.com"
	_, appErr = svc.Register(ctx, other)
	require.Nil(t, appErr)

	u, _ := users.GetByEmail(ctx, "jane@example.com")
	taken := "john@example.com"
	_, appErr = svc.EditUser(ctx, u.ID, application.EditInput{Email: &taken})
	require.NotNil(t, appErr)
	require.Equal(t, application.KindConflict, appErr.Kind)
	require.Equal(t, "Email already in use", appErr.Message)

	// Re-submitting the current email is not a conflict.
	same := "jane@example.com"
	_, appErr = svc.EditUser(ctx, u.ID, application.EditInput{Email: &same})
	require.Nil(t, appErr)
}

func TestEditUserPhoneValidation(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	_, appErr := svc.Register(ctx, validRegistration())
	require.Nil(t, appErr)
	u, _ := users.GetByEmail(ctx, "jane@example.com")

	bad := "12345"
	_, appErr = svc.EditUser(ctx, u.ID, application.EditInput{Phone: &bad})
	require.NotNil(t, appErr)
	require.Equal(t, "Invalid phone number", appErr.Message)

	good := "123456"
	updated, appErr := svc.EditUser(ctx, u.ID, application.EditInput{Phone: &good})
	require.Nil(t, appErr)
	require.Equal(t, "123456", updated.Phone)
}

func TestEditUserNotFound(t *testing.T) {
	svc := newUserService(newMemUserRepo())
	name := "x"
	_, appErr := svc.EditUser(context.Background(), "missing", application.EditInput{Name: &name})
	require.NotNil(t, appErr)
	require.Equal(t, "User not found", appErr.Message)
}
