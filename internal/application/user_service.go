package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/motormarket/user-service/internal/domain/entity"
	repo "github.com/motormarket/user-service/internal/domain/repository"
	"github.com/motormarket/user-service/pkg/helpers"
	"github.com/motormarket/user-service/pkg/mailer"
	mailtpl "github.com/motormarket/user-service/pkg/mailer/templates"
	"github.com/motormarket/user-service/pkg/validation"
)

// UserService covers registration, login and profile read/edit.
// Redis, Elasticsearch, GCS and the mail publisher are optional; a nil
// client disables the corresponding side effect.
type UserService struct {
	Users        repo.UserRepository
	Tokens       *helpers.TokenManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Pub          *helpers.RabbitPublisher
	GCS          *storage.Client
	GCSBucket    string
	AppName      string
	MailEnabled  bool
	CacheTTL     time.Duration
}

func NewUserService(users repo.UserRepository, tokens *helpers.TokenManager) *UserService {
	return &UserService{Users: users, Tokens: tokens}
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Type     string
	Phone    string
}

// Register creates a new account and returns a signed identity token.
// Preconditions run in a fixed order, short-circuiting on the first failure:
// email taken, email syntax, password length, phone length.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, *Error) {
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.logErr(err, "register: email lookup failed")
		return "", Internal(err)
	}
	if existing != nil {
		return "", Conflict("User already exists")
	}
	if !validation.IsEmail(in.Email) {
		return "", Invalid("Invalid email")
	}
	if len(in.Password) < 8 {
		return "", Invalid("Password must be at least 8 characters")
	}
	if !validation.PhoneLenOK(in.Phone) {
		return "", Invalid("Invalid phone number")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		s.logErr(err, "register: hash failed")
		return "", Internal(err)
	}

	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Type:     entity.ClampType(in.Type),
		Phone:    in.Phone,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return "", Conflict("User already exists")
		}
		s.logErr(err, "register: create failed")
		return "", Internal(err)
	}

	token, err := s.Tokens.Generate(u.ID)
	if err != nil {
		s.logErr(err, "register: token generation failed")
		return "", Internal(err)
	}

	_ = s.indexUser(ctx, u)
	s.enqueueWelcome(ctx, u)
	return token, nil
}

// Login validates credentials and returns a signed identity token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *Error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", NotFound("User does not exist")
		}
		s.logErr(err, "login: email lookup failed")
		return "", Internal(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return "", Unauthorized("Invalid credentials")
	}
	token, err := s.Tokens.Generate(u.ID)
	if err != nil {
		s.logErr(err, "login: token generation failed")
		return "", Internal(err)
	}
	return token, nil
}

// GetUser fetches a profile, serving from the Redis cache when possible.
// The caller is responsible for never serializing the Password field.
func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, *Error) {
	if s.Redis != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		s.logErr(err, "get user failed")
		return nil, Internal(err)
	}
	if s.Redis != nil {
		cacheCopy := *u
		cacheCopy.Password = "" // digest never enters the cache
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(id), &cacheCopy, s.CacheTTL); err != nil {
			s.logErr(err, "profile cache write failed")
		}
	}
	return u, nil
}

// EditInput uses pointers so "field absent" and "field supplied" are
// distinguishable; nil fields keep their stored value.
type EditInput struct {
	Name  *string
	Email *string
	Phone *string
	Type  *string
}

// EditUser applies the supplied fields to a profile. Email changes are
// checked for uniqueness; Type may only move between "user" and "dealer".
func (s *UserService) EditUser(ctx context.Context, id string, in EditInput) (*entity.User, *Error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		s.logErr(err, "edit: lookup failed")
		return nil, Internal(err)
	}

	if in.Email != nil && *in.Email != u.Email {
		if !validation.IsEmail(*in.Email) {
			return nil, Invalid("Invalid email")
		}
		other, err := s.Users.GetByEmail(ctx, *in.Email)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			s.logErr(err, "edit: email lookup failed")
			return nil, Internal(err)
		}
		if other != nil {
			return nil, Conflict("Email already in use")
		}
	}
	if in.Phone != nil && !validation.PhoneLenOK(*in.Phone) {
		return nil, Invalid("Invalid phone number")
	}
	if in.Type != nil && !entity.EditableType(*in.Type) {
		return nil, Invalid("Invalid user type")
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Type != nil {
		u.Type = *in.Type
	}

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, Conflict("Email already in use")
		}
		s.logErr(err, "edit: update failed")
		return nil, Internal(err)
	}
	invalidateProfile(ctx, s.Redis, s.Logger, id)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, *Error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", NotFound("User not found")
		}
		s.logErr(err, "avatar: lookup failed")
		return "", Internal(err)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", Internal(errors.New("gcs not configured"))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		s.logErr(err, "avatar: upload failed")
		return "", Internal(err)
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		s.logErr(err, "avatar: update failed")
		return "", Internal(err)
	}
	invalidateProfile(ctx, s.Redis, s.Logger, userID)
	_ = s.indexUser(ctx, u)
	return url, nil
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, *Error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		s.logErr(err, "user search failed")
		return nil, Internal(err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		s.logErr(err, "user search decode failed")
		return nil, Internal(err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// invalidateProfile drops the cached profile view. Every service that
// mutates state reflected by GetUser must call this after a write.
func invalidateProfile(ctx context.Context, rdb *redis.Client, logger *logrus.Logger, id string) {
	if rdb == nil {
		return
	}
	if err := helpers.RedisDel(ctx, rdb, profileKey(id)); err != nil && logger != nil {
		logger.WithError(err).Error("profile cache invalidation failed")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"type":       u.Type,
		"phone":      u.Phone,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.logErr(err, "es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *UserService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     map[string]any{"AppName": s.AppName, "Name": u.Name, "Email": u.Email},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.logErr(err, "welcome mail enqueue failed")
	}
}

func (s *UserService) logErr(err error, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).Error(msg)
	}
}
