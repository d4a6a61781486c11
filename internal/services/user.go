package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shelternet/apiserver/internal/auth"
	"github.com/shelternet/apiserver/internal/store"
	"github.com/shelternet/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	minEmailLength    = 5
	minUsernameLength = 3
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (types.User, error)
}

// UserService encapsulates account use-cases: registration, login, and the
// email update.
type UserService struct {
	repo  UserRepository
	codec *auth.TokenCodec
}

func NewUserService(repo UserRepository, codec *auth.TokenCodec) *UserService {
	return &UserService{repo: repo, codec: codec}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new account. The email is case-normalized to
// lowercase before validation and storage. A taken email or username
// surfaces as a ValidationError and leaves no record behind.
func (s *UserService) Create(ctx context.Context, email, username, password string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	args := map[string]any{"email": email, "username": username}
	if err := checkFields(args,
		fieldCheck{name: "email", value: email, min: minEmailLength},
		fieldCheck{name: "username", value: username, min: minUsernameLength},
		fieldCheck{name: "password", value: password, min: 1},
	); err != nil {
		return types.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:           email,
		Username:        username,
		PasswordHash:    string(hashed),
		PermissionLevel: types.PermissionUser,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, &ValidationError{
				Fields: []string{"email", "username"},
				Args:   args,
			}
		}
		return types.User{}, err
	}
	return user, nil
}

// Login verifies the password and mints a session token. An unknown
// username surfaces as store.ErrNotFound, distinct from a wrong password,
// which surfaces as auth.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (types.User, string, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return types.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, "", auth.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// UpdateEmail replaces a user's email address. Authorization is the
// caller's concern; this only validates and persists.
func (s *UserService) UpdateEmail(ctx context.Context, userID int64, email string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	args := map[string]any{"user_id": userID, "email": email}
	if err := checkFields(args,
		fieldCheck{name: "email", value: email, min: minEmailLength},
	); err != nil {
		return types.User{}, err
	}

	user, err := s.repo.UpdateEmail(ctx, userID, email)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, &ValidationError{Fields: []string{"email"}, Args: args}
		}
		return types.User{}, err
	}
	return user, nil
}
