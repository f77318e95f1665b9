package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sharespace/internal/domain/user"
	"sharespace/internal/pkg/jwt"
	"sharespace/internal/repository"
)

var (
	ErrUsernameTaken          = errors.New("username already taken")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Profile   user.Profile
}

type LoginInput struct {
	Username string
	Password string
}

// TokenPair is what every successful auth call hands back, mirroring
// the refresh/access split of the token service.
type TokenPair struct {
	Access  string
	Refresh string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (user.User, TokenPair, error)
	Login(ctx context.Context, in LoginInput) (user.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

type Auth struct {
	users repository.UserRepository
	jwt   jwt.Service
}

func NewAuthUsecase(users repository.UserRepository, jwtSvc jwt.Service) *Auth {
	return &Auth{users: users, jwt: jwtSvc}
}

func (s *Auth) Register(ctx context.Context, in RegisterInput) (user.User, TokenPair, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || !isValidPassword(in.Password) {
		return user.User{}, TokenPair{}, ErrInvalidInput
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = user.RoleSeeker
	}
	if role != user.RoleSeeker && role != user.RoleLister {
		return user.User{}, TokenPair{}, ErrInvalidInput
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}
	if taken {
		return user.User{}, TokenPair{}, ErrUsernameTaken
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}
	if exists {
		return user.User{}, TokenPair{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}

	profile := in.Profile
	profile.Role = role

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Profile:      profile,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if taken, exErr := s.users.ExistsByUsername(ctx, username); exErr == nil && taken {
			return user.User{}, TokenPair{}, ErrUsernameTaken
		}
		return user.User{}, TokenPair{}, ErrInternal
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}

	pair, err := s.issueTokens(created)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}
	return sanitizeUser(created), pair, nil
}

func (s *Auth) Login(ctx context.Context, in LoginInput) (user.User, TokenPair, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return user.User{}, TokenPair{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return user.User{}, TokenPair{}, ErrInternal
	}
	return sanitizeUser(u), pair, nil
}

func (s *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if !s.jwt.IsRefreshToken(claims) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, ErrInternal
	}

	return s.issueTokens(u)
}

func (s *Auth) issueTokens(u user.User) (TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, u.Username, u.Profile.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}
