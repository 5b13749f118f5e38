// Package auth issues and verifies the bearer tokens the journal API
// requires. The rest of the service only ever sees a resolved Principal.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inkleaf/journal/internal/apperr"
	"github.com/inkleaf/journal/internal/models"
	"github.com/inkleaf/journal/internal/utils"
)

// UserStore is the slice of the store the auth service uses.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Claims is the JWT payload.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenResult is returned by Register and Login.
type TokenResult struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Service struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(users UserStore, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Register creates a user with the default role and returns a signed token.
// Duplicate usernames or emails surface as Conflict.
func (s *Service) Register(ctx context.Context, username, email, password string) (*TokenResult, error) {
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.tokenFor(user)
}

// Login verifies credentials and returns a signed token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	return s.tokenFor(user)
}

// Parse verifies a token string and resolves the Principal it carries.
func (s *Service) Parse(tokenString string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, apperr.New(apperr.Unauthenticated, "invalid or expired token")
	}
	if !utils.ValidateUserID(claims.UserID) {
		return models.Principal{}, apperr.New(apperr.Unauthenticated, "invalid or expired token")
	}
	return models.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

func (s *Service) tokenFor(user *models.User) (*TokenResult, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to sign token")
	}
	return &TokenResult{
		Token:    signed,
		Type:     "Bearer",
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
