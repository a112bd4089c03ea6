// Package auth registers users and authenticates them with bcrypt password
// hashes and signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)

// RegisterInput holds the fields needed to create an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1"`
}

// LoginInput holds credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned on successful register and login.
type Session struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Service implements account operations.
type Service struct {
	store  service.UserStore
	tokens *Tokens
	now    service.Clock
}

// NewService creates an auth service.
func NewService(store service.UserStore, tokens *Tokens, clock service.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, tokens: tokens, now: clock}
}

// Tokens returns the token issuer used by the service.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Register creates a user with the default categories and signs a token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	cats := model.DefaultCategories()
	for i := range cats {
		cats[i].ID = uuid.NewString()
		// Distinct timestamps keep the seeded order stable when listing.
		cats[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
	}

	if err := s.store.CreateUser(ctx, user, cats); err != nil {
		return nil, err
	}

	common.LogInfo(ctx, "user registered", common.Fields{"user_id": user.ID})
	return s.session(user)
}

// Login verifies credentials and signs a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Me returns the user behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// Authenticate resolves a bearer token to a user id.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.Parse(token)
}

func (s *Service) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
