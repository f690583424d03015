package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore/pkg/auth"
	"github.com/Astemirdum/bookstore/pkg/kafka"
)

type AuthService struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	events   EventPublisher
	log      *zap.Logger
	hashCost int
}

type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) {
		s.hashCost = cost
	}
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, events EventPublisher, log *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		events:   events,
		log:      log.Named("auth"),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with role. The very first user becomes admin whatever role was asked for.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, role model.Role) (model.User, error) {
	hasUsers, err := s.users.Any(ctx)
	if err != nil {
		return model.User{}, errors.Wrap(err, "users.Any")
	}
	role = model.ParseRole(string(role))
	if !hasUsers {
		role = model.RoleAdmin
	}

	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return model.User{}, errors.Wrap(err, "users.ExistsByUsername")
	}
	if taken {
		return model.User{}, errs.Conflict("username already exists")
	}
	taken, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.User{}, errors.Wrap(err, "users.ExistsByEmail")
	}
	if taken {
		return model.User{}, errs.Conflict("email already exists")
	}

	user, err := model.NewUser(uuid.New(), req.Username, req.Email, role)
	if err != nil {
		return model.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}
	user.PasswordHash = string(hash)

	if err = s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}
	s.log.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	publish(ctx, s.events, s.log, kafka.Event{EventType: kafka.UserRegistered, UserID: user.ID.String()})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.LoginResult{}, err
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResult{}, errs.Unauthorized("invalid password")
	}
	token, exp, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		return model.LoginResult{}, err
	}
	return model.LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}
