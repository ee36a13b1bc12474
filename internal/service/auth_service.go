package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ticket-mgt/ticket-api/internal/auth"
	"github.com/ticket-mgt/ticket-api/internal/cache"
	"github.com/ticket-mgt/ticket-api/internal/config"
	"github.com/ticket-mgt/ticket-api/internal/domain"
	"github.com/ticket-mgt/ticket-api/internal/events"
	"github.com/ticket-mgt/ticket-api/internal/repository"
	apperrors "github.com/ticket-mgt/ticket-api/pkg/util"
)

// AuthService is the credential store: registration, login and token lookup.
type AuthService struct {
	users      repository.UserRepository
	issuer     auth.TokenIssuer
	hasher     auth.PasswordHasher
	tokens     cache.TokenCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	TokenCache cache.TokenCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// NewAuthService builds the service, deriving the token issuer and password
// hasher from cfg.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	issuer, err := auth.NewTokenIssuer(domain.TokenFormat(cfg.TokenFormat), cfg.TokenPrefix, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	tokens := deps.TokenCache
	if tokens == nil {
		tokens = cache.NoopTokenCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		issuer:     issuer,
		hasher:     auth.NewPasswordHasher(cfg.HashPasswords, cfg.BcryptCost),
		tokens:     tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}, nil
}

// Register creates a new account with a freshly issued token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.NewValidationError("all fields are required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("password is too long")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	token, err := s.issuer.Issue(id)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	user := &domain.User{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hash,
		Token:     token,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewAlreadyExists("user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.cacheToken(ctx, token, id)

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		ActorID:   user.ID,
		Payload:   events.UserPayload{Email: user.Email},
	})
	return user, nil
}

// Login verifies credentials and rotates the user's token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	if user.Token != "" {
		s.evictToken(ctx, user.Token)
	}
	user.Token = token
	s.cacheToken(ctx, token, user.ID)

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserLoggedIn,
		SubjectID: user.ID,
		ActorID:   user.ID,
		Payload:   events.UserPayload{Email: user.Email},
	})
	return user, nil
}

// tokenParser is implemented by issuers whose tokens carry a signature.
type tokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// FindByToken returns the user holding token, or nil when nobody does. Signed
// tokens must verify and name the holder as their subject.
func (s *AuthService) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	parser, signed := s.issuer.(tokenParser)
	if !signed {
		return s.lookupToken(ctx, token)
	}

	claims, err := parser.Parse(token)
	if err != nil {
		s.logger.Debug("rejected token signature", zap.Error(err))
		return nil, nil
	}
	user, err := s.lookupToken(ctx, token)
	if err != nil || user == nil {
		return user, err
	}
	if user.ID != claims.Subject {
		s.logger.Warn("token subject does not match holder",
			zap.String("user_id", user.ID),
			zap.String("subject", claims.Subject),
		)
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) lookupToken(ctx context.Context, token string) (*domain.User, error) {
	userID, ok, err := s.tokens.Get(ctx, token)
	if err != nil {
		s.logger.Warn("token cache lookup failed", zap.Error(err))
	}
	if ok {
		user, err := s.users.GetByID(ctx, userID)
		if err == nil && user.Token == token {
			return user, nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		s.evictToken(ctx, token)
	}

	user, err := s.users.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	s.cacheToken(ctx, token, user.ID)
	return user, nil
}

// ListUsers returns every account in registration order.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser fetches one account by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) cacheToken(ctx context.Context, token, userID string) {
	if err := s.tokens.Set(ctx, token, userID); err != nil {
		s.logger.Warn("token cache write failed", zap.Error(err))
	}
}

func (s *AuthService) evictToken(ctx context.Context, token string) {
	if err := s.tokens.Delete(ctx, token); err != nil {
		s.logger.Warn("token cache evict failed", zap.Error(err))
	}
}
