package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/webpro/backend/internal/config"
	"github.com/webpro/backend/internal/db"
	"github.com/webpro/backend/internal/logging"
	"github.com/webpro/backend/internal/model"
)

const maxUsernameLength = 64

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrValidationFailed   = errors.New("validation failed")
	ErrSignupDisabled     = errors.New("signup disabled")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// IdentityStore maps usernames to stored identities. FindByUsername
// returns db.ErrNotFound when absent; Save returns db.ErrDuplicate on a
// username conflict.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*model.Identity, error)
	Save(ctx context.Context, identity *model.Identity) (*model.Identity, error)
}

// AuthSettings is the parsed form of config.AuthConfig.
type AuthSettings struct {
	Secret      []byte
	TokenTTL    time.Duration
	BcryptCost  int
	AllowSignup bool
}

func ParseAuthConfig(cfg config.AuthConfig) (AuthSettings, error) {
	if cfg.JWTSecret == "" {
		return AuthSettings{}, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(cfg.JWTTokenTTL))
	if err != nil || ttl <= 0 {
		return AuthSettings{}, fmt.Errorf("%w: invalid JWT_TOKEN_TTL", ErrMisconfigured)
	}

	cost := defaultBcryptCost
	if value := strings.TrimSpace(cfg.BcryptCost); value != "" {
		cost, err = strconv.Atoi(value)
		if err != nil {
			return AuthSettings{}, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
		}
	}

	allowSignup, err := parseBool(cfg.AllowSignup, true)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid ALLOW_SIGNUP", ErrMisconfigured)
	}

	return AuthSettings{
		Secret:      []byte(cfg.JWTSecret),
		TokenTTL:    ttl,
		BcryptCost:  cost,
		AllowSignup: allowSignup,
	}, nil
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type AuthService struct {
	store       IdentityStore
	tokens      *TokenCodec
	hasher      *PasswordHasher
	allowSignup bool
	now         func() time.Time
	logger      logging.Logger
}

type AuthOption func(*AuthService)

func WithSignup(allow bool) AuthOption {
	return func(s *AuthService) { s.allowSignup = allow }
}

func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func WithLogger(logger logging.Logger) AuthOption {
	return func(s *AuthService) { s.logger = logger }
}

func NewAuthService(store IdentityStore, tokens *TokenCodec, hasher *PasswordHasher, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:       store,
		tokens:      tokens,
		hasher:      hasher,
		allowSignup: true,
		now:         time.Now,
		logger:      logging.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) AllowSignup() bool {
	return s.allowSignup
}

// EnsureAdmin creates the bootstrap account unless it already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_USERNAME/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	_, err := s.store.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	_, err = s.createIdentity(ctx, username, password)
	if errors.Is(err, ErrDuplicateUsername) {
		return nil
	}
	if err == nil {
		s.logger.Info(ctx, "bootstrap account created", "username", username)
	}
	return err
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*model.Identity, error) {
	if !s.allowSignup {
		return nil, ErrSignupDisabled
	}

	identity, err := s.createIdentity(ctx, username, password)
	if err != nil {
		return nil, err
	}

	identity.PasswordHash = ""
	s.logger.Info(ctx, "user registered", "username", identity.Username, "id", identity.ID)
	return identity, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	identity, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.hasher.DummyVerify(password)
			s.logger.Debug(ctx, "login rejected", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.logger.Debug(ctx, "login rejected", "reason", "wrong password", "username", username)
		return nil, ErrInvalidCredentials
	}

	if !identity.Active() {
		s.logger.Debug(ctx, "login rejected", "reason", "account inactive", "username", username)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := s.tokens.Issue(identity.Username, now)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		Username:  identity.Username,
		ExpiresAt: now.Truncate(time.Second).Add(s.tokens.TTL()),
	}, nil
}

func (s *AuthService) createIdentity(ctx context.Context, username, password string) (*model.Identity, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrValidationFailed) {
			return nil, fmt.Errorf("%w: username or password too long", ErrValidationFailed)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity, err := s.store.Save(ctx, &model.Identity{
		Username:     username,
		PasswordHash: hash,
		Enabled:      true,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("save identity: %w", err)
	}
	return identity, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidationFailed)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength || len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: username or password too long", ErrValidationFailed)
	}
	return nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
