package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"luxe-storefront/internal/domain"
	custrepo "luxe-storefront/internal/repository/customer"
	tokenrepo "luxe-storefront/internal/repository/token"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// ChangeFunc receives sign-in and sign-out notifications.
type ChangeFunc func(ctx context.Context, ch domain.SessionChange)

// Result is returned by every successful sign-in.
type Result struct {
	Principal    domain.Principal
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Service is the identity provider: accounts, credentials and tokens bound to
// a session id.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	verifier    Verifier
	logger      zerolog.Logger
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int

	mu        sync.RWMutex
	listeners map[int]ChangeFunc
	nextID    int
}

// New creates a Service with sane defaults. verifier may be nil, in which
// case federated sign-in is rejected.
func New(repo custrepo.Repository, tokens tokenrepo.Repository, verifier Verifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		verifier:    verifier,
		logger:      logger,
		accessTTL:   48 * time.Hour,
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 6,
		listeners:   make(map[int]ChangeFunc),
	}
}

// OnSessionChange registers fn and returns a function that removes it.
func (s *Service) OnSessionChange(fn func(ctx context.Context, ch domain.SessionChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(ctx context.Context, ch domain.SessionChange) {
	s.mu.RLock()
	fns := make([]ChangeFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, ch)
	}
}

// SignUp registers a password account and signs it in on sessionID.
func (s *Service) SignUp(ctx context.Context, sessionID, email, password, displayName string) (*Result, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "a valid email is required")
	}
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, domain.Customer{
		Email:        email,
		PasswordHash: string(hashed),
		Provider:     ProviderPassword,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.Invalid("email", "an account with this email already exists")
		}
		return nil, err
	}
	s.logger.Info().Str("customer", c.ID).Msg("identity: account created")
	return s.establish(ctx, sessionID, c, strings.TrimSpace(displayName))
}

// SignIn validates credentials and binds the account to sessionID.
func (s *Service) SignIn(ctx context.Context, sessionID, email, password string) (*Result, error) {
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if c.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.establish(ctx, sessionID, c, "")
}

// SignInFederated accepts a Google ID token, creating the account on first use.
func (s *Service) SignInFederated(ctx context.Context, sessionID, idToken string) (*Result, error) {
	if s.verifier == nil {
		return nil, ErrInvalidCredentials
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, domain.Invalid("idToken", "token is required")
	}
	ident, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("identity: federated token rejected")
		return nil, ErrInvalidCredentials
	}
	email := strings.ToLower(ident.Email)
	c, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		c, err = s.repo.Create(ctx, domain.Customer{Email: email, Provider: ProviderGoogle})
		if errors.Is(err, domain.ErrAlreadyExists) {
			c, err = s.repo.GetByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, sessionID, c, ident.Name)
}

// SignOut revokes the access token and clears the session's principal.
func (s *Service) SignOut(ctx context.Context, sessionID, accessToken string) error {
	if accessToken != "" {
		if err := s.tokens.Revoke(ctx, accessToken); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	if sessionID != "" {
		if err := s.tokens.RevokeSession(ctx, sessionID); err != nil {
			return err
		}
	}
	if sessionID != "" {
		s.notify(ctx, domain.SessionChange{SessionID: sessionID})
	}
	return nil
}

// Lookup returns the principal bound to a valid access token.
func (s *Service) Lookup(ctx context.Context, accessToken string) (*domain.Principal, error) {
	meta, ok := s.tokens.Validate(ctx, accessToken)
	if !ok {
		return nil, ErrInvalidToken
	}
	c, err := s.repo.GetByID(ctx, meta.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &domain.Principal{CustomerID: c.ID, Email: c.Email}, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) establish(ctx context.Context, sessionID string, c *domain.Customer, displayName string) (*Result, error) {
	access, err := s.tokens.Issue(ctx, c.ID, sessionID, tokenrepo.KindAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(ctx, c.ID, sessionID, tokenrepo.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	p := domain.Principal{CustomerID: c.ID, Email: c.Email, DisplayName: displayName}
	if sessionID != "" {
		s.notify(ctx, domain.SessionChange{SessionID: sessionID, Principal: &p})
	}
	return &Result{
		Principal:    p,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTLSeconds(),
	}, nil
}

func validatePassword(p string, min int) error {
	if len(strings.TrimSpace(p)) < min {
		return domain.Invalid("password", fmt.Sprintf("password must be at least %d characters", min))
	}
	return nil
}
