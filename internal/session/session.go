package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"luxe-storefront/internal/cart"
	"luxe-storefront/internal/domain"
)

// ProfileSource returns the denormalized profile for a principal, creating it
// with defaults on first sight.
type ProfileSource interface {
	EnsureProfile(ctx context.Context, p domain.Principal) (*domain.Profile, error)
}

// OrderSource lists a customer's order history, newest first.
type OrderSource interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

// Session is one visitor's state. All methods are safe for concurrent use.
type Session struct {
	ID string

	mu        sync.RWMutex
	state     State
	principal *domain.Principal
	profile   *domain.Profile
	orders    []domain.Order
	returnTo  string
	lastSeen  time.Time

	cart   *cart.Store
	routes Routes
	logger zerolog.Logger
}

func newSession(id string, store *cart.Store, routes Routes, logger zerolog.Logger) *Session {
	return &Session{
		ID:       id,
		state:    StateUnknown,
		cart:     store,
		routes:   routes,
		lastSeen: time.Now(),
		logger:   logger.With().Str("session", id).Logger(),
	}
}

// View is a read-only copy of a session.
type View struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Principal *domain.Principal `json:"user,omitempty"`
	Profile   *domain.Profile   `json:"profile,omitempty"`
	Orders    []domain.Order    `json:"orders"`
	CartCount int               `json:"cartCount"`
	CartTotal int64             `json:"cartTotal"`
}

func (s *Session) Cart() *cart.Store { return s.cart }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Principal() *domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Navigate checks path against the guard and remembers it when the visitor
// is sent to login.
func (s *Session) Navigate(path string) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	d := Decide(s.state, path, s.routes)
	if d.Action == ActionRedirect {
		s.returnTo = path
	}
	return d
}

// ResumeDestination returns and forgets the path captured by the last
// redirect to login, or the default route.
func (s *Session) ResumeDestination() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	dest := s.returnTo
	s.returnTo = ""
	if dest == "" {
		return s.routes.Default
	}
	return dest
}

// Authenticate binds p to the session and loads the profile and order
// history. A hydration failure leaves the session anonymous.
func (s *Session) Authenticate(ctx context.Context, p domain.Principal, profiles ProfileSource, orders OrderSource) error {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.principal = &p
	s.lastSeen = time.Now()
	s.mu.Unlock()

	var (
		profile *domain.Profile
		history []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = profiles.EnsureProfile(gctx, p)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = orders.ListByCustomer(gctx, p.CustomerID)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	// A sign-out or another sign-in may have raced the fetch.
	if s.principal == nil || s.principal.CustomerID != p.CustomerID {
		if err != nil {
			s.logger.Warn().Err(err).Str("customer", p.CustomerID).Msg("stale hydration failed")
		}
		return err
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("identity provider error")
		s.clearLocked()
		return err
	}
	s.profile = profile
	s.orders = history
	s.logger.Debug().Str("customer", p.CustomerID).Int("orders", len(history)).Msg("session authenticated")
	return nil
}

// MarkAnonymous resolves an unknown session to anonymous without touching an
// authenticated one.
func (s *Session) MarkAnonymous() {
	s.mu.Lock()
	if s.state == StateUnknown {
		s.state = StateAnonymous
	}
	s.mu.Unlock()
}

// Deauthenticate clears everything tied to the signed-in principal.
func (s *Session) Deauthenticate() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
}

// Fail records an identity provider error and degrades to anonymous.
func (s *Session) Fail(err error) {
	s.logger.Error().Err(err).Msg("identity provider error")
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
}

// SetProfile replaces the cached profile after a write-through update.
func (s *Session) SetProfile(p domain.Profile) {
	s.mu.Lock()
	if s.principal != nil && s.principal.CustomerID == p.CustomerID {
		s.profile = &p
	}
	s.mu.Unlock()
}

// AddOrder prepends a freshly placed order to the cached history.
func (s *Session) AddOrder(o domain.Order) {
	s.mu.Lock()
	s.orders = append([]domain.Order{o}, s.orders...)
	s.mu.Unlock()
}

func (s *Session) View() View {
	s.mu.RLock()
	v := View{
		ID:     s.ID,
		State:  s.state.String(),
		Orders: append([]domain.Order{}, s.orders...),
	}
	if s.principal != nil {
		p := *s.principal
		v.Principal = &p
	}
	if s.profile != nil {
		p := *s.profile
		v.Profile = &p
	}
	s.mu.RUnlock()
	v.CartCount = s.cart.Count()
	v.CartTotal = s.cart.Total()
	return v
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) clearLocked() {
	s.state = StateAnonymous
	s.principal = nil
	s.profile = nil
	s.orders = nil
}
