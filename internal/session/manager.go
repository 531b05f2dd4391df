package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"luxe-storefront/internal/cart"
	"luxe-storefront/internal/domain"
)

// ChangeSource is an identity provider that announces sign-in and sign-out.
type ChangeSource interface {
	OnSessionChange(fn func(ctx context.Context, ch domain.SessionChange)) (unsubscribe func())
}

type Options struct {
	Routes    Routes
	Policy    cart.Policy
	Persister cart.Persister
	Profiles  ProfileSource
	Orders    OrderSource
	IdleTTL   time.Duration
	Logger    zerolog.Logger
}

// Manager owns every live session and its cart.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	routes    Routes
	policy    cart.Policy
	persister cart.Persister
	profiles  ProfileSource
	orders    OrderSource
	idleTTL   time.Duration
	logger    zerolog.Logger

	unsubscribe func()
}

func NewManager(opts Options) *Manager {
	if opts.Persister == nil {
		opts.Persister = cart.NopPersister{}
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.Routes.Login == "" {
		opts.Routes = DefaultRoutes()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		routes:    opts.Routes,
		policy:    opts.Policy,
		persister: opts.Persister,
		profiles:  opts.Profiles,
		orders:    opts.Orders,
		idleTTL:   opts.IdleTTL,
		logger:    opts.Logger,
	}
}

func (m *Manager) Routes() Routes { return m.routes }

// Start returns the session for id, creating it and loading its persisted
// cart on first use.
func (m *Manager) Start(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.Get(id); ok {
		return s, nil
	}

	lines, err := m.persister.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	store := cart.NewStore(m.policy)
	store.Restore(lines)
	logger := m.logger
	store.OnAdded(func(l domain.CartLine) {
		logger.Info().Str("session", id).Str("product", l.ProductID).Str("size", l.Size).Int("quantity", l.Quantity).Msg("added to cart")
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := newSession(id, store, m.routes, m.logger)
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// End disposes the session and its persisted cart.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return m.persister.Delete(ctx, id)
}

// PersistCart writes the session cart through to the persister.
func (m *Manager) PersistCart(ctx context.Context, s *Session) error {
	if err := m.persister.Save(ctx, s.ID, s.cart.Lines()); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Authenticate binds p to the session and hydrates profile and orders.
func (m *Manager) Authenticate(ctx context.Context, s *Session, p domain.Principal) error {
	return s.Authenticate(ctx, p, m.profiles, m.orders)
}

// Watch subscribes to src so sign-in and sign-out reach the right session.
func (m *Manager) Watch(src ChangeSource) {
	m.unsubscribe = src.OnSessionChange(m.apply)
}

func (m *Manager) apply(ctx context.Context, ch domain.SessionChange) {
	s, err := m.Start(ctx, ch.SessionID)
	if err != nil {
		m.logger.Error().Err(err).Str("session", ch.SessionID).Msg("session change")
		return
	}
	if ch.Principal == nil {
		s.Deauthenticate()
		return
	}
	if err := m.Authenticate(ctx, s, *ch.Principal); err != nil {
		m.logger.Warn().Err(err).Str("session", ch.SessionID).Msg("session hydrate failed")
	}
}

// Sweep drops sessions idle longer than the TTL. Their carts stay persisted.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.idleTTL {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				m.logger.Debug().Int("count", n).Msg("expired idle sessions")
			}
		}
	}
}

// Close stops listening to the identity provider.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
