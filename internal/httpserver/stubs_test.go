package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"luxe-storefront/internal/domain"
	cartsvc "luxe-storefront/internal/service/cart"
	"luxe-storefront/internal/service/identity"
	"luxe-storefront/internal/session"
)

var testPrincipal = domain.Principal{CustomerID: "cust-1", Email: "user@example.com"}

type stubProductService struct {
	products map[string]domain.Product
	err      error
}

func newStubProductService() *stubProductService {
	return &stubProductService{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Opulent Silk Blouse", Category: "Tops", PriceCents: 1000, Sizes: []string{"S", "M"}, Stock: 10},
		"p2": {ID: "p2", Name: "Prestige Wool Trousers", Category: "Bottoms", PriceCents: 500, Sizes: []string{"30", "32"}, Stock: 10},
	}}
}

func (s *stubProductService) List(_ context.Context, category string) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []domain.Product{}
	for _, id := range []string{"p1", "p2"} {
		p := s.products[id]
		if category == "" || strings.EqualFold(category, p.Category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProductService) Latest(ctx context.Context) ([]domain.Product, error) {
	return s.List(ctx, "")
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.Get(ctx, id)
}

// stubIdentity accepts one password and announces changes like the real
// provider does.
type stubIdentity struct {
	mu        sync.Mutex
	listeners []func(context.Context, domain.SessionChange)
	lookupErr error
	signedOut []string
}

func (s *stubIdentity) OnSessionChange(fn func(ctx context.Context, ch domain.SessionChange)) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *stubIdentity) notify(ctx context.Context, ch domain.SessionChange) {
	s.mu.Lock()
	fns := append([]func(context.Context, domain.SessionChange){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, ch)
	}
}

func (s *stubIdentity) result(ctx context.Context, sessionID string) *identity.Result {
	p := testPrincipal
	s.notify(ctx, domain.SessionChange{SessionID: sessionID, Principal: &p})
	return &identity.Result{Principal: p, AccessToken: "good", RefreshToken: "refresh", ExpiresIn: 3600}
}

func (s *stubIdentity) SignUp(ctx context.Context, sessionID, email, password, _ string) (*identity.Result, error) {
	if len(password) < 6 {
		return nil, domain.Invalid("password", "password must be at least 6 characters")
	}
	return s.result(ctx, sessionID), nil
}

func (s *stubIdentity) SignIn(ctx context.Context, sessionID, email, password string) (*identity.Result, error) {
	if email != testPrincipal.Email || password != "secret1" {
		return nil, identity.ErrInvalidCredentials
	}
	return s.result(ctx, sessionID), nil
}

func (s *stubIdentity) SignInFederated(ctx context.Context, sessionID, idToken string) (*identity.Result, error) {
	if idToken != "google-token" {
		return nil, identity.ErrInvalidCredentials
	}
	return s.result(ctx, sessionID), nil
}

func (s *stubIdentity) SignOut(ctx context.Context, sessionID, _ string) error {
	s.mu.Lock()
	s.signedOut = append(s.signedOut, sessionID)
	s.mu.Unlock()
	s.notify(ctx, domain.SessionChange{SessionID: sessionID})
	return nil
}

func (s *stubIdentity) Lookup(_ context.Context, token string) (*domain.Principal, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if token != "good" {
		return nil, identity.ErrInvalidToken
	}
	p := testPrincipal
	return &p, nil
}

type stubProfileService struct {
	mu      sync.Mutex
	profile domain.Profile
}

func (s *stubProfileService) EnsureProfile(_ context.Context, p domain.Principal) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.CustomerID == "" {
		s.profile = domain.Profile{CustomerID: p.CustomerID, Name: "user", Email: p.Email, Address: domain.DefaultAddress, Joined: "2024-05-01"}
	}
	out := s.profile
	return &out, nil
}

func (s *stubProfileService) Get(_ context.Context, customerID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	out := s.profile
	return &out, nil
}

func (s *stubProfileService) UpdateAddress(_ context.Context, customerID, address string) (*domain.Profile, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domain.Invalid("address", "address is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Address = address
	out := s.profile
	return &out, nil
}

func (s *stubProfileService) UpdateAvatar(_ context.Context, customerID, rawURL string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.AvatarURL = rawURL
	out := s.profile
	return &out, nil
}

type stubOrderService struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (s *stubOrderService) Place(_ context.Context, p domain.Principal, lines []domain.CartLine, ship domain.Shipping) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("cart", "your cart is empty")
	}
	o := domain.Order{ID: "ord-1", CustomerID: p.CustomerID, CustomerEmail: p.Email, Status: domain.OrderStatusProcessing, PaymentMethod: domain.PaymentCashOnDelivery, Shipping: ship}
	for _, l := range lines {
		o.Items = append(o.Items, domain.OrderItem{ProductID: l.ProductID, Size: l.Size, Quantity: l.Quantity, UnitPriceCents: l.UnitPriceCents})
		o.TotalCents += l.LineTotal()
	}
	s.mu.Lock()
	s.orders = append([]domain.Order{o}, s.orders...)
	s.mu.Unlock()
	return &o, nil
}

func (s *stubOrderService) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrderService) ListAll(_ context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order{}, s.orders...), nil
}

type testEnv struct {
	router   *gin.Engine
	sessions *session.Manager
	products *stubProductService
	identity *stubIdentity
	profiles *stubProfileService
	orders   *stubOrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		products: newStubProductService(),
		identity: &stubIdentity{},
		profiles: &stubProfileService{},
		orders:   &stubOrderService{},
	}
	env.sessions = session.NewManager(session.Options{
		Profiles: env.profiles,
		Orders:   env.orders,
		Logger:   zerolog.Nop(),
	})
	env.sessions.Watch(env.identity)
	t.Cleanup(env.sessions.Close)

	env.router = buildRouter(zerolog.Nop(), nil, Deps{
		Sessions:    env.sessions,
		ProductSvc:  env.products,
		CartSvc:     cartsvc.New(env.products, env.sessions, zerolog.Nop()),
		IdentitySvc: env.identity,
		ProfileSvc:  env.profiles,
		OrderSvc:    env.orders,
		AdminAPIKey: "admin-key",
	})
	return env
}

type call struct {
	method  string
	path    string
	body    string
	session string
	token   string
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.Header.Set(sessionHeader, c.session)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}
