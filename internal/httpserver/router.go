package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	cartsvc "luxe-storefront/internal/service/cart"
	"luxe-storefront/internal/service/identity"
	"luxe-storefront/internal/session"
)

type productService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Latest(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Add(ctx context.Context, sess *session.Session, in cartsvc.LineInput) (domain.CartLine, error)
	SetQuantity(ctx context.Context, sess *session.Session, in cartsvc.LineInput) error
	Remove(ctx context.Context, sess *session.Session, productID, size string) error
	Clear(ctx context.Context, sess *session.Session) error
}

type identityService interface {
	SignUp(ctx context.Context, sessionID, email, password, displayName string) (*identity.Result, error)
	SignIn(ctx context.Context, sessionID, email, password string) (*identity.Result, error)
	SignInFederated(ctx context.Context, sessionID, idToken string) (*identity.Result, error)
	SignOut(ctx context.Context, sessionID, accessToken string) error
	Lookup(ctx context.Context, accessToken string) (*domain.Principal, error)
}

type profileService interface {
	Get(ctx context.Context, customerID string) (*domain.Profile, error)
	UpdateAddress(ctx context.Context, customerID, address string) (*domain.Profile, error)
	UpdateAvatar(ctx context.Context, customerID, rawURL string) (*domain.Profile, error)
}

type orderService interface {
	Place(ctx context.Context, p domain.Principal, lines []domain.CartLine, ship domain.Shipping) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// Deps groups everything the router needs.
type Deps struct {
	Sessions    *session.Manager
	ProductSvc  productService
	CartSvc     cartService
	IdentitySvc identityService
	ProfileSvc  profileService
	OrderSvc    orderService
	AdminAPIKey string
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)
	router.GET("/products/latest", h.latestProducts)
	router.GET("/products/:id", h.getProduct)

	router.GET("/admin/orders", adminMiddleware(deps.AdminAPIKey), h.adminOrders)

	api := router.Group("/", sessionMiddleware(deps.Sessions, deps.IdentitySvc, logger))
	api.GET("/session", h.sessionView)

	api.GET("/cart", h.getCart)
	api.POST("/cart/lines", h.addLine)
	api.PUT("/cart/lines", h.setQuantity)
	api.DELETE("/cart/lines/:productId/:size", h.removeLine)
	api.DELETE("/cart", h.clearCart)

	api.POST("/auth/signup", h.signUp)
	api.POST("/auth/login", h.signIn)
	api.POST("/auth/google", h.signInGoogle)
	api.POST("/auth/logout", h.signOut)

	gated := api.Group("/", guardMiddleware(logger))
	gated.GET("/me", h.me)
	gated.PUT("/me/address", h.updateAddress)
	gated.PUT("/me/avatar", h.updateAvatar)
	gated.GET("/me/orders", h.myOrders)
	gated.POST("/checkout", h.checkout)

	return router
}
