package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries everything the API needs to serve requests.
type RouterConfig struct {
	Logger             *slog.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string

	Sessions SessionProvider
	Tokens   TokenParser

	Products *ProductHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Auth     *AuthHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Offers   *OffersHandler
	Admin    *AdminHandler
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderRequestID, HeaderSessionID},
		ExposedHeaders:   []string{HeaderRequestID, HeaderSessionID},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(BodyLimit(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions))
		r.Use(AuthMiddleware(cfg.Tokens))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.Products.List)
			r.Get("/{product_id}", cfg.Products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Patch("/items/{product_id}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", cfg.Wishlist.Get)
			r.Post("/items", cfg.Wishlist.Add)
			r.Post("/items/{product_id}/toggle", cfg.Wishlist.Toggle)
			r.Delete("/items/{product_id}", cfg.Wishlist.Remove)
		})

		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", ListToasts)
			r.Delete("/{toast_id}", DismissToast)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.Auth.Login)
			r.Post("/register", cfg.Auth.Register)
			r.Post("/logout", cfg.Auth.Logout)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", cfg.Offers.Coupons)
			r.Get("/deal", cfg.Offers.Deal)
			r.Get("/products", cfg.Offers.OnSale)
		})

		r.Post("/checkout", cfg.Checkout.Checkout)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Get("/profile", cfg.Auth.GetProfile)
			r.Put("/profile", cfg.Auth.UpdateProfile)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", cfg.Orders.List)
				r.Get("/{order_id}/tracking", cfg.Orders.Track)
				r.Post("/{order_id}/cancel", cfg.Orders.Cancel)
				r.Put("/{order_id}/address", cfg.Orders.ChangeAddress)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/inventory", cfg.Admin.Inventory)
				r.Get("/orders", cfg.Admin.Orders)
				r.Post("/products", cfg.Admin.CreateProduct)
				r.Put("/products/{product_id}", cfg.Admin.UpdateProduct)
				r.Post("/products/{product_id}/offer", cfg.Admin.ApplyOffer)
				r.Post("/products/{product_id}/stock/toggle", cfg.Admin.ToggleStock)
				r.Post("/offers", cfg.Admin.CreateOffer)
			})
		})
	})

	return r
}
