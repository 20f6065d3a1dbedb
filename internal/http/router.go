package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart     *CartHandler
	Order    *OrderHandler
	Product  *ProductHandler
	Review   *ReviewHandler
	Purchase *PurchaseHandler
	User     *UserHandler
}

// NewRouter wires the HTTP surface. Everything except the public
// catalog and health check sits behind the principal middleware.
func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public catalog
		r.Get("/products", h.Product.ListProducts)
		r.Get("/products/{id}", h.Product.GetProduct)
		r.Get("/products/{id}/reviews", h.Review.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(PrincipalMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/", h.Cart.AddItem)
				r.Delete("/", h.Cart.ClearCart)
				r.Put("/{itemId}", h.Cart.UpdateItem)
				r.Delete("/{itemId}", h.Cart.RemoveItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Order.CreateOrder)
				r.Get("/", h.Order.ListOrders)
				r.Get("/admin/all", h.Order.ListAllOrders)
				r.Put("/admin/{orderId}/status", h.Order.UpdateOrderStatus)
				r.Get("/{orderId}", h.Order.GetOrder)
				r.Put("/{orderId}/cancel", h.Order.CancelOrder)
			})

			r.Post("/products", h.Product.CreateProduct)
			r.Put("/products/{id}", h.Product.UpdateProduct)
			r.Delete("/products/{id}", h.Product.DeleteProduct)
			r.Put("/products/{id}/stock", h.Product.RestockProduct)

			r.Post("/products/{id}/reviews", h.Review.CreateReview)
			r.Put("/reviews/{reviewId}", h.Review.UpdateReview)
			r.Delete("/reviews/{reviewId}", h.Review.DeleteReview)

			r.Route("/purchases", func(r chi.Router) {
				r.Post("/", h.Purchase.CreatePurchase)
				r.Get("/", h.Purchase.ListPurchases)
				r.Get("/all", h.Purchase.ListAllPurchases)
				r.Put("/{id}/status", h.Purchase.UpdatePurchaseStatus)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.GetProfile)
				r.Put("/me", h.User.UpdateProfile)
				r.Get("/", h.User.ListUsers)
			})
		})
	})

	return r
}
