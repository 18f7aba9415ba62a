package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudkitchen/storefront/internal/checkout"
	"github.com/cloudkitchen/storefront/internal/handler"
	"github.com/cloudkitchen/storefront/internal/order"
)

func NewRouter(svc order.Service, calc *checkout.Calculator) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	handler.NewOrderHandler(svc).RegisterRoutes(r)
	handler.NewCheckoutHandler(svc, calc).RegisterRoutes(r)

	return r
}
