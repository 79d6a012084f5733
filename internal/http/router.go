package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invio/internal/http/customer"
	"github.com/MrJamesThe3rd/invio/internal/http/invoice"
	"github.com/MrJamesThe3rd/invio/internal/http/item"
	"github.com/MrJamesThe3rd/invio/internal/http/purchaseorder"
	"github.com/MrJamesThe3rd/invio/internal/http/quotation"
)

func New(
	customersV1 *customer.Handler,
	itemsV1 *item.Handler,
	invoicesV1 *invoice.Handler,
	quotationsV1 *quotation.Handler,
	purchaseOrdersV1 *purchaseorder.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			customersV1.Routes(r)
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			itemsV1.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			quotationsV1.Routes(r)
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			purchaseOrdersV1.Routes(r)
		})
	})

	return router
}
