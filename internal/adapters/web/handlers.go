// Package web is the HTTP adapter: a chi router over the core services,
// JWT-authenticated, speaking JSON.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gstbilling/internal/core"
)

// Handler holds the core services and the chi router.
type Handler struct {
	store     core.Store
	pricing   *core.PricingResolver
	ledger    *core.StockLedger
	orders    *core.OrderService
	invoices  *core.InvoiceService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(store core.Store, allowedOrigins, jwtSecret string) http.Handler {
	ledger := core.NewStockLedger(store)
	h := &Handler{
		store:     store,
		pricing:   core.NewPricingResolver(store),
		ledger:    ledger,
		orders:    core.NewOrderService(store),
		invoices:  core.NewInvoiceService(store, ledger),
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API (401 JSON if unauthenticated) ──────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		// Order placement is open to customer tokens as well as admins.
		r.With(h.RequireKind(core.PrincipalAdmin, core.PrincipalSuperAdmin, core.PrincipalCustomer)).
			Post("/api/orders", h.createOrder)

		// Everything else is admin-only.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireKind(core.PrincipalAdmin, core.PrincipalSuperAdmin))

			// Customers
			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/customers/{id}", h.getCustomer)
			r.Post("/api/customers/{id}/token", h.customerToken)

			// Per-customer pricing
			r.Get("/api/customers/{id}/prices/{productID}", h.getEffectivePrice)
			r.Put("/api/customers/{id}/prices/{productID}", h.setPriceOverride)
			r.Delete("/api/customers/{id}/prices/{productID}", h.deletePriceOverride)

			// Products and the stock ledger
			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Get("/api/products/low-stock", h.lowStockProducts)
			r.Get("/api/products/{id}", h.getProduct)
			r.Get("/api/products/{id}/movements", h.listProductMovements)
			r.Post("/api/stock/movements", h.recordMovement)

			// Orders
			r.Get("/api/orders", h.listOrders)
			r.Get("/api/orders/{id}", h.getOrder)
			r.Post("/api/orders/{id}/status", h.updateOrderStatus)
			r.Post("/api/orders/{id}/invoice", h.generateInvoice)

			// Invoices
			r.Get("/api/invoices", h.listInvoices)
			r.Post("/api/invoices", h.createDirectInvoice)
			r.Get("/api/invoices/{id}", h.getInvoice)
			r.Post("/api/invoices/{id}/status", h.updateInvoiceStatus)
			r.Delete("/api/invoices/{id}", h.deleteInvoice)
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts an integer URL parameter; writes 400 and returns false on
// junk input.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. HTTP 413 when the body exceeds the
// RequestBodyLimit; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// customerForBusiness loads a customer and verifies it belongs to the
// caller's business; cross-tenant IDs read as not found.
func (h *Handler) customerForBusiness(w http.ResponseWriter, r *http.Request, customerID int) (*core.Customer, bool) {
	p := principalFromContext(r.Context())
	customer, err := h.store.GetCustomer(r.Context(), customerID)
	if err != nil {
		writeCoreError(w, r, err)
		return nil, false
	}
	if p == nil || customer.BusinessID != p.BusinessID {
		writeError(w, r, "customer not found", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return customer, true
}

// productForBusiness is the product counterpart of customerForBusiness.
func (h *Handler) productForBusiness(w http.ResponseWriter, r *http.Request, productID int) (*core.Product, bool) {
	p := principalFromContext(r.Context())
	product, err := h.store.GetProduct(r.Context(), productID)
	if err != nil {
		writeCoreError(w, r, err)
		return nil, false
	}
	if p == nil || product.BusinessID != p.BusinessID {
		writeError(w, r, "product not found", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return product, true
}
