package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gstbilling/internal/core"
)

// ── Customers ────────────────────────────────────────────────────────────────

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	customers, err := h.store.ListCustomers(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		GSTIN   string `json:"gstin"`
		State   string `json:"state"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, "customer name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), &core.Customer{
		BusinessID: p.BusinessID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		GSTIN:      req.GSTIN,
		State:      req.State,
		Address:    req.Address,
	})
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	customer, ok := h.customerForBusiness(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, customer)
}

// ── Per-customer pricing ─────────────────────────────────────────────────────

func (h *Handler) getEffectivePrice(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}
	if _, ok := h.customerForBusiness(w, r, customerID); !ok {
		return
	}
	if _, ok := h.productForBusiness(w, r, productID); !ok {
		return
	}

	price, hasOverride, err := h.pricing.ResolvePrice(r.Context(), customerID, productID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	type response struct {
		CustomerID  int             `json:"customer_id"`
		ProductID   int             `json:"product_id"`
		Price       decimal.Decimal `json:"price"`
		HasOverride bool            `json:"has_override"`
	}
	writeJSON(w, response{CustomerID: customerID, ProductID: productID, Price: price, HasOverride: hasOverride})
}

func (h *Handler) setPriceOverride(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}
	if _, ok := h.customerForBusiness(w, r, customerID); !ok {
		return
	}
	if _, ok := h.productForBusiness(w, r, productID); !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.pricing.SetOverride(r.Context(), customerID, productID, req.Price); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePriceOverride(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}
	if _, ok := h.customerForBusiness(w, r, customerID); !ok {
		return
	}
	if _, ok := h.productForBusiness(w, r, productID); !ok {
		return
	}

	if err := h.pricing.DeleteOverride(r.Context(), customerID, productID); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	products, err := h.store.ListProducts(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	var req struct {
		Name          string          `json:"name"`
		HSNCode       string          `json:"hsn_code"`
		Unit          string          `json:"unit"`
		UnitPrice     decimal.Decimal `json:"unit_price"`
		GSTRate       decimal.Decimal `json:"gst_rate"`
		StockQuantity int             `json:"stock_quantity"`
		MinStockLevel int             `json:"min_stock_level"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, "product name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.UnitPrice.IsNegative() {
		writeError(w, r, "unit price cannot be negative", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if !core.ValidGSTRate(req.GSTRate) {
		writeError(w, r, "gst_rate must be one of 0, 5, 12, 18, 28", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Unit == "" {
		req.Unit = "pcs"
	}

	product, err := h.store.CreateProduct(r.Context(), &core.Product{
		BusinessID:    p.BusinessID,
		Name:          req.Name,
		HSNCode:       req.HSNCode,
		Unit:          req.Unit,
		UnitPrice:     req.UnitPrice,
		GSTRate:       req.GSTRate,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	product, ok := h.productForBusiness(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, product)
}

// lowStockProducts handles GET /api/products/low-stock — products at or
// below their reorder threshold.
func (h *Handler) lowStockProducts(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	products, err := h.store.ListProducts(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	low := make([]core.Product, 0)
	for _, product := range products {
		if product.StockQuantity <= product.MinStockLevel {
			low = append(low, product)
		}
	}
	writeJSON(w, low)
}
