package web

import (
	"net/http"

	"gstbilling/internal/core"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	orders, err := h.orders.ListOrders(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID int    `json:"customer_id"`
		Notes      string `json:"notes"`
		Lines      []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	// A customer token can only place orders for itself.
	if p := principalFromContext(r.Context()); p != nil && p.Kind == core.PrincipalCustomer {
		req.CustomerID = p.ID
	}
	if _, ok := h.customerForBusiness(w, r, req.CustomerID); !ok {
		return
	}

	lines := make([]core.OrderLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, core.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	order, err := h.orders.CreateOrder(r.Context(), req.CustomerID, lines, req.Notes)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	order, ok := h.orderForBusiness(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, order)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, ok := h.orderForBusiness(w, r, id); !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), id, core.OrderStatus(req.Status))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// generateInvoice handles POST /api/orders/{id}/invoice — converts the order
// into an invoice exactly once. Stock shortfalls come back as warnings, not
// errors.
func (h *Handler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, ok := h.orderForBusiness(w, r, id); !ok {
		return
	}

	invoice, warnings, err := h.invoices.GenerateFromOrder(r.Context(), id)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	type response struct {
		Invoice  *core.Invoice `json:"invoice"`
		Warnings []string      `json:"warnings,omitempty"`
	}
	writeJSONStatus(w, http.StatusCreated, response{Invoice: invoice, Warnings: warnings})
}

// orderForBusiness loads an order and verifies tenant ownership.
func (h *Handler) orderForBusiness(w http.ResponseWriter, r *http.Request, orderID int) (*core.Order, bool) {
	p := principalFromContext(r.Context())
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeCoreError(w, r, err)
		return nil, false
	}
	if p == nil || order.BusinessID != p.BusinessID {
		writeError(w, r, "order not found", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return order, true
}
