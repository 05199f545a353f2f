package web

import (
	"net/http"
	"time"

	"gstbilling/internal/core"
)

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	invoices, err := h.invoices.ListInvoices(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, invoices)
}

// createDirectInvoice handles POST /api/invoices — an invoice with no
// backing order.
func (h *Handler) createDirectInvoice(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	var req struct {
		CustomerID  int        `json:"customer_id"`
		Notes       string     `json:"notes"`
		InvoiceDate *time.Time `json:"invoice_date"`
		Lines       []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := h.customerForBusiness(w, r, req.CustomerID); !ok {
		return
	}

	lines := make([]core.InvoiceLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, core.InvoiceLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	var invoiceDate time.Time
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	invoice, warnings, err := h.invoices.CreateDirectInvoice(r.Context(), req.CustomerID, p.BusinessID, lines, req.Notes, invoiceDate)
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

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	invoice, ok := h.invoiceForBusiness(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, invoice)
}

func (h *Handler) updateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, ok := h.invoiceForBusiness(w, r, id); !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.invoices.UpdateStatus(r.Context(), id, core.InvoiceStatus(req.Status))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

// deleteInvoice handles DELETE /api/invoices/{id} — removes a non-paid
// invoice, reversing its stock movements and reopening a linked order.
func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, ok := h.invoiceForBusiness(w, r, id); !ok {
		return
	}

	if err := h.invoices.DeleteInvoice(r.Context(), id); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// invoiceForBusiness loads an invoice and verifies tenant ownership.
func (h *Handler) invoiceForBusiness(w http.ResponseWriter, r *http.Request, invoiceID int) (*core.Invoice, bool) {
	p := principalFromContext(r.Context())
	invoice, err := h.invoices.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		writeCoreError(w, r, err)
		return nil, false
	}
	if p == nil || invoice.BusinessID != p.BusinessID {
		writeError(w, r, "invoice not found", "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return invoice, true
}
