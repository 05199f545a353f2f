package web

import (
	"net/http"

	"gstbilling/internal/core"
)

// recordMovement handles POST /api/stock/movements — manual stock receipts
// and count corrections. Invoice-driven out movements are recorded by the
// invoice flow, not here.
func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int    `json:"product_id"`
		Type      string `json:"type"`
		Quantity  int    `json:"quantity"`
		Reference string `json:"reference"`
		Notes     string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := h.productForBusiness(w, r, req.ProductID); !ok {
		return
	}

	movement, err := h.ledger.RecordMovement(r.Context(), req.ProductID,
		core.MovementType(req.Type), req.Quantity, req.Reference, req.Notes)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, movement)
}

// listProductMovements handles GET /api/products/{id}/movements — the
// product's full ledger history, oldest first.
func (h *Handler) listProductMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, ok := h.productForBusiness(w, r, id); !ok {
		return
	}

	movements, err := h.store.ListMovementsByProduct(r.Context(), id)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, movements)
}
