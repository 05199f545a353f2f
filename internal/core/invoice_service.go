package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceService converts orders into immutable invoices, computes the GST
// split, and drives the StockLedger. All writes of one generation happen in
// a single transaction: invoice + lines + ledger movements + order status
// land together or not at all.
type InvoiceService struct {
	store  Store
	ledger *StockLedger
}

func NewInvoiceService(store Store, ledger *StockLedger) *InvoiceService {
	return &InvoiceService{store: store, ledger: ledger}
}

// InvoiceLineInput is one (product, quantity) pair of a direct invoice.
type InvoiceLineInput struct {
	ProductID int
	Quantity  int
}

// lineSpec is a fully priced line ready for tax computation.
type lineSpec struct {
	productID int
	quantity  int
	unitPrice decimal.Decimal
}

// GenerateFromOrder converts an order into an invoice exactly once.
// A second call for the same order returns ErrConflict; the duplicate check
// runs inside the transaction and is backed by the store's unique constraint
// on order ID, so concurrent callers cannot both succeed.
//
// Insufficient stock does not fail the call: the invoice is generated, stock
// goes negative, and the shortfall is returned as warnings.
func (s *InvoiceService) GenerateFromOrder(ctx context.Context, orderID int) (*Invoice, []string, error) {
	var inv *Invoice
	var warnings []string
	err := s.store.InTx(ctx, func(tx Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("generate invoice: order %d: %w", orderID, err)
		}
		if order.Status == OrderCancelled {
			return fmt.Errorf("order %d is cancelled: %w", orderID, ErrInvalidState)
		}

		existing, err := tx.FindInvoiceByOrderID(ctx, orderID)
		if err == nil {
			return fmt.Errorf("order %d already invoiced as %s: %w", orderID, existing.InvoiceNumber, ErrConflict)
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check existing invoice for order %d: %w", orderID, err)
		}

		specs := make([]lineSpec, 0, len(order.Lines))
		for _, l := range order.Lines {
			specs = append(specs, lineSpec{productID: l.ProductID, quantity: l.Quantity, unitPrice: l.UnitPrice})
		}

		oid := order.ID
		inv, warnings, err = s.generateTx(ctx, tx, order.CustomerID, order.BusinessID, specs, &oid, time.Now(), order.Notes)
		if err != nil {
			return err
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, OrderInvoiced); err != nil {
			return fmt.Errorf("mark order %d invoiced: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		log.Printf("invoice %s: %s", inv.InvoiceNumber, w)
	}
	return inv, warnings, nil
}

// CreateDirectInvoice builds an invoice with no backing order. Unit prices
// are resolved per customer (override, else catalog) at invoice time.
func (s *InvoiceService) CreateDirectInvoice(ctx context.Context, customerID, businessID int, lines []InvoiceLineInput, notes string, invoiceDate time.Time) (*Invoice, []string, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("invoice must have at least one line: %w", ErrInvalidArgument)
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	var inv *Invoice
	var warnings []string
	err := s.store.InTx(ctx, func(tx Store) error {
		specs := make([]lineSpec, 0, len(lines))
		for i, input := range lines {
			if input.Quantity < 1 {
				return fmt.Errorf("line %d: quantity must be >= 1, got %d: %w", i+1, input.Quantity, ErrInvalidArgument)
			}
			price, _, err := resolvePrice(ctx, tx, customerID, input.ProductID)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			specs = append(specs, lineSpec{productID: input.ProductID, quantity: input.Quantity, unitPrice: price})
		}

		var err error
		inv, warnings, err = s.generateTx(ctx, tx, customerID, businessID, specs, nil, invoiceDate, notes)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		log.Printf("invoice %s: %s", inv.InvoiceNumber, w)
	}
	return inv, warnings, nil
}

// generateTx performs the shared invoice construction inside the caller's
// transaction: number allocation, per-line tax snapshot, GST split, ledger
// decrements, customer activation, and persistence.
func (s *InvoiceService) generateTx(ctx context.Context, tx Store, customerID, businessID int, specs []lineSpec, orderID *int, invoiceDate time.Time, notes string) (*Invoice, []string, error) {
	customer, err := tx.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate invoice: customer %d: %w", customerID, err)
	}
	business, err := tx.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate invoice: business %d: %w", businessID, err)
	}

	number, err := tx.AllocateInvoiceNumber(ctx, businessID)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate invoice number for business %d: %w", businessID, err)
	}

	var warnings []string
	lines := make([]InvoiceLine, 0, len(specs))
	subtotal := decimal.Zero
	totalGST := decimal.Zero

	for _, spec := range specs {
		product, err := tx.GetProduct(ctx, spec.productID)
		if err != nil {
			return nil, nil, fmt.Errorf("generate invoice %s: product %d: %w", number, spec.productID, err)
		}

		qty := decimal.NewFromInt(int64(spec.quantity))
		taxable := spec.unitPrice.Mul(qty)
		gst := ComputeLineTax(taxable, product.GSTRate)

		subtotal = subtotal.Add(taxable)
		totalGST = totalGST.Add(gst)
		lines = append(lines, InvoiceLine{
			ProductID:    product.ID,
			ProductName:  product.Name,
			HSNCode:      product.HSNCode,
			Quantity:     spec.quantity,
			UnitPrice:    spec.unitPrice,
			GSTRate:      product.GSTRate,
			TaxableValue: taxable,
			GSTAmount:    gst,
			LineTotal:    taxable.Add(gst),
		})

		// Oversell is tolerated: warn, then decrement anyway.
		if product.StockQuantity < spec.quantity {
			warnings = append(warnings, fmt.Sprintf("insufficient stock for %s: available %d, invoiced %d",
				product.Name, product.StockQuantity, spec.quantity))
		}
		if _, err := s.ledger.RecordMovementTx(ctx, tx, product.ID, MovementOut, spec.quantity,
			number, fmt.Sprintf("Sold in invoice %s", number)); err != nil {
			return nil, nil, err
		}
	}

	cgst, sgst, igst := SplitGST(totalGST, business.State, customer.State)

	inv := &Invoice{
		InvoiceNumber: number,
		OrderID:       orderID,
		CustomerID:    customer.ID,
		BusinessID:    business.ID,
		InvoiceDate:   invoiceDate,
		Status:        InvoicePending,
		Subtotal:      subtotal,
		CGSTAmount:    cgst,
		SGSTAmount:    sgst,
		IGSTAmount:    igst,
		TotalAmount:   subtotal.Add(totalGST),
		Notes:         notes,
	}

	inv, err = tx.CreateInvoiceWithLines(ctx, inv, lines)
	if err != nil {
		return nil, nil, fmt.Errorf("persist invoice %s: %w", number, err)
	}

	if !customer.IsActive {
		if err := tx.SetCustomerActive(ctx, customer.ID); err != nil {
			return nil, nil, fmt.Errorf("mark customer %d active: %w", customer.ID, err)
		}
	}
	return inv, warnings, nil
}

// DeleteInvoice removes a non-paid invoice and restores stock by reversing
// every ledger movement the invoice produced. The original out movements
// stay in the ledger; the reversal rows are appended alongside them. A
// linked order reverts from invoiced to pending so it can be re-invoiced.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceID int) error {
	return s.store.InTx(ctx, func(tx Store) error {
		inv, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("delete invoice %d: %w", invoiceID, err)
		}
		if inv.Status == InvoicePaid {
			return fmt.Errorf("invoice %s is paid and cannot be deleted: %w", inv.InvoiceNumber, ErrInvalidState)
		}

		movements, err := tx.ListMovementsByReference(ctx, inv.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("list movements for invoice %s: %w", inv.InvoiceNumber, err)
		}
		for _, mv := range movements {
			if _, err := s.ledger.ReverseMovementTx(ctx, tx, mv); err != nil {
				return fmt.Errorf("reverse movement %d for invoice %s: %w", mv.ID, inv.InvoiceNumber, err)
			}
		}

		if err := tx.DeleteInvoiceWithLines(ctx, invoiceID); err != nil {
			return fmt.Errorf("delete invoice %s: %w", inv.InvoiceNumber, err)
		}

		if inv.OrderID != nil {
			if err := tx.UpdateOrderStatus(ctx, *inv.OrderID, OrderPending); err != nil {
				return fmt.Errorf("revert order %d to pending: %w", *inv.OrderID, err)
			}
		}
		return nil
	})
}

// UpdateStatus transitions the invoice status. Line items and totals are
// fixed at creation time; no tax recomputation ever happens here.
func (s *InvoiceService) UpdateStatus(ctx context.Context, invoiceID int, next InvoiceStatus) (*Invoice, error) {
	switch next {
	case InvoiceDraft, InvoicePending, InvoicePaid, InvoiceCancelled, InvoiceDone:
	default:
		return nil, fmt.Errorf("unknown invoice status %q: %w", next, ErrInvalidArgument)
	}

	var updated *Invoice
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.GetInvoice(ctx, invoiceID); err != nil {
			return fmt.Errorf("invoice %d: %w", invoiceID, err)
		}
		if err := tx.UpdateInvoiceStatus(ctx, invoiceID, next); err != nil {
			return fmt.Errorf("update invoice %d status: %w", invoiceID, err)
		}
		var err error
		updated, err = tx.GetInvoice(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, err)
	}
	return inv, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, businessID int) ([]Invoice, error) {
	return s.store.ListInvoices(ctx, businessID)
}
