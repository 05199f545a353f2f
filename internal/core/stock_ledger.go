package core

import (
	"context"
	"fmt"
)

// StockLedger is the single mutation path for Product.StockQuantity. Every
// change appends a StockMovement row atomically with the counter update, so
// the ledger always reconciles against the cached quantity.
//
// Out movements are allowed to drive the quantity negative: oversell is a
// business policy here, surfaced as a warning by the caller, never a
// blocking error.
type StockLedger struct {
	store Store
}

func NewStockLedger(store Store) *StockLedger {
	return &StockLedger{store: store}
}

// RecordMovement applies a movement in its own transaction. Use for
// standalone stock operations (purchases, manual adjustments).
func (l *StockLedger) RecordMovement(ctx context.Context, productID int, typ MovementType, quantity int, reference, notes string) (*StockMovement, error) {
	var mv *StockMovement
	err := l.store.InTx(ctx, func(tx Store) error {
		var err error
		mv, err = l.RecordMovementTx(ctx, tx, productID, typ, quantity, reference, notes)
		return err
	})
	return mv, err
}

// RecordMovementTx applies a movement within the caller's transaction. Used
// by InvoiceService to keep ledger writes atomic with invoice persistence.
func (l *StockLedger) RecordMovementTx(ctx context.Context, tx Store, productID int, typ MovementType, quantity int, reference, notes string) (*StockMovement, error) {
	switch typ {
	case MovementIn, MovementOut:
		if quantity <= 0 {
			return nil, fmt.Errorf("%s movement quantity must be > 0, got %d: %w", typ, quantity, ErrInvalidArgument)
		}
	case MovementAdjustment:
		if quantity == 0 {
			return nil, fmt.Errorf("adjustment delta must be non-zero: %w", ErrInvalidArgument)
		}
	default:
		return nil, fmt.Errorf("unknown movement type %q: %w", typ, ErrInvalidArgument)
	}

	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("record %s movement: product %d: %w", typ, productID, err)
	}

	newQty := p.StockQuantity
	switch typ {
	case MovementIn:
		newQty += quantity
	case MovementOut:
		newQty -= quantity
	case MovementAdjustment:
		newQty += quantity
	}

	mv, err := tx.AppendStockMovement(ctx, &StockMovement{
		ProductID: productID,
		Type:      typ,
		Quantity:  quantity,
		Reference: reference,
		Notes:     notes,
	})
	if err != nil {
		return nil, fmt.Errorf("append %s movement for product %d: %w", typ, productID, err)
	}

	if err := tx.UpdateProductStock(ctx, productID, newQty); err != nil {
		return nil, fmt.Errorf("update stock for product %d: %w", productID, err)
	}
	return mv, nil
}

// ReverseMovement records the equal-and-opposite movement for orig in its
// own transaction. The original row is never mutated or deleted.
func (l *StockLedger) ReverseMovement(ctx context.Context, orig StockMovement) (*StockMovement, error) {
	var mv *StockMovement
	err := l.store.InTx(ctx, func(tx Store) error {
		var err error
		mv, err = l.ReverseMovementTx(ctx, tx, orig)
		return err
	})
	return mv, err
}

// ReverseMovementTx records the reversal within the caller's transaction.
func (l *StockLedger) ReverseMovementTx(ctx context.Context, tx Store, orig StockMovement) (*StockMovement, error) {
	var typ MovementType
	qty := orig.Quantity
	switch orig.Type {
	case MovementIn:
		typ = MovementOut
	case MovementOut:
		typ = MovementIn
	case MovementAdjustment:
		typ = MovementAdjustment
		qty = -qty
	default:
		return nil, fmt.Errorf("cannot reverse movement type %q: %w", orig.Type, ErrInvalidArgument)
	}

	reference := fmt.Sprintf("Reversal of %s", orig.Reference)
	notes := fmt.Sprintf("Reversal of movement %d", orig.ID)
	return l.RecordMovementTx(ctx, tx, orig.ProductID, typ, qty, reference, notes)
}
