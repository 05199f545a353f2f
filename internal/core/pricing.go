package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingResolver returns the effective unit price for a (customer, product)
// pair: the customer-specific override when one exists, else the catalog
// price.
type PricingResolver struct {
	store Store
}

func NewPricingResolver(store Store) *PricingResolver {
	return &PricingResolver{store: store}
}

// ResolvePrice returns the effective unit price and whether it came from a
// customer override.
func (r *PricingResolver) ResolvePrice(ctx context.Context, customerID, productID int) (decimal.Decimal, bool, error) {
	return resolvePrice(ctx, r.store, customerID, productID)
}

// resolvePrice is the store-parametric form so callers holding a transaction
// can resolve inside it.
func resolvePrice(ctx context.Context, st Store, customerID, productID int) (decimal.Decimal, bool, error) {
	ov, err := st.GetOverride(ctx, customerID, productID)
	if err == nil {
		return ov.Price, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return decimal.Zero, false, fmt.Errorf("lookup override for customer %d product %d: %w", customerID, productID, err)
	}

	p, err := st.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("resolve price for product %d: %w", productID, err)
	}
	return p.UnitPrice, false, nil
}

// SetOverride upserts the override price for a (customer, product) pair.
// The price must be positive. Calling twice with the same price is a no-op
// write, not a second row.
func (r *PricingResolver) SetOverride(ctx context.Context, customerID, productID int, price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("override price must be > 0, got %s: %w", price, ErrInvalidArgument)
	}
	if _, err := r.store.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("set override: product %d: %w", productID, err)
	}
	if _, err := r.store.GetCustomer(ctx, customerID); err != nil {
		return fmt.Errorf("set override: customer %d: %w", customerID, err)
	}

	existing, err := r.store.GetOverride(ctx, customerID, productID)
	if err == nil && existing.Price.Equal(price) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("set override for customer %d product %d: %w", customerID, productID, err)
	}

	o := CustomerPriceOverride{CustomerID: customerID, ProductID: productID, Price: price}
	if err := r.store.UpsertOverride(ctx, o); err != nil {
		return fmt.Errorf("upsert override for customer %d product %d: %w", customerID, productID, err)
	}
	return nil
}

// DeleteOverride removes the override; resolution falls back to the catalog
// price afterwards. Deleting a non-existent override is not an error.
func (r *PricingResolver) DeleteOverride(ctx context.Context, customerID, productID int) error {
	if err := r.store.DeleteOverride(ctx, customerID, productID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete override for customer %d product %d: %w", customerID, productID, err)
	}
	return nil
}
