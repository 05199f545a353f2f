package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderService creates and transitions orders. Orders are a reservation-free
// cart: stock is only touched at invoicing time.
type OrderService struct {
	store Store
}

func NewOrderService(store Store) *OrderService {
	return &OrderService{store: store}
}

// OrderLineInput is one (product, quantity) pair of the cart being placed.
type OrderLineInput struct {
	ProductID int
	Quantity  int
}

// allowedOrderTransitions holds the caller-driven status transitions.
// invoiced is deliberately absent: only InvoiceService sets it.
var allowedOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderCompleted, OrderCancelled},
}

// CreateOrder places a cart for a customer, snapshotting the effective unit
// price per line (customer override if present, else catalog price).
func (s *OrderService) CreateOrder(ctx context.Context, customerID int, lines []OrderLineInput, notes string) (*Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("order must have at least one line: %w", ErrInvalidArgument)
	}

	var created *Order
	err := s.store.InTx(ctx, func(tx Store) error {
		customer, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("create order: customer %d: %w", customerID, err)
		}

		order := &Order{
			CustomerID: customer.ID,
			BusinessID: customer.BusinessID,
			Status:     OrderPending,
			Notes:      notes,
		}

		total := decimal.Zero
		for i, input := range lines {
			if input.Quantity < 1 {
				return fmt.Errorf("line %d: quantity must be >= 1, got %d: %w", i+1, input.Quantity, ErrInvalidArgument)
			}
			product, err := tx.GetProduct(ctx, input.ProductID)
			if err != nil {
				return fmt.Errorf("line %d: product %d: %w", i+1, input.ProductID, err)
			}
			price, _, err := resolvePrice(ctx, tx, customerID, input.ProductID)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}

			lineTotal := price.Mul(decimal.NewFromInt(int64(input.Quantity)))
			total = total.Add(lineTotal)
			order.Lines = append(order.Lines, OrderLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    input.Quantity,
				UnitPrice:   price,
				LineTotal:   lineTotal,
			})
		}
		order.TotalAmount = total

		created, err = tx.CreateOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("persist order for customer %d: %w", customerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateOrderStatus applies a caller-driven transition:
// pending → processing → completed, and pending/processing → cancelled.
// The invoiced status is owned by InvoiceService and rejected here.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int, next OrderStatus) (*Order, error) {
	if next == OrderInvoiced {
		return nil, fmt.Errorf("order %d: invoiced is set by invoice generation, not directly: %w", orderID, ErrInvalidState)
	}

	var updated *Order
	err := s.store.InTx(ctx, func(tx Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if !transitionAllowed(order.Status, next) {
			return fmt.Errorf("order %d: cannot transition %s -> %s: %w", orderID, order.Status, next, ErrInvalidState)
		}
		if err := tx.UpdateOrderStatus(ctx, orderID, next); err != nil {
			return fmt.Errorf("update order %d status: %w", orderID, err)
		}
		updated, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func transitionAllowed(from, to OrderStatus) bool {
	for _, allowed := range allowedOrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, businessID int) ([]Order, error) {
	return s.store.ListOrders(ctx, businessID)
}
