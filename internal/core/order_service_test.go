package core_test

import (
	"errors"
	"testing"

	"gstbilling/internal/core"
)

func TestCreateOrder_SnapshotsPrices(t *testing.T) {
	env, ctx := newTestEnv(t)

	// localCustomer gets the widget at a negotiated price.
	if err := env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "90.00")); err != nil {
		t.Fatalf("set override: %v", err)
	}

	order, err := env.orders.CreateOrder(ctx, env.localCustomer.ID, []core.OrderLineInput{
		{ProductID: env.widget.ID, Quantity: 2},
		{ProductID: env.gadget.ID, Quantity: 1},
	}, "first order")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != core.OrderPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.BusinessID != env.business.ID {
		t.Errorf("business = %d, want %d", order.BusinessID, env.business.ID)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(order.Lines))
	}
	if !order.Lines[0].UnitPrice.Equal(dec(t, "90.00")) {
		t.Errorf("widget price = %s, want override 90.00", order.Lines[0].UnitPrice)
	}
	if !order.Lines[1].UnitPrice.Equal(dec(t, "250.50")) {
		t.Errorf("gadget price = %s, want catalog 250.50", order.Lines[1].UnitPrice)
	}
	// 2×90 + 1×250.50
	if !order.TotalAmount.Equal(dec(t, "430.50")) {
		t.Errorf("total = %s, want 430.50", order.TotalAmount)
	}

	// Changing the override later must not affect the placed order.
	if err := env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "50.00")); err != nil {
		t.Fatalf("update override: %v", err)
	}
	reloaded, err := env.orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !reloaded.Lines[0].UnitPrice.Equal(dec(t, "90.00")) {
		t.Errorf("snapshot price changed to %s", reloaded.Lines[0].UnitPrice)
	}

	// Orders never touch stock.
	if got := env.stockOf(t, ctx, env.widget.ID); got != 10 {
		t.Errorf("stock = %d, want 10 (orders must not reserve)", got)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	env, ctx := newTestEnv(t)

	if _, err := env.orders.CreateOrder(ctx, env.localCustomer.ID, nil, ""); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("empty order: got %v, want ErrInvalidArgument", err)
	}

	_, err := env.orders.CreateOrder(ctx, env.localCustomer.ID, []core.OrderLineInput{
		{ProductID: env.widget.ID, Quantity: 0},
	}, "")
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("zero quantity: got %v, want ErrInvalidArgument", err)
	}

	_, err = env.orders.CreateOrder(ctx, 9999, []core.OrderLineInput{
		{ProductID: env.widget.ID, Quantity: 1},
	}, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown customer: got %v, want ErrNotFound", err)
	}

	_, err = env.orders.CreateOrder(ctx, env.localCustomer.ID, []core.OrderLineInput{
		{ProductID: 9999, Quantity: 1},
	}, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown product: got %v, want ErrNotFound", err)
	}
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	env, ctx := newTestEnv(t)

	place := func() *core.Order {
		t.Helper()
		order, err := env.orders.CreateOrder(ctx, env.localCustomer.ID, []core.OrderLineInput{
			{ProductID: env.widget.ID, Quantity: 1},
		}, "")
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		return order
	}

	// pending → processing → completed
	order := place()
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderProcessing); err != nil {
		t.Fatalf("pending→processing: %v", err)
	}
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderCompleted); err != nil {
		t.Fatalf("processing→completed: %v", err)
	}

	// completed is terminal
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderCancelled); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("completed→cancelled: got %v, want ErrInvalidState", err)
	}

	// pending → cancelled
	order = place()
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderCancelled); err != nil {
		t.Fatalf("pending→cancelled: %v", err)
	}

	// pending → completed skips processing and is rejected
	order = place()
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderCompleted); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("pending→completed: got %v, want ErrInvalidState", err)
	}

	// invoiced is owned by invoice generation
	if _, err := env.orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced); !errors.Is(err, core.ErrInvalidState) {
		t.Errorf("direct invoiced: got %v, want ErrInvalidState", err)
	}
}
