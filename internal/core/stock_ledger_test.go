package core_test

import (
	"errors"
	"testing"

	"gstbilling/internal/core"
)

func TestStockLedger_InOutAdjustment(t *testing.T) {
	env, ctx := newTestEnv(t)

	// widget starts at 10
	if _, err := env.ledger.RecordMovement(ctx, env.widget.ID, core.MovementIn, 5, "PO-1", "goods receipt"); err != nil {
		t.Fatalf("in movement: %v", err)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 15 {
		t.Errorf("after in: stock = %d, want 15", got)
	}

	if _, err := env.ledger.RecordMovement(ctx, env.widget.ID, core.MovementOut, 4, "SALE-1", ""); err != nil {
		t.Fatalf("out movement: %v", err)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 11 {
		t.Errorf("after out: stock = %d, want 11", got)
	}

	// Adjustment is a signed delta, not an absolute count.
	if _, err := env.ledger.RecordMovement(ctx, env.widget.ID, core.MovementAdjustment, -3, "COUNT-1", "cycle count"); err != nil {
		t.Fatalf("adjustment: %v", err)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 8 {
		t.Errorf("after adjustment: stock = %d, want 8", got)
	}

	movements, err := env.store.ListMovementsByProduct(ctx, env.widget.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 3 {
		t.Fatalf("ledger has %d rows, want 3", len(movements))
	}
}

func TestStockLedger_OutMayGoNegative(t *testing.T) {
	env, ctx := newTestEnv(t)

	// gadget starts at 3; selling 5 is allowed and leaves -2.
	if _, err := env.ledger.RecordMovement(ctx, env.gadget.ID, core.MovementOut, 5, "SALE-2", ""); err != nil {
		t.Fatalf("out movement: %v", err)
	}
	if got := env.stockOf(t, ctx, env.gadget.ID); got != -2 {
		t.Errorf("stock = %d, want -2", got)
	}
}

func TestStockLedger_Validation(t *testing.T) {
	env, ctx := newTestEnv(t)

	tests := []struct {
		name string
		typ  core.MovementType
		qty  int
	}{
		{"zero in", core.MovementIn, 0},
		{"negative in", core.MovementIn, -1},
		{"zero out", core.MovementOut, 0},
		{"negative out", core.MovementOut, -4},
		{"zero adjustment", core.MovementAdjustment, 0},
		{"unknown type", core.MovementType("transfer"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.RecordMovement(ctx, env.widget.ID, tt.typ, tt.qty, "", "")
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}

	if _, err := env.ledger.RecordMovement(ctx, 9999, core.MovementIn, 1, "", ""); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown product: got %v, want ErrNotFound", err)
	}

	// Failed movements must leave no ledger rows behind.
	movements, err := env.store.ListMovementsByProduct(ctx, env.widget.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("ledger has %d rows after rejected movements, want 0", len(movements))
	}
}

func TestStockLedger_ReverseMovement(t *testing.T) {
	env, ctx := newTestEnv(t)

	out, err := env.ledger.RecordMovement(ctx, env.widget.ID, core.MovementOut, 4, "INV-1-1000", "Sold in invoice INV-1-1000")
	if err != nil {
		t.Fatalf("out movement: %v", err)
	}

	rev, err := env.ledger.ReverseMovement(ctx, *out)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if rev.Type != core.MovementIn || rev.Quantity != 4 {
		t.Errorf("reversal = %s %d, want in 4", rev.Type, rev.Quantity)
	}
	if rev.Reference != "Reversal of INV-1-1000" {
		t.Errorf("reversal reference = %q", rev.Reference)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 10 {
		t.Errorf("stock = %d, want 10 after reversal", got)
	}

	// Append-only: the original row survives alongside the reversal.
	movements, err := env.store.ListMovementsByProduct(ctx, env.widget.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("ledger has %d rows, want 2", len(movements))
	}
	if movements[0].ID != out.ID || movements[0].Type != core.MovementOut {
		t.Errorf("original movement mutated: %+v", movements[0])
	}
}

func TestStockLedger_ReverseAdjustmentNegatesDelta(t *testing.T) {
	env, ctx := newTestEnv(t)

	adj, err := env.ledger.RecordMovement(ctx, env.widget.ID, core.MovementAdjustment, -6, "COUNT-2", "")
	if err != nil {
		t.Fatalf("adjustment: %v", err)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 4 {
		t.Fatalf("stock = %d, want 4", got)
	}

	rev, err := env.ledger.ReverseMovement(ctx, *adj)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if rev.Type != core.MovementAdjustment || rev.Quantity != 6 {
		t.Errorf("reversal = %s %d, want adjustment 6", rev.Type, rev.Quantity)
	}
	if got := env.stockOf(t, ctx, env.widget.ID); got != 10 {
		t.Errorf("stock = %d, want 10 after reversal", got)
	}
}
