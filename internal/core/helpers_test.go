package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"gstbilling/internal/core"
	"gstbilling/internal/store/memory"
)

// testEnv is a fully seeded in-memory world: one business in Karnataka, a
// customer in the same state, a customer in Maharashtra, and two products.
type testEnv struct {
	store    *memory.Store
	pricing  *core.PricingResolver
	ledger   *core.StockLedger
	orders   *core.OrderService
	invoices *core.InvoiceService

	business       *core.Business
	localCustomer  *core.Customer
	remoteCustomer *core.Customer
	widget         *core.Product // 100.00, GST 18%, stock 10
	gadget         *core.Product // 250.50, GST 5%, stock 3
}

func newTestEnv(t *testing.T) (*testEnv, context.Context) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	business, err := store.CreateBusiness(ctx, &core.Business{
		Name:  "Acme Traders",
		Email: "acme@example.com",
		GSTIN: "29AAAAA0000A1Z5",
		State: "Karnataka",
	})
	if err != nil {
		t.Fatalf("seed business: %v", err)
	}

	local, err := store.CreateCustomer(ctx, &core.Customer{
		BusinessID: business.ID,
		Name:       "Bangalore Retail",
		State:      "Karnataka",
	})
	if err != nil {
		t.Fatalf("seed local customer: %v", err)
	}
	remote, err := store.CreateCustomer(ctx, &core.Customer{
		BusinessID: business.ID,
		Name:       "Mumbai Wholesale",
		State:      "Maharashtra",
	})
	if err != nil {
		t.Fatalf("seed remote customer: %v", err)
	}

	widget, err := store.CreateProduct(ctx, &core.Product{
		BusinessID:    business.ID,
		Name:          "Widget",
		HSNCode:       "8517",
		Unit:          "pcs",
		UnitPrice:     dec(t, "100.00"),
		GSTRate:       dec(t, "18"),
		StockQuantity: 10,
	})
	if err != nil {
		t.Fatalf("seed widget: %v", err)
	}
	gadget, err := store.CreateProduct(ctx, &core.Product{
		BusinessID:    business.ID,
		Name:          "Gadget",
		HSNCode:       "9403",
		Unit:          "pcs",
		UnitPrice:     dec(t, "250.50"),
		GSTRate:       dec(t, "5"),
		StockQuantity: 3,
	})
	if err != nil {
		t.Fatalf("seed gadget: %v", err)
	}

	ledger := core.NewStockLedger(store)
	return &testEnv{
		store:          store,
		pricing:        core.NewPricingResolver(store),
		ledger:         ledger,
		orders:         core.NewOrderService(store),
		invoices:       core.NewInvoiceService(store, ledger),
		business:       business,
		localCustomer:  local,
		remoteCustomer: remote,
		widget:         widget,
		gadget:         gadget,
	}, ctx
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// stockOf re-reads the product and returns its cached quantity.
func (e *testEnv) stockOf(t *testing.T, ctx context.Context, productID int) int {
	t.Helper()
	p, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	return p.StockQuantity
}
