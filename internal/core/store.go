package core

import "context"

// Store is the persistence contract the engine depends on. It is implemented
// by store/postgres for production and store/memory for tests and DB-less
// dev mode.
//
// Lookups return an error wrapping ErrNotFound when the record is absent.
// CreateInvoiceWithLines returns an error wrapping ErrConflict when another
// invoice already references the same non-nil order ID; implementations must
// enforce this at the storage layer (unique index or equivalent), not as an
// application-level check, so the at-most-one-invoice-per-order invariant
// holds under concurrent generation.
type Store interface {
	// Businesses (sellers / admin accounts)
	CreateBusiness(ctx context.Context, b *Business) (*Business, error)
	GetBusiness(ctx context.Context, id int) (*Business, error)
	GetBusinessByEmail(ctx context.Context, email string) (*Business, error)

	// Customers
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	ListCustomers(ctx context.Context, businessID int) ([]Customer, error)
	SetCustomerActive(ctx context.Context, id int) error

	// Products
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, businessID int) ([]Product, error)
	UpdateProductStock(ctx context.Context, productID, newQuantity int) error

	// Customer price overrides
	GetOverride(ctx context.Context, customerID, productID int) (*CustomerPriceOverride, error)
	UpsertOverride(ctx context.Context, o CustomerPriceOverride) error
	DeleteOverride(ctx context.Context, customerID, productID int) error

	// Orders
	CreateOrder(ctx context.Context, o *Order) (*Order, error)
	GetOrder(ctx context.Context, id int) (*Order, error)
	ListOrders(ctx context.Context, businessID int) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) error

	// Invoices
	CreateInvoiceWithLines(ctx context.Context, inv *Invoice, lines []InvoiceLine) (*Invoice, error)
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	FindInvoiceByOrderID(ctx context.Context, orderID int) (*Invoice, error)
	ListInvoices(ctx context.Context, businessID int) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id int, status InvoiceStatus) error
	DeleteInvoiceWithLines(ctx context.Context, id int) error

	// AllocateInvoiceNumber returns the next invoice number for the business.
	// Must be collision-free under concurrent allocation (sequence-backed).
	AllocateInvoiceNumber(ctx context.Context, businessID int) (string, error)

	// Stock ledger (append-only)
	AppendStockMovement(ctx context.Context, m *StockMovement) (*StockMovement, error)
	ListMovementsByProduct(ctx context.Context, productID int) ([]StockMovement, error)
	ListMovementsByReference(ctx context.Context, reference string) ([]StockMovement, error)

	// InTx runs fn against a transaction-scoped Store. If fn returns an
	// error the transaction rolls back and no partial state is observable.
	// Nested use of InTx inside fn is not supported.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
