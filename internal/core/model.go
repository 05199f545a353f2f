package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business is the selling party (an admin account). Its State drives the
// CGST/SGST vs IGST split on every invoice it issues.
type Business struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GSTIN        string    `json:"gstin"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

// Customer is the buying party. IsActive flips to true the first time an
// invoice is generated for them and never flips back.
type Customer struct {
	ID         int       `json:"id"`
	BusinessID int       `json:"business_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	GSTIN      string    `json:"gstin"`
	State      string    `json:"state"`
	Address    string    `json:"address"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Product is a catalog item. StockQuantity is mutated only through the
// StockLedger; it may go negative (oversell is tolerated and surfaced as a
// warning at invoicing time).
type Product struct {
	ID            int             `json:"id"`
	BusinessID    int             `json:"business_id"`
	Name          string          `json:"name"`
	HSNCode       string          `json:"hsn_code"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CustomerPriceOverride is a per-(customer, product) unit price that takes
// precedence over the catalog price. At most one exists per pair.
type CustomerPriceOverride struct {
	CustomerID int             `json:"customer_id"`
	ProductID  int             `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderInvoiced   OrderStatus = "invoiced"
)

// Order is a reservation-free cart: creating one never touches stock.
// It is mutable while pending and becomes effectively immutable once an
// invoice references it.
type Order struct {
	ID          int             `json:"id"`
	CustomerID  int             `json:"customer_id"`
	BusinessID  int             `json:"business_id"`
	Status      OrderStatus     `json:"status"`
	Notes       string          `json:"notes"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderLine snapshots the unit price at order time.
type OrderLine struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
	InvoiceDone      InvoiceStatus = "done"
)

// Invoice line items and monetary totals are immutable after creation; only
// Status may transition. OrderID is nil for a direct invoice.
type Invoice struct {
	ID            int             `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       *int            `json:"order_id,omitempty"`
	CustomerID    int             `json:"customer_id"`
	BusinessID    int             `json:"business_id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Status        InvoiceStatus   `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Notes         string          `json:"notes"`
	Lines         []InvoiceLine   `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceLine carries the GST rate snapshotted from the product at invoice
// time; later catalog rate changes never touch an existing invoice.
type InvoiceLine struct {
	ID           int             `json:"id"`
	InvoiceID    int             `json:"invoice_id"`
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	HSNCode      string          `json:"hsn_code"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	GSTAmount    decimal.Decimal `json:"gst_amount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// StockMovement is one row of the append-only ledger reconciling against the
// cached Product.StockQuantity counter. Rows are never updated or deleted;
// corrections are recorded as equal-and-opposite movements.
//
// Quantity is a positive magnitude for in/out and a signed delta for
// adjustment movements.
type StockMovement struct {
	ID        int          `json:"id"`
	ProductID int          `json:"product_id"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	Reference string       `json:"reference"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"created_at"`
}

// PrincipalKind identifies who is calling. It is resolved exactly once at the
// authentication boundary and passed in explicitly, never re-derived.
type PrincipalKind string

const (
	PrincipalAdmin      PrincipalKind = "admin"
	PrincipalCustomer   PrincipalKind = "customer"
	PrincipalSuperAdmin PrincipalKind = "super_admin"
)

// validGSTRates are the GST slabs accepted at catalog write time.
var validGSTRates = []int64{0, 5, 12, 18, 28}

// ValidGSTRate reports whether rate is one of the accepted GST slabs.
func ValidGSTRate(rate decimal.Decimal) bool {
	for _, r := range validGSTRates {
		if rate.Equal(decimal.NewFromInt(r)) {
			return true
		}
	}
	return false
}
