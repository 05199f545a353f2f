// Package postgres implements core.Store on pgx. Same-product stock updates
// are serialized with row locks (SELECT ... FOR UPDATE inside transactions),
// the at-most-one-invoice-per-order invariant is a partial unique index on
// invoices.order_id, and invoice numbers come from a sequence-table upsert
// that is atomic under concurrency.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gstbilling/internal/core"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the query
// helpers below serve standalone and transaction-scoped calls alike.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ core.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore is the transaction-scoped view. Product reads inside a
// transaction take row locks so concurrent movements on the same product
// serialize instead of losing updates.
type txStore struct {
	tx pgx.Tx
}

var _ core.Store = (*txStore)(nil)

// InTx on a transaction-scoped store flattens into the enclosing one.
func (t *txStore) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	return fn(t)
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ── Businesses ───────────────────────────────────────────────────────────────

func createBusiness(ctx context.Context, q querier, b *core.Business) (*core.Business, error) {
	nb := *b
	err := q.QueryRow(ctx, `
		INSERT INTO businesses (name, email, password_hash, gstin, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, b.Name, b.Email, b.PasswordHash, b.GSTIN, b.State).Scan(&nb.ID, &nb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	return &nb, nil
}

func getBusiness(ctx context.Context, q querier, id int) (*core.Business, error) {
	var b core.Business
	err := q.QueryRow(ctx, `
		SELECT id, name, email, password_hash, gstin, state, created_at
		FROM businesses WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.GSTIN, &b.State, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("business %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch business %d: %w", id, err)
	}
	return &b, nil
}

func getBusinessByEmail(ctx context.Context, q querier, email string) (*core.Business, error) {
	var b core.Business
	err := q.QueryRow(ctx, `
		SELECT id, name, email, password_hash, gstin, state, created_at
		FROM businesses WHERE lower(email) = lower($1)
	`, email).Scan(&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.GSTIN, &b.State, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("business %q: %w", email, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch business by email: %w", err)
	}
	return &b, nil
}

// ── Customers ────────────────────────────────────────────────────────────────

func createCustomer(ctx context.Context, q querier, c *core.Customer) (*core.Customer, error) {
	nc := *c
	err := q.QueryRow(ctx, `
		INSERT INTO customers (business_id, name, email, phone, gstin, state, address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		RETURNING id, is_active, created_at
	`, c.BusinessID, c.Name, c.Email, c.Phone, c.GSTIN, c.State, c.Address).Scan(&nc.ID, &nc.IsActive, &nc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &nc, nil
}

func getCustomer(ctx context.Context, q querier, id int) (*core.Customer, error) {
	var c core.Customer
	err := q.QueryRow(ctx, `
		SELECT id, business_id, name, email, phone, gstin, state, address, is_active, created_at
		FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.BusinessID, &c.Name, &c.Email, &c.Phone, &c.GSTIN, &c.State,
		&c.Address, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch customer %d: %w", id, err)
	}
	return &c, nil
}

func listCustomers(ctx context.Context, q querier, businessID int) ([]core.Customer, error) {
	rows, err := q.Query(ctx, `
		SELECT id, business_id, name, email, phone, gstin, state, address, is_active, created_at
		FROM customers WHERE business_id = $1 ORDER BY id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Email, &c.Phone, &c.GSTIN,
			&c.State, &c.Address, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func setCustomerActive(ctx context.Context, q querier, id int) error {
	tag, err := q.Exec(ctx, "UPDATE customers SET is_active = true WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("activate customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func createProduct(ctx context.Context, q querier, p *core.Product) (*core.Product, error) {
	np := *p
	err := q.QueryRow(ctx, `
		INSERT INTO products (business_id, name, hsn_code, unit, unit_price, gst_rate, stock_quantity, min_stock_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.BusinessID, p.Name, p.HSNCode, p.Unit, p.UnitPrice, p.GSTRate, p.StockQuantity, p.MinStockLevel).
		Scan(&np.ID, &np.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &np, nil
}

func getProduct(ctx context.Context, q querier, id int, forUpdate bool) (*core.Product, error) {
	query := `
		SELECT id, business_id, name, hsn_code, unit, unit_price, gst_rate, stock_quantity, min_stock_level, created_at
		FROM products WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var p core.Product
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.BusinessID, &p.Name, &p.HSNCode, &p.Unit,
		&p.UnitPrice, &p.GSTRate, &p.StockQuantity, &p.MinStockLevel, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	return &p, nil
}

func listProducts(ctx context.Context, q querier, businessID int) ([]core.Product, error) {
	rows, err := q.Query(ctx, `
		SELECT id, business_id, name, hsn_code, unit, unit_price, gst_rate, stock_quantity, min_stock_level, created_at
		FROM products WHERE business_id = $1 ORDER BY id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.HSNCode, &p.Unit,
			&p.UnitPrice, &p.GSTRate, &p.StockQuantity, &p.MinStockLevel, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func updateProductStock(ctx context.Context, q querier, productID, newQuantity int) error {
	tag, err := q.Exec(ctx, "UPDATE products SET stock_quantity = $1 WHERE id = $2", newQuantity, productID)
	if err != nil {
		return fmt.Errorf("update stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, core.ErrNotFound)
	}
	return nil
}

// ── Overrides ────────────────────────────────────────────────────────────────

func getOverride(ctx context.Context, q querier, customerID, productID int) (*core.CustomerPriceOverride, error) {
	var o core.CustomerPriceOverride
	err := q.QueryRow(ctx, `
		SELECT customer_id, product_id, price, updated_at
		FROM customer_price_overrides WHERE customer_id = $1 AND product_id = $2
	`, customerID, productID).Scan(&o.CustomerID, &o.ProductID, &o.Price, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("override (%d,%d): %w", customerID, productID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch override: %w", err)
	}
	return &o, nil
}

func upsertOverride(ctx context.Context, q querier, o core.CustomerPriceOverride) error {
	_, err := q.Exec(ctx, `
		INSERT INTO customer_price_overrides (customer_id, product_id, price, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
	`, o.CustomerID, o.ProductID, o.Price)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

func deleteOverride(ctx context.Context, q querier, customerID, productID int) error {
	_, err := q.Exec(ctx,
		"DELETE FROM customer_price_overrides WHERE customer_id = $1 AND product_id = $2",
		customerID, productID)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func createOrder(ctx context.Context, q querier, o *core.Order) (*core.Order, error) {
	no := *o
	err := q.QueryRow(ctx, `
		INSERT INTO orders (customer_id, business_id, status, notes, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, o.CustomerID, o.BusinessID, o.Status, o.Notes, o.TotalAmount).Scan(&no.ID, &no.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	no.Lines = append([]core.OrderLine(nil), o.Lines...)
	for i := range no.Lines {
		l := &no.Lines[i]
		l.OrderID = no.ID
		err := q.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, no.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.LineTotal).Scan(&l.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order line %d: %w", i+1, err)
		}
	}
	return &no, nil
}

func getOrder(ctx context.Context, q querier, id int) (*core.Order, error) {
	var o core.Order
	err := q.QueryRow(ctx, `
		SELECT id, customer_id, business_id, status, notes, total_amount, created_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.CustomerID, &o.BusinessID, &o.Status, &o.Notes, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch order %d: %w", id, err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, line_total
		FROM order_lines WHERE order_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l core.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}

func listOrders(ctx context.Context, q querier, businessID int) ([]core.Order, error) {
	rows, err := q.Query(ctx, `
		SELECT id, customer_id, business_id, status, notes, total_amount, created_at
		FROM orders WHERE business_id = $1 ORDER BY id DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []core.Order
	for rows.Next() {
		var o core.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.BusinessID, &o.Status,
			&o.Notes, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func updateOrderStatus(ctx context.Context, q querier, id int, status core.OrderStatus) error {
	tag, err := q.Exec(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func createInvoiceWithLines(ctx context.Context, q querier, inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	ni := *inv
	err := q.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, order_id, customer_id, business_id, invoice_date, due_date,
		                      status, subtotal, cgst_amount, sgst_amount, igst_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`, inv.InvoiceNumber, inv.OrderID, inv.CustomerID, inv.BusinessID, inv.InvoiceDate, inv.DueDate,
		inv.Status, inv.Subtotal, inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.TotalAmount, inv.Notes).
		Scan(&ni.ID, &ni.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && inv.OrderID != nil {
			return nil, fmt.Errorf("order %d already invoiced: %w", *inv.OrderID, core.ErrConflict)
		}
		return nil, fmt.Errorf("insert invoice %s: %w", inv.InvoiceNumber, err)
	}

	ni.Lines = append([]core.InvoiceLine(nil), lines...)
	for i := range ni.Lines {
		l := &ni.Lines[i]
		l.InvoiceID = ni.ID
		err := q.QueryRow(ctx, `
			INSERT INTO invoice_lines (invoice_id, product_id, product_name, hsn_code, quantity,
			                           unit_price, gst_rate, taxable_value, gst_amount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, ni.ID, l.ProductID, l.ProductName, l.HSNCode, l.Quantity,
			l.UnitPrice, l.GSTRate, l.TaxableValue, l.GSTAmount, l.LineTotal).Scan(&l.ID)
		if err != nil {
			return nil, fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}
	return &ni, nil
}

const invoiceColumns = `id, invoice_number, order_id, customer_id, business_id, invoice_date, due_date,
	status, subtotal, cgst_amount, sgst_amount, igst_amount, total_amount, notes, created_at`

func scanInvoice(row pgx.Row) (*core.Invoice, error) {
	var inv core.Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.CustomerID, &inv.BusinessID,
		&inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.Subtotal, &inv.CGSTAmount,
		&inv.SGSTAmount, &inv.IGSTAmount, &inv.TotalAmount, &inv.Notes, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func fetchInvoiceLines(ctx context.Context, q querier, invoiceID int) ([]core.InvoiceLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, product_id, product_name, hsn_code, quantity,
		       unit_price, gst_rate, taxable_value, gst_amount, line_total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []core.InvoiceLine
	for rows.Next() {
		var l core.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.ProductName, &l.HSNCode,
			&l.Quantity, &l.UnitPrice, &l.GSTRate, &l.TaxableValue, &l.GSTAmount, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func getInvoice(ctx context.Context, q querier, id int) (*core.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice %d: %w", id, err)
	}
	inv.Lines, err = fetchInvoiceLines(ctx, q, id)
	return inv, err
}

func findInvoiceByOrderID(ctx context.Context, q querier, orderID int) (*core.Invoice, error) {
	inv, err := scanInvoice(q.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE order_id = $1", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d has no invoice: %w", orderID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice for order %d: %w", orderID, err)
	}
	inv.Lines, err = fetchInvoiceLines(ctx, q, inv.ID)
	return inv, err
}

func listInvoices(ctx context.Context, q querier, businessID int) ([]core.Invoice, error) {
	rows, err := q.Query(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE business_id = $1 ORDER BY id DESC", businessID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func updateInvoiceStatus(ctx context.Context, q querier, id int, status core.InvoiceStatus) error {
	tag, err := q.Exec(ctx, "UPDATE invoices SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update invoice %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func deleteInvoiceWithLines(ctx context.Context, q querier, id int) error {
	// invoice_lines cascade on invoice deletion.
	tag, err := q.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func allocateInvoiceNumber(ctx context.Context, q querier, businessID int) (string, error) {
	var last int64
	err := q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (business_id, last_number)
		VALUES ($1, 1000)
		ON CONFLICT (business_id)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number
	`, businessID).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("allocate invoice number for business %d: %w", businessID, err)
	}
	return fmt.Sprintf("INV-%d-%04d", businessID, last), nil
}

// ── Stock ledger ─────────────────────────────────────────────────────────────

func appendStockMovement(ctx context.Context, q querier, m *core.StockMovement) (*core.StockMovement, error) {
	nm := *m
	err := q.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, movement_type, quantity, reference, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.ProductID, m.Type, m.Quantity, m.Reference, m.Notes).Scan(&nm.ID, &nm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert stock movement: %w", err)
	}
	return &nm, nil
}

func listMovements(ctx context.Context, q querier, where string, arg any) ([]core.StockMovement, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, movement_type, quantity, reference, notes, created_at
		FROM stock_movements WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []core.StockMovement
	for rows.Next() {
		var m core.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Reference, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
