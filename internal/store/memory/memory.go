// Package memory is an in-memory implementation of core.Store, used by the
// test suite and as a DB-less dev mode when DATABASE_URL is unset.
//
// Transactions are serialized under one mutex and applied copy-on-commit:
// InTx clones the whole state, runs the function against the clone, and
// swaps it in only on success, so a failed transaction leaves no partial
// state behind.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gstbilling/internal/core"
)

type pairKey struct {
	customerID int
	productID  int
}

// state holds all records. Methods on *state never lock; locking and
// transaction scope are the Store wrapper's concern.
type state struct {
	businesses map[int]core.Business
	customers  map[int]core.Customer
	products   map[int]core.Product
	overrides  map[pairKey]core.CustomerPriceOverride
	orders     map[int]core.Order
	invoices   map[int]core.Invoice
	movements  []core.StockMovement
	invoiceSeq map[int]int
	nextID     int
}

func newState() *state {
	return &state{
		businesses: make(map[int]core.Business),
		customers:  make(map[int]core.Customer),
		products:   make(map[int]core.Product),
		overrides:  make(map[pairKey]core.CustomerPriceOverride),
		orders:     make(map[int]core.Order),
		invoices:   make(map[int]core.Invoice),
		invoiceSeq: make(map[int]int),
	}
}

func (st *state) id() int {
	st.nextID++
	return st.nextID
}

func (st *state) clone() *state {
	c := newState()
	c.nextID = st.nextID
	for k, v := range st.businesses {
		c.businesses[k] = v
	}
	for k, v := range st.customers {
		c.customers[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.overrides {
		c.overrides[k] = v
	}
	for k, v := range st.orders {
		v.Lines = append([]core.OrderLine(nil), v.Lines...)
		c.orders[k] = v
	}
	for k, v := range st.invoices {
		v.Lines = append([]core.InvoiceLine(nil), v.Lines...)
		c.invoices[k] = v
	}
	c.movements = append([]core.StockMovement(nil), st.movements...)
	for k, v := range st.invoiceSeq {
		c.invoiceSeq[k] = v
	}
	return c
}

// Store is the locked wrapper around state.
type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: newState()}
}

var _ core.Store = (*Store)(nil)

// InTx clones the state, runs fn against the clone, and commits by swapping
// the clone in. The mutex is held for the whole transaction, which also
// serializes concurrent invoice generation the way row locks do in postgres.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&txStore{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// txStore exposes a state snapshot as a core.Store without locking; it only
// lives inside one InTx call.
type txStore struct {
	state *state
}

var _ core.Store = (*txStore)(nil)

// InTx on a transaction-scoped store flattens into the enclosing one.
func (t *txStore) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	return fn(t)
}

// ── Businesses ───────────────────────────────────────────────────────────────

func (st *state) createBusiness(b *core.Business) (*core.Business, error) {
	nb := *b
	nb.ID = st.id()
	nb.CreatedAt = time.Now()
	st.businesses[nb.ID] = nb
	return &nb, nil
}

func (st *state) getBusiness(id int) (*core.Business, error) {
	b, ok := st.businesses[id]
	if !ok {
		return nil, fmt.Errorf("business %d: %w", id, core.ErrNotFound)
	}
	return &b, nil
}

func (st *state) getBusinessByEmail(email string) (*core.Business, error) {
	for _, b := range st.businesses {
		if strings.EqualFold(b.Email, email) {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("business %q: %w", email, core.ErrNotFound)
}

// ── Customers ────────────────────────────────────────────────────────────────

func (st *state) createCustomer(c *core.Customer) (*core.Customer, error) {
	nc := *c
	nc.ID = st.id()
	nc.CreatedAt = time.Now()
	st.customers[nc.ID] = nc
	return &nc, nil
}

func (st *state) getCustomer(id int) (*core.Customer, error) {
	c, ok := st.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, core.ErrNotFound)
	}
	return &c, nil
}

func (st *state) listCustomers(businessID int) ([]core.Customer, error) {
	var out []core.Customer
	for _, c := range st.customers {
		if c.BusinessID == businessID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *state) setCustomerActive(id int) error {
	c, ok := st.customers[id]
	if !ok {
		return fmt.Errorf("customer %d: %w", id, core.ErrNotFound)
	}
	c.IsActive = true
	st.customers[id] = c
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (st *state) createProduct(p *core.Product) (*core.Product, error) {
	np := *p
	np.ID = st.id()
	np.CreatedAt = time.Now()
	st.products[np.ID] = np
	return &np, nil
}

func (st *state) getProduct(id int) (*core.Product, error) {
	p, ok := st.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, core.ErrNotFound)
	}
	return &p, nil
}

func (st *state) listProducts(businessID int) ([]core.Product, error) {
	var out []core.Product
	for _, p := range st.products {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *state) updateProductStock(productID, newQuantity int) error {
	p, ok := st.products[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, core.ErrNotFound)
	}
	p.StockQuantity = newQuantity
	st.products[productID] = p
	return nil
}

// ── Overrides ────────────────────────────────────────────────────────────────

func (st *state) getOverride(customerID, productID int) (*core.CustomerPriceOverride, error) {
	o, ok := st.overrides[pairKey{customerID, productID}]
	if !ok {
		return nil, fmt.Errorf("override (%d,%d): %w", customerID, productID, core.ErrNotFound)
	}
	return &o, nil
}

func (st *state) upsertOverride(o core.CustomerPriceOverride) error {
	o.UpdatedAt = time.Now()
	st.overrides[pairKey{o.CustomerID, o.ProductID}] = o
	return nil
}

func (st *state) deleteOverride(customerID, productID int) error {
	delete(st.overrides, pairKey{customerID, productID})
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (st *state) createOrder(o *core.Order) (*core.Order, error) {
	no := *o
	no.ID = st.id()
	no.CreatedAt = time.Now()
	no.Lines = append([]core.OrderLine(nil), o.Lines...)
	for i := range no.Lines {
		no.Lines[i].ID = st.id()
		no.Lines[i].OrderID = no.ID
	}
	st.orders[no.ID] = no
	out := no
	out.Lines = append([]core.OrderLine(nil), no.Lines...)
	return &out, nil
}

func (st *state) getOrder(id int) (*core.Order, error) {
	o, ok := st.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, core.ErrNotFound)
	}
	o.Lines = append([]core.OrderLine(nil), o.Lines...)
	return &o, nil
}

func (st *state) listOrders(businessID int) ([]core.Order, error) {
	var out []core.Order
	for _, o := range st.orders {
		if o.BusinessID == businessID {
			o.Lines = append([]core.OrderLine(nil), o.Lines...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (st *state) updateOrderStatus(id int, status core.OrderStatus) error {
	o, ok := st.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, core.ErrNotFound)
	}
	o.Status = status
	st.orders[id] = o
	return nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func (st *state) createInvoiceWithLines(inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	if inv.OrderID != nil {
		for _, existing := range st.invoices {
			if existing.OrderID != nil && *existing.OrderID == *inv.OrderID {
				return nil, fmt.Errorf("order %d already has invoice %s: %w",
					*inv.OrderID, existing.InvoiceNumber, core.ErrConflict)
			}
		}
	}

	ni := *inv
	ni.ID = st.id()
	ni.CreatedAt = time.Now()
	ni.Lines = append([]core.InvoiceLine(nil), lines...)
	for i := range ni.Lines {
		ni.Lines[i].ID = st.id()
		ni.Lines[i].InvoiceID = ni.ID
	}
	st.invoices[ni.ID] = ni
	out := ni
	out.Lines = append([]core.InvoiceLine(nil), ni.Lines...)
	return &out, nil
}

func (st *state) getInvoice(id int) (*core.Invoice, error) {
	inv, ok := st.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	inv.Lines = append([]core.InvoiceLine(nil), inv.Lines...)
	return &inv, nil
}

func (st *state) findInvoiceByOrderID(orderID int) (*core.Invoice, error) {
	for _, inv := range st.invoices {
		if inv.OrderID != nil && *inv.OrderID == orderID {
			inv.Lines = append([]core.InvoiceLine(nil), inv.Lines...)
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("order %d has no invoice: %w", orderID, core.ErrNotFound)
}

func (st *state) listInvoices(businessID int) ([]core.Invoice, error) {
	var out []core.Invoice
	for _, inv := range st.invoices {
		if inv.BusinessID == businessID {
			inv.Lines = append([]core.InvoiceLine(nil), inv.Lines...)
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (st *state) updateInvoiceStatus(id int, status core.InvoiceStatus) error {
	inv, ok := st.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	inv.Status = status
	st.invoices[id] = inv
	return nil
}

func (st *state) deleteInvoiceWithLines(id int) error {
	if _, ok := st.invoices[id]; !ok {
		return fmt.Errorf("invoice %d: %w", id, core.ErrNotFound)
	}
	delete(st.invoices, id)
	return nil
}

func (st *state) allocateInvoiceNumber(businessID int) (string, error) {
	last, ok := st.invoiceSeq[businessID]
	next := 1000
	if ok {
		next = last + 1
	}
	st.invoiceSeq[businessID] = next
	return fmt.Sprintf("INV-%d-%04d", businessID, next), nil
}

// ── Stock ledger ─────────────────────────────────────────────────────────────

func (st *state) appendStockMovement(m *core.StockMovement) (*core.StockMovement, error) {
	nm := *m
	nm.ID = st.id()
	nm.CreatedAt = time.Now()
	st.movements = append(st.movements, nm)
	return &nm, nil
}

func (st *state) listMovementsByProduct(productID int) ([]core.StockMovement, error) {
	var out []core.StockMovement
	for _, m := range st.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (st *state) listMovementsByReference(reference string) ([]core.StockMovement, error) {
	var out []core.StockMovement
	for _, m := range st.movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}
