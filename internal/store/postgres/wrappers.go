package postgres

import (
	"context"

	"gstbilling/internal/core"
)

// Store methods run against the pool; txStore methods run against the open
// transaction. The only behavioral difference beyond scope is GetProduct:
// inside a transaction it locks the row (FOR UPDATE) so concurrent stock
// movements on the same product serialize.

func (s *Store) CreateBusiness(ctx context.Context, b *core.Business) (*core.Business, error) {
	return createBusiness(ctx, s.pool, b)
}

func (s *Store) GetBusiness(ctx context.Context, id int) (*core.Business, error) {
	return getBusiness(ctx, s.pool, id)
}

func (s *Store) GetBusinessByEmail(ctx context.Context, email string) (*core.Business, error) {
	return getBusinessByEmail(ctx, s.pool, email)
}

func (s *Store) CreateCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	return createCustomer(ctx, s.pool, c)
}

func (s *Store) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return getCustomer(ctx, s.pool, id)
}

func (s *Store) ListCustomers(ctx context.Context, businessID int) ([]core.Customer, error) {
	return listCustomers(ctx, s.pool, businessID)
}

func (s *Store) SetCustomerActive(ctx context.Context, id int) error {
	return setCustomerActive(ctx, s.pool, id)
}

func (s *Store) CreateProduct(ctx context.Context, p *core.Product) (*core.Product, error) {
	return createProduct(ctx, s.pool, p)
}

func (s *Store) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return getProduct(ctx, s.pool, id, false)
}

func (s *Store) ListProducts(ctx context.Context, businessID int) ([]core.Product, error) {
	return listProducts(ctx, s.pool, businessID)
}

func (s *Store) UpdateProductStock(ctx context.Context, productID, newQuantity int) error {
	return updateProductStock(ctx, s.pool, productID, newQuantity)
}

func (s *Store) GetOverride(ctx context.Context, customerID, productID int) (*core.CustomerPriceOverride, error) {
	return getOverride(ctx, s.pool, customerID, productID)
}

func (s *Store) UpsertOverride(ctx context.Context, o core.CustomerPriceOverride) error {
	return upsertOverride(ctx, s.pool, o)
}

func (s *Store) DeleteOverride(ctx context.Context, customerID, productID int) error {
	return deleteOverride(ctx, s.pool, customerID, productID)
}

func (s *Store) CreateOrder(ctx context.Context, o *core.Order) (*core.Order, error) {
	return createOrder(ctx, s.pool, o)
}

func (s *Store) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	return getOrder(ctx, s.pool, id)
}

func (s *Store) ListOrders(ctx context.Context, businessID int) ([]core.Order, error) {
	return listOrders(ctx, s.pool, businessID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	return updateOrderStatus(ctx, s.pool, id, status)
}

func (s *Store) CreateInvoiceWithLines(ctx context.Context, inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	return createInvoiceWithLines(ctx, s.pool, inv, lines)
}

func (s *Store) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	return getInvoice(ctx, s.pool, id)
}

func (s *Store) FindInvoiceByOrderID(ctx context.Context, orderID int) (*core.Invoice, error) {
	return findInvoiceByOrderID(ctx, s.pool, orderID)
}

func (s *Store) ListInvoices(ctx context.Context, businessID int) ([]core.Invoice, error) {
	return listInvoices(ctx, s.pool, businessID)
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int, status core.InvoiceStatus) error {
	return updateInvoiceStatus(ctx, s.pool, id, status)
}

func (s *Store) DeleteInvoiceWithLines(ctx context.Context, id int) error {
	return deleteInvoiceWithLines(ctx, s.pool, id)
}

func (s *Store) AllocateInvoiceNumber(ctx context.Context, businessID int) (string, error) {
	return allocateInvoiceNumber(ctx, s.pool, businessID)
}

func (s *Store) AppendStockMovement(ctx context.Context, m *core.StockMovement) (*core.StockMovement, error) {
	return appendStockMovement(ctx, s.pool, m)
}

func (s *Store) ListMovementsByProduct(ctx context.Context, productID int) ([]core.StockMovement, error) {
	return listMovements(ctx, s.pool, "product_id = $1", productID)
}

func (s *Store) ListMovementsByReference(ctx context.Context, reference string) ([]core.StockMovement, error) {
	return listMovements(ctx, s.pool, "reference = $1", reference)
}

// txStore wrappers

func (t *txStore) CreateBusiness(ctx context.Context, b *core.Business) (*core.Business, error) {
	return createBusiness(ctx, t.tx, b)
}

func (t *txStore) GetBusiness(ctx context.Context, id int) (*core.Business, error) {
	return getBusiness(ctx, t.tx, id)
}

func (t *txStore) GetBusinessByEmail(ctx context.Context, email string) (*core.Business, error) {
	return getBusinessByEmail(ctx, t.tx, email)
}

func (t *txStore) CreateCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	return createCustomer(ctx, t.tx, c)
}

func (t *txStore) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return getCustomer(ctx, t.tx, id)
}

func (t *txStore) ListCustomers(ctx context.Context, businessID int) ([]core.Customer, error) {
	return listCustomers(ctx, t.tx, businessID)
}

func (t *txStore) SetCustomerActive(ctx context.Context, id int) error {
	return setCustomerActive(ctx, t.tx, id)
}

func (t *txStore) CreateProduct(ctx context.Context, p *core.Product) (*core.Product, error) {
	return createProduct(ctx, t.tx, p)
}

func (t *txStore) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return getProduct(ctx, t.tx, id, true)
}

func (t *txStore) ListProducts(ctx context.Context, businessID int) ([]core.Product, error) {
	return listProducts(ctx, t.tx, businessID)
}

func (t *txStore) UpdateProductStock(ctx context.Context, productID, newQuantity int) error {
	return updateProductStock(ctx, t.tx, productID, newQuantity)
}

func (t *txStore) GetOverride(ctx context.Context, customerID, productID int) (*core.CustomerPriceOverride, error) {
	return getOverride(ctx, t.tx, customerID, productID)
}

func (t *txStore) UpsertOverride(ctx context.Context, o core.CustomerPriceOverride) error {
	return upsertOverride(ctx, t.tx, o)
}

func (t *txStore) DeleteOverride(ctx context.Context, customerID, productID int) error {
	return deleteOverride(ctx, t.tx, customerID, productID)
}

func (t *txStore) CreateOrder(ctx context.Context, o *core.Order) (*core.Order, error) {
	return createOrder(ctx, t.tx, o)
}

func (t *txStore) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	return getOrder(ctx, t.tx, id)
}

func (t *txStore) ListOrders(ctx context.Context, businessID int) ([]core.Order, error) {
	return listOrders(ctx, t.tx, businessID)
}

func (t *txStore) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	return updateOrderStatus(ctx, t.tx, id, status)
}

func (t *txStore) CreateInvoiceWithLines(ctx context.Context, inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	return createInvoiceWithLines(ctx, t.tx, inv, lines)
}

func (t *txStore) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	return getInvoice(ctx, t.tx, id)
}

func (t *txStore) FindInvoiceByOrderID(ctx context.Context, orderID int) (*core.Invoice, error) {
	return findInvoiceByOrderID(ctx, t.tx, orderID)
}

func (t *txStore) ListInvoices(ctx context.Context, businessID int) ([]core.Invoice, error) {
	return listInvoices(ctx, t.tx, businessID)
}

func (t *txStore) UpdateInvoiceStatus(ctx context.Context, id int, status core.InvoiceStatus) error {
	return updateInvoiceStatus(ctx, t.tx, id, status)
}

func (t *txStore) DeleteInvoiceWithLines(ctx context.Context, id int) error {
	return deleteInvoiceWithLines(ctx, t.tx, id)
}

func (t *txStore) AllocateInvoiceNumber(ctx context.Context, businessID int) (string, error) {
	return allocateInvoiceNumber(ctx, t.tx, businessID)
}

func (t *txStore) AppendStockMovement(ctx context.Context, m *core.StockMovement) (*core.StockMovement, error) {
	return appendStockMovement(ctx, t.tx, m)
}

func (t *txStore) ListMovementsByProduct(ctx context.Context, productID int) ([]core.StockMovement, error) {
	return listMovements(ctx, t.tx, "product_id = $1", productID)
}

func (t *txStore) ListMovementsByReference(ctx context.Context, reference string) ([]core.StockMovement, error) {
	return listMovements(ctx, t.tx, "reference = $1", reference)
}
