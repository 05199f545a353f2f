package memory

import (
	"context"

	"gstbilling/internal/core"
)

// Store methods take the mutex; txStore methods run lock-free inside the
// transaction that already holds it.

func (s *Store) CreateBusiness(ctx context.Context, b *core.Business) (*core.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createBusiness(b)
}

func (s *Store) GetBusiness(ctx context.Context, id int) (*core.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getBusiness(id)
}

func (s *Store) GetBusinessByEmail(ctx context.Context, email string) (*core.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getBusinessByEmail(email)
}

func (s *Store) CreateCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createCustomer(c)
}

func (s *Store) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getCustomer(id)
}

func (s *Store) ListCustomers(ctx context.Context, businessID int) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listCustomers(businessID)
}

func (s *Store) SetCustomerActive(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.setCustomerActive(id)
}

func (s *Store) CreateProduct(ctx context.Context, p *core.Product) (*core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createProduct(p)
}

func (s *Store) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getProduct(id)
}

func (s *Store) ListProducts(ctx context.Context, businessID int) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listProducts(businessID)
}

func (s *Store) UpdateProductStock(ctx context.Context, productID, newQuantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.updateProductStock(productID, newQuantity)
}

func (s *Store) GetOverride(ctx context.Context, customerID, productID int) (*core.CustomerPriceOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getOverride(customerID, productID)
}

func (s *Store) UpsertOverride(ctx context.Context, o core.CustomerPriceOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.upsertOverride(o)
}

func (s *Store) DeleteOverride(ctx context.Context, customerID, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteOverride(customerID, productID)
}

func (s *Store) CreateOrder(ctx context.Context, o *core.Order) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createOrder(o)
}

func (s *Store) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getOrder(id)
}

func (s *Store) ListOrders(ctx context.Context, businessID int) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listOrders(businessID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.updateOrderStatus(id, status)
}

func (s *Store) CreateInvoiceWithLines(ctx context.Context, inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createInvoiceWithLines(inv, lines)
}

func (s *Store) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getInvoice(id)
}

func (s *Store) FindInvoiceByOrderID(ctx context.Context, orderID int) (*core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.findInvoiceByOrderID(orderID)
}

func (s *Store) ListInvoices(ctx context.Context, businessID int) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listInvoices(businessID)
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int, status core.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.updateInvoiceStatus(id, status)
}

func (s *Store) DeleteInvoiceWithLines(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteInvoiceWithLines(id)
}

func (s *Store) AllocateInvoiceNumber(ctx context.Context, businessID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.allocateInvoiceNumber(businessID)
}

func (s *Store) AppendStockMovement(ctx context.Context, m *core.StockMovement) (*core.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.appendStockMovement(m)
}

func (s *Store) ListMovementsByProduct(ctx context.Context, productID int) ([]core.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listMovementsByProduct(productID)
}

func (s *Store) ListMovementsByReference(ctx context.Context, reference string) ([]core.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listMovementsByReference(reference)
}

// txStore wrappers

func (t *txStore) CreateBusiness(ctx context.Context, b *core.Business) (*core.Business, error) {
	return t.state.createBusiness(b)
}

func (t *txStore) GetBusiness(ctx context.Context, id int) (*core.Business, error) {
	return t.state.getBusiness(id)
}

func (t *txStore) GetBusinessByEmail(ctx context.Context, email string) (*core.Business, error) {
	return t.state.getBusinessByEmail(email)
}

func (t *txStore) CreateCustomer(ctx context.Context, c *core.Customer) (*core.Customer, error) {
	return t.state.createCustomer(c)
}

func (t *txStore) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return t.state.getCustomer(id)
}

func (t *txStore) ListCustomers(ctx context.Context, businessID int) ([]core.Customer, error) {
	return t.state.listCustomers(businessID)
}

func (t *txStore) SetCustomerActive(ctx context.Context, id int) error {
	return t.state.setCustomerActive(id)
}

func (t *txStore) CreateProduct(ctx context.Context, p *core.Product) (*core.Product, error) {
	return t.state.createProduct(p)
}

func (t *txStore) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return t.state.getProduct(id)
}

func (t *txStore) ListProducts(ctx context.Context, businessID int) ([]core.Product, error) {
	return t.state.listProducts(businessID)
}

func (t *txStore) UpdateProductStock(ctx context.Context, productID, newQuantity int) error {
	return t.state.updateProductStock(productID, newQuantity)
}

func (t *txStore) GetOverride(ctx context.Context, customerID, productID int) (*core.CustomerPriceOverride, error) {
	return t.state.getOverride(customerID, productID)
}

func (t *txStore) UpsertOverride(ctx context.Context, o core.CustomerPriceOverride) error {
	return t.state.upsertOverride(o)
}

func (t *txStore) DeleteOverride(ctx context.Context, customerID, productID int) error {
	return t.state.deleteOverride(customerID, productID)
}

func (t *txStore) CreateOrder(ctx context.Context, o *core.Order) (*core.Order, error) {
	return t.state.createOrder(o)
}

func (t *txStore) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	return t.state.getOrder(id)
}

func (t *txStore) ListOrders(ctx context.Context, businessID int) ([]core.Order, error) {
	return t.state.listOrders(businessID)
}

func (t *txStore) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	return t.state.updateOrderStatus(id, status)
}

func (t *txStore) CreateInvoiceWithLines(ctx context.Context, inv *core.Invoice, lines []core.InvoiceLine) (*core.Invoice, error) {
	return t.state.createInvoiceWithLines(inv, lines)
}

func (t *txStore) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	return t.state.getInvoice(id)
}

func (t *txStore) FindInvoiceByOrderID(ctx context.Context, orderID int) (*core.Invoice, error) {
	return t.state.findInvoiceByOrderID(orderID)
}

func (t *txStore) ListInvoices(ctx context.Context, businessID int) ([]core.Invoice, error) {
	return t.state.listInvoices(businessID)
}

func (t *txStore) UpdateInvoiceStatus(ctx context.Context, id int, status core.InvoiceStatus) error {
	return t.state.updateInvoiceStatus(id, status)
}

func (t *txStore) DeleteInvoiceWithLines(ctx context.Context, id int) error {
	return t.state.deleteInvoiceWithLines(id)
}

func (t *txStore) AllocateInvoiceNumber(ctx context.Context, businessID int) (string, error) {
	return t.state.allocateInvoiceNumber(businessID)
}

func (t *txStore) AppendStockMovement(ctx context.Context, m *core.StockMovement) (*core.StockMovement, error) {
	return t.state.appendStockMovement(m)
}

func (t *txStore) ListMovementsByProduct(ctx context.Context, productID int) ([]core.StockMovement, error) {
	return t.state.listMovementsByProduct(productID)
}

func (t *txStore) ListMovementsByReference(ctx context.Context, reference string) ([]core.StockMovement, error) {
	return t.state.listMovementsByReference(reference)
}
