package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gstbilling/internal/adapters/web"
	"gstbilling/internal/store/memory"
)

type client struct {
	t     *testing.T
	srv   *httptest.Server
	token string
	http  *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()
	handler := web.NewHandler(memory.New(), "", "test-secret")
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv, http: srv.Client()}
}

// do sends a JSON request and decodes the response into out (if non-nil),
// failing the test unless the status matches.
func (c *client) do(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		c.t.Fatalf("%s %s: status %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode response: %v", err)
		}
	}
}

// signup registers a business and logs in, storing the bearer token.
func (c *client) signup(email, state string) {
	c.t.Helper()
	c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name":     "Acme Traders",
		"email":    email,
		"password": "s3cret-pass",
		"state":    state,
	}, http.StatusCreated, nil)

	var login struct {
		Token string `json:"token"`
	}
	c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": "s3cret-pass",
	}, http.StatusOK, &login)
	if login.Token == "" {
		c.t.Fatal("login returned empty token")
	}
	c.token = login.Token
}

func TestAuthRequired(t *testing.T) {
	c := newClient(t)
	c.do(http.MethodGet, "/api/customers", nil, http.StatusUnauthorized, nil)
	c.do(http.MethodGet, "/api/health", nil, http.StatusOK, nil)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]string{"email": "acme@example.com", "password": "wrong"})
	resp, err := c.http.Post(c.srv.URL+"/api/auth/login", "application/json", &buf)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestOrderToInvoiceFlow(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	var customer struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/customers", map[string]any{
		"name":  "Bangalore Retail",
		"state": "Karnataka",
	}, http.StatusCreated, &customer)

	var product struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name":           "Widget",
		"hsn_code":       "8517",
		"unit_price":     "100.00",
		"gst_rate":       "18",
		"stock_quantity": 10,
	}, http.StatusCreated, &product)

	// Rejected GST slab.
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name":       "Bad",
		"unit_price": "10.00",
		"gst_rate":   "17",
	}, http.StatusBadRequest, nil)

	// Negotiated price for this customer.
	c.do(http.MethodPut, fmt.Sprintf("/api/customers/%d/prices/%d", customer.ID, product.ID),
		map[string]any{"price": "90.00"}, http.StatusNoContent, nil)

	var order struct {
		ID          int    `json:"id"`
		TotalAmount string `json:"total_amount"`
	}
	c.do(http.MethodPost, "/api/orders", map[string]any{
		"customer_id": customer.ID,
		"lines":       []map[string]int{{"product_id": product.ID, "quantity": 2}},
	}, http.StatusCreated, &order)
	if order.TotalAmount != "180" {
		t.Errorf("order total = %s, want 180", order.TotalAmount)
	}

	var generated struct {
		Invoice struct {
			ID            int    `json:"id"`
			InvoiceNumber string `json:"invoice_number"`
			CGSTAmount    string `json:"cgst_amount"`
			SGSTAmount    string `json:"sgst_amount"`
			IGSTAmount    string `json:"igst_amount"`
		} `json:"invoice"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/invoice", order.ID), nil, http.StatusCreated, &generated)
	if generated.Invoice.InvoiceNumber != "INV-1-1000" {
		t.Errorf("invoice number = %s, want INV-1-1000", generated.Invoice.InvoiceNumber)
	}
	// Intra-state: 32.40 GST split into equal halves.
	if generated.Invoice.CGSTAmount != "16.2" || generated.Invoice.SGSTAmount != "16.2" {
		t.Errorf("split = %s/%s, want 16.2/16.2", generated.Invoice.CGSTAmount, generated.Invoice.SGSTAmount)
	}

	// A second generation conflicts.
	c.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/invoice", order.ID), nil, http.StatusConflict, nil)

	// Stock history shows the out movement.
	var movements []struct {
		Type      string `json:"type"`
		Quantity  int    `json:"quantity"`
		Reference string `json:"reference"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/products/%d/movements", product.ID), nil, http.StatusOK, &movements)
	if len(movements) != 1 || movements[0].Type != "out" || movements[0].Quantity != 2 {
		t.Errorf("movements = %+v", movements)
	}

	// Deleting the invoice restores stock and reopens the order.
	c.do(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", generated.Invoice.ID), nil, http.StatusNoContent, nil)
	var reloaded struct {
		Status string `json:"status"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil, http.StatusOK, &reloaded)
	if reloaded.Status != "pending" {
		t.Errorf("order status = %s, want pending", reloaded.Status)
	}
}

func TestCrossTenantReadsAsNotFound(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	var customer struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/customers", map[string]any{"name": "Retail"}, http.StatusCreated, &customer)

	// A second tenant cannot see the first tenant's customer.
	c.signup("other@example.com", "Kerala")
	c.do(http.MethodGet, fmt.Sprintf("/api/customers/%d", customer.ID), nil, http.StatusNotFound, nil)
}

func TestCustomerTokenPlacesOwnOrdersOnly(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	var retail, wholesale struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/customers", map[string]any{"name": "Retail"}, http.StatusCreated, &retail)
	c.do(http.MethodPost, "/api/customers", map[string]any{"name": "Wholesale"}, http.StatusCreated, &wholesale)

	var product struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Widget", "unit_price": "100.00", "gst_rate": "18",
	}, http.StatusCreated, &product)

	var issued struct {
		Token string `json:"token"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/customers/%d/token", retail.ID), nil, http.StatusCreated, &issued)

	// Switch to the customer token. Orders land on the token's customer even
	// if the body names someone else.
	c.token = issued.Token
	var order struct {
		CustomerID int `json:"customer_id"`
	}
	c.do(http.MethodPost, "/api/orders", map[string]any{
		"customer_id": wholesale.ID,
		"lines":       []map[string]int{{"product_id": product.ID, "quantity": 1}},
	}, http.StatusCreated, &order)
	if order.CustomerID != retail.ID {
		t.Errorf("order customer = %d, want %d", order.CustomerID, retail.ID)
	}

	// Admin surfaces are off limits for customer tokens.
	c.do(http.MethodGet, "/api/invoices", nil, http.StatusForbidden, nil)
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Sneaky", "unit_price": "1.00", "gst_rate": "0",
	}, http.StatusForbidden, nil)
}

func TestLowStockListing(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	c.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Plenty", "unit_price": "10.00", "gst_rate": "5",
		"stock_quantity": 50, "min_stock_level": 5,
	}, http.StatusCreated, nil)
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Scarce", "unit_price": "10.00", "gst_rate": "5",
		"stock_quantity": 2, "min_stock_level": 5,
	}, http.StatusCreated, nil)

	var low []struct {
		Name string `json:"name"`
	}
	c.do(http.MethodGet, "/api/products/low-stock", nil, http.StatusOK, &low)
	if len(low) != 1 || low[0].Name != "Scarce" {
		t.Errorf("low stock = %+v, want just Scarce", low)
	}
}

func TestInvalidTransitionMapsTo422(t *testing.T) {
	c := newClient(t)
	c.signup("acme@example.com", "Karnataka")

	var customer struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/customers", map[string]any{"name": "Retail"}, http.StatusCreated, &customer)
	var product struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/products", map[string]any{
		"name": "Widget", "unit_price": "100.00", "gst_rate": "18",
	}, http.StatusCreated, &product)

	var order struct {
		ID int `json:"id"`
	}
	c.do(http.MethodPost, "/api/orders", map[string]any{
		"customer_id": customer.ID,
		"lines":       []map[string]int{{"product_id": product.ID, "quantity": 1}},
	}, http.StatusCreated, &order)

	c.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/status", order.ID),
		map[string]string{"status": "completed"}, http.StatusUnprocessableEntity, nil)
}
