package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"posgate/internal/domain"
)

type productView struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func productToAPI(p *domain.Product) productView {
	return productView{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

type customerView struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Type          string    `json:"type"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
}

func customerToAPI(c *domain.Customer) customerView {
	return customerView{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		Type:          string(c.Type),
		LoyaltyPoints: c.LoyaltyPoints,
		CreatedAt:     c.CreatedAt,
	}
}

type transactionItemView struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Discount    float64 `json:"discount,omitempty"`
	Total       float64 `json:"total"`
}

type transactionView struct {
	ID            string                `json:"id"`
	CustomerID    *string               `json:"customer_id,omitempty"`
	CashierID     string                `json:"cashier_id"`
	Items         []transactionItemView `json:"items"`
	Subtotal      float64               `json:"subtotal"`
	Tax           float64               `json:"tax"`
	Discount      float64               `json:"discount"`
	Total         float64               `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	Status        string                `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
}

func transactionToAPI(t *domain.Transaction) transactionView {
	items := make([]transactionItemView, len(t.Items))
	for i, item := range t.Items {
		items[i] = transactionItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			Total:       item.Total(),
		}
	}
	return transactionView{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		CashierID:     t.CashierID,
		Items:         items,
		Subtotal:      t.Subtotal,
		Tax:           t.Tax,
		Discount:      t.Discount,
		Total:         t.Total,
		PaymentMethod: string(t.PaymentMethod),
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
	}
}

// callerUserID resolves the authenticated principal to its user ID.
// Sales and refunds are attributed to this user as the cashier.
func (h *Handler) callerUserID(r *http.Request) (string, error) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		return "", domain.ErrAuthFailed(domain.AuthUnknownUser, "no authenticated principal")
	}
	u, ok := h.directory.UserByUsername(p.Name)
	if !ok {
		return "", domain.ErrNotFound("user %q not found", p.Name)
	}
	return u.ID(), nil
}

// === Products ===

type createProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.store.AddProduct(r.Context(), domain.CreateProductRequest{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, productToAPI(p))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	// A sku= query does an exact lookup, for register scanners.
	if sku := r.URL.Query().Get("sku"); sku != "" {
		p, err := h.store.ProductBySKU(r.Context(), sku)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paginatedList{Data: []productView{productToAPI(p)}})
		return
	}
	page := pageFromRequest(r)
	products, total, err := h.store.Products(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]productView, len(products))
	for i := range products {
		out[i] = productToAPI(&products[i])
	}
	writeJSON(w, http.StatusOK, paginatedList{
		Data:          out,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productToAPI(p))
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.store.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productToAPI(p))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.store.SetProductActive(r.Context(), chi.URLParam(r, "id"), req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productToAPI(p))
}

func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Customers ===

type createCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Type      string `json:"type"`
}

func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.store.AddCustomer(r.Context(), domain.CreateCustomerRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      domain.CustomerType(req.Type),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerToAPI(c))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page := pageFromRequest(r)
	customers, total, err := h.store.Customers(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]customerView, len(customers))
	for i := range customers {
		out[i] = customerToAPI(&customers[i])
	}
	writeJSON(w, http.StatusOK, paginatedList{
		Data:          out,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Customer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToAPI(c))
}

type awardLoyaltyRequest struct {
	Points int `json:"points"`
}

func (h *Handler) AwardLoyaltyPoints(w http.ResponseWriter, r *http.Request) {
	var req awardLoyaltyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.store.AwardLoyaltyPoints(r.Context(), chi.URLParam(r, "id"), req.Points)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customerToAPI(c))
}

// === Transactions ===

type transactionItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Discount  float64 `json:"discount"`
}

type createTransactionRequest struct {
	CustomerID    *string                  `json:"customer_id"`
	Items         []transactionItemRequest `json:"items"`
	Tax           float64                  `json:"tax"`
	Discount      float64                  `json:"discount"`
	PaymentMethod string                   `json:"payment_method"`
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cashierID, err := h.callerUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]domain.TransactionItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.TransactionItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		}
	}
	txn, err := h.store.RecordSale(r.Context(), cashierID, domain.CreateTransactionRequest{
		CustomerID:    req.CustomerID,
		Items:         items,
		Tax:           req.Tax,
		Discount:      req.Discount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToAPI(txn))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{Page: pageFromRequest(r)}
	if v := q.Get("cashier_id"); v != "" {
		filter.CashierID = &v
	}
	if v := q.Get("customer_id"); v != "" {
		filter.CustomerID = &v
	}
	if v := q.Get("status"); v != "" {
		status := domain.TransactionStatus(v)
		filter.Status = &status
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, domain.ErrValidation("invalid since timestamp: %v", err))
			return
		}
		filter.Since = &since
	}
	txns, total, err := h.store.Transactions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]transactionView, len(txns))
	for i := range txns {
		out[i] = transactionToAPI(&txns[i])
	}
	writeJSON(w, http.StatusOK, paginatedList{
		Data:          out,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.store.Transaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToAPI(txn))
}

func (h *Handler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	cashierID, err := h.callerUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txn, err := h.store.RefundTransaction(r.Context(), cashierID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToAPI(txn))
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.store.Receipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt))
}
