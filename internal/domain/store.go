package domain

import (
	"strings"
	"time"
)

// CustomerType identifies the pricing tier of a store customer.
type CustomerType string

// Supported customer types.
const (
	CustomerTypeRegular CustomerType = "regular"
	CustomerTypeVIP     CustomerType = "vip"
	CustomerTypeMember  CustomerType = "member"
)

// PaymentMethod identifies how a transaction was paid.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCredit   PaymentMethod = "credit_card"
	PaymentDebit    PaymentMethod = "debit_card"
	PaymentMobile   PaymentMethod = "mobile_pay"
	PaymentGiftCard PaymentMethod = "gift_card"
)

// TransactionStatus identifies the lifecycle state of a transaction.
type TransactionStatus string

// Transaction lifecycle states.
const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnCancelled TransactionStatus = "cancelled"
	TxnRefunded  TransactionStatus = "refunded"
)

// Product represents an item in the store catalog.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int
	Active      bool
	CreatedAt   time.Time
}

// Customer represents a store customer.
type Customer struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Type          CustomerType
	LoyaltyPoints int
	CreatedAt     time.Time
}

// FullName joins first and last name, tolerating either being empty.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// TransactionItem is one line of a transaction. Product name and unit
// price are copied at sale time so later catalog edits never rewrite
// history.
type TransactionItem struct {
	ProductID   string
	ProductName string
	UnitPrice   float64
	Quantity    int
	Discount    float64 // absolute amount off this line
}

// Total returns the line total: unit price times quantity minus the line
// discount.
func (i TransactionItem) Total() float64 {
	return i.UnitPrice*float64(i.Quantity) - i.Discount
}

// Transaction represents a sale at the register.
type Transaction struct {
	ID            string
	CustomerID    *string // nil for anonymous sales
	CashierID     string
	Items         []TransactionItem
	Subtotal      float64
	Tax           float64
	Discount      float64 // transaction-level discount on top of line discounts
	Total         float64
	PaymentMethod PaymentMethod
	Status        TransactionStatus
	CreatedAt     time.Time
}

// CalculateTotals recomputes subtotal and total from the line items.
func (t *Transaction) CalculateTotals() {
	var subtotal float64
	for _, item := range t.Items {
		subtotal += item.Total()
	}
	t.Subtotal = subtotal
	t.Total = subtotal + t.Tax - t.Discount
}

// ItemCount returns the total number of units across all lines.
func (t *Transaction) ItemCount() int {
	count := 0
	for _, item := range t.Items {
		count += item.Quantity
	}
	return count
}

// TransactionFilter narrows transaction listings. Nil fields match
// everything.
type TransactionFilter struct {
	CashierID  *string
	CustomerID *string
	Status     *TransactionStatus
	Since      *time.Time
	Page       PageRequest
}

// CreateProductRequest holds parameters for adding a catalog product.
type CreateProductRequest struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int
}

// Validate checks that the request is well-formed.
func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.SKU) == "" {
		return ErrValidation("sku is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("product name is required")
	}
	if r.Price < 0 {
		return ErrValidation("price cannot be negative")
	}
	if r.Stock < 0 {
		return ErrValidation("stock cannot be negative")
	}
	return nil
}

// CreateCustomerRequest holds parameters for registering a customer.
type CreateCustomerRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Type      CustomerType
}

// Validate checks that the request is well-formed.
func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" {
		return ErrValidation("customer name is required")
	}
	if r.Type == "" {
		r.Type = CustomerTypeRegular
	}
	switch r.Type {
	case CustomerTypeRegular, CustomerTypeVIP, CustomerTypeMember:
		return nil
	default:
		return ErrValidation("customer type must be 'regular', 'vip' or 'member'")
	}
}

// TransactionItemRequest is one requested line of a sale.
type TransactionItemRequest struct {
	ProductID string
	Quantity  int
	Discount  float64
}

// CreateTransactionRequest holds parameters for ringing up a sale.
type CreateTransactionRequest struct {
	CustomerID    *string
	Items         []TransactionItemRequest
	Tax           float64
	Discount      float64
	PaymentMethod PaymentMethod
}

// Validate checks that the request is well-formed.
func (r *CreateTransactionRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrValidation("transaction needs at least one item")
	}
	for _, item := range r.Items {
		if item.ProductID == "" {
			return ErrValidation("item product_id is required")
		}
		if item.Quantity <= 0 {
			return ErrValidation("item quantity must be positive")
		}
		if item.Discount < 0 {
			return ErrValidation("item discount cannot be negative")
		}
	}
	if r.Tax < 0 || r.Discount < 0 {
		return ErrValidation("tax and discount cannot be negative")
	}
	switch r.PaymentMethod {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentMobile, PaymentGiftCard:
		return nil
	default:
		return ErrValidation("unsupported payment method %q", r.PaymentMethod)
	}
}
