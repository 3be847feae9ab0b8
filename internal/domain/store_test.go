package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionTotals(t *testing.T) {
	txn := &Transaction{
		Items: []TransactionItem{
			{ProductID: "p-1", ProductName: "Coffee", UnitPrice: 3.50, Quantity: 2},
			{ProductID: "p-2", ProductName: "Bagel", UnitPrice: 2.25, Quantity: 1, Discount: 0.25},
		},
		Tax:      0.72,
		Discount: 1.00,
	}
	txn.CalculateTotals()

	assert.InDelta(t, 9.00, txn.Subtotal, 0.001)
	assert.InDelta(t, 8.72, txn.Total, 0.001)
	assert.Equal(t, 3, txn.ItemCount())
}

func TestCreateTransactionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTransactionRequest
		wantErr string
	}{
		{
			name: "valid",
			req: CreateTransactionRequest{
				Items:         []TransactionItemRequest{{ProductID: "p-1", Quantity: 1}},
				PaymentMethod: PaymentCash,
			},
		},
		{
			name:    "no items",
			req:     CreateTransactionRequest{PaymentMethod: PaymentCash},
			wantErr: "at least one item",
		},
		{
			name: "zero quantity",
			req: CreateTransactionRequest{
				Items:         []TransactionItemRequest{{ProductID: "p-1", Quantity: 0}},
				PaymentMethod: PaymentCash,
			},
			wantErr: "quantity must be positive",
		},
		{
			name: "missing product",
			req: CreateTransactionRequest{
				Items:         []TransactionItemRequest{{Quantity: 1}},
				PaymentMethod: PaymentCash,
			},
			wantErr: "product_id is required",
		},
		{
			name: "bad payment method",
			req: CreateTransactionRequest{
				Items:         []TransactionItemRequest{{ProductID: "p-1", Quantity: 1}},
				PaymentMethod: "barter",
			},
			wantErr: "unsupported payment method",
		},
		{
			name: "negative discount",
			req: CreateTransactionRequest{
				Items:         []TransactionItemRequest{{ProductID: "p-1", Quantity: 1, Discount: -1}},
				PaymentMethod: PaymentCash,
			},
			wantErr: "discount cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			}
		})
	}
}

func TestCreateCustomerRequestValidate(t *testing.T) {
	req := CreateCustomerRequest{FirstName: "Jo"}
	require.NoError(t, req.Validate())
	assert.Equal(t, CustomerTypeRegular, req.Type)

	req = CreateCustomerRequest{FirstName: "Jo", Type: "platinum"}
	require.Error(t, req.Validate())

	req = CreateCustomerRequest{}
	require.Error(t, req.Validate())
}

func TestAuthFailedErrorReasons(t *testing.T) {
	err := ErrAuthFailed(AuthBadCredentials, "invalid credentials for %s", "alice")
	var authErr *AuthFailedError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthBadCredentials, authErr.Reason)
	assert.Contains(t, authErr.Message, "alice")
}
