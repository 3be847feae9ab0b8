package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posgate/internal/domain"
)

func saleRequest(productID string, qty int) domain.CreateTransactionRequest {
	return domain.CreateTransactionRequest{
		Items:         []domain.TransactionItemRequest{{ProductID: productID, Quantity: qty}},
		Tax:           0.60,
		PaymentMethod: domain.PaymentCash,
	}
}

func TestService_RecordSale(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	espresso := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	croissant := f.addProduct(t, "CRO-01", "Croissant", 3.00, 5)

	txn, err := f.svc.RecordSale(ctx, "u-cash", domain.CreateTransactionRequest{
		Items: []domain.TransactionItemRequest{
			{ProductID: espresso.ID, Quantity: 2},
			{ProductID: croissant.ID, Quantity: 1, Discount: 0.50},
		},
		Tax:           0.60,
		PaymentMethod: domain.PaymentCredit,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TxnCompleted, txn.Status)
	assert.Equal(t, "u-cash", txn.CashierID)
	assert.InDelta(t, 7.50, txn.Subtotal, 0.001)
	assert.InDelta(t, 8.10, txn.Total, 0.001)
	assert.Equal(t, 8, f.stockOf(t, espresso.ID))
	assert.Equal(t, 4, f.stockOf(t, croissant.ID))

	// Names and prices were copied at sale time.
	got, err := f.svc.Transaction(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Espresso", got.Items[0].ProductName)
	assert.InDelta(t, 2.50, got.Items[0].UnitPrice, 0.001)
}

func TestService_RecordSale_AwardsLoyalty(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	c := f.addCustomer(t, "Ada", "Miller")

	req := saleRequest(p.ID, 3)
	req.CustomerID = &c.ID
	txn, err := f.svc.RecordSale(ctx, "u-cash", req)
	require.NoError(t, err)

	// One point per whole unit of the total (7.50 + 0.60 tax = 8.10).
	got, err := f.svc.Customer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int(txn.Total), got.LoyaltyPoints)
	assert.Equal(t, 8, got.LoyaltyPoints)
}

func TestService_RecordSale_Denied(t *testing.T) {
	f := setupStore(t)
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)

	_, err := f.svc.RecordSale(adminCtx(), "u-clerk", saleRequest(p.ID, 1))
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, 10, f.stockOf(t, p.ID))

	action := "RECORD_SALE"
	status := "DENIED"
	_, total, err := f.audit.List(context.Background(), domain.AuditFilter{
		Action: &action, Status: &status, Page: domain.PageRequest{MaxResults: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestService_RecordSale_InsufficientStock(t *testing.T) {
	f := setupStore(t)
	espresso := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	croissant := f.addProduct(t, "CRO-01", "Croissant", 3.00, 2)

	_, err := f.svc.RecordSale(adminCtx(), "u-cash", domain.CreateTransactionRequest{
		Items: []domain.TransactionItemRequest{
			{ProductID: espresso.ID, Quantity: 4},
			{ProductID: croissant.ID, Quantity: 3},
		},
		PaymentMethod: domain.PaymentCash,
	})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The espresso decrement was rolled back and nothing was recorded.
	assert.Equal(t, 10, f.stockOf(t, espresso.ID))
	assert.Equal(t, 2, f.stockOf(t, croissant.ID))
	txns, _, err := f.svc.Transactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestService_RecordSale_DiscontinuedProduct(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	_, err := f.svc.SetProductActive(ctx, p.ID, false)
	require.NoError(t, err)

	_, err = f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 1))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	// Reactivated products sell again.
	_, err = f.svc.SetProductActive(ctx, p.ID, true)
	require.NoError(t, err)
	_, err = f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 1))
	assert.NoError(t, err)
}

func TestService_RecordSale_UnknownCustomer(t *testing.T) {
	f := setupStore(t)
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)

	ghost := "c-ghost"
	req := saleRequest(p.ID, 1)
	req.CustomerID = &ghost
	_, err := f.svc.RecordSale(adminCtx(), "u-cash", req)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestService_RecordSale_ExcessDiscount(t *testing.T) {
	f := setupStore(t)
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)

	req := saleRequest(p.ID, 1)
	req.Tax = 0
	req.Discount = 5.00
	_, err := f.svc.RecordSale(adminCtx(), "u-cash", req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestService_RefundTransaction(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	txn, err := f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 4))
	require.NoError(t, err)
	require.Equal(t, 6, f.stockOf(t, p.ID))

	got, err := f.svc.RefundTransaction(ctx, "u-cash", txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnRefunded, got.Status)
	assert.Equal(t, 10, f.stockOf(t, p.ID))

	// A refunded transaction cannot be refunded again.
	_, err = f.svc.RefundTransaction(ctx, "u-cash", txn.ID)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestService_RefundTransaction_Denied(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	txn, err := f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 1))
	require.NoError(t, err)

	_, err = f.svc.RefundTransaction(ctx, "u-clerk", txn.ID)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	got, err := f.svc.Transaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnCompleted, got.Status)
}

func TestService_Transactions_Filter(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 100)

	first, err := f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 1))
	require.NoError(t, err)
	_, err = f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 2))
	require.NoError(t, err)
	_, err = f.svc.RefundTransaction(ctx, "u-cash", first.ID)
	require.NoError(t, err)

	status := domain.TxnRefunded
	txns, total, err := f.svc.Transactions(ctx, domain.TransactionFilter{
		Status: &status, Page: domain.PageRequest{MaxResults: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, txns, 1)
	assert.Equal(t, first.ID, txns[0].ID)
}

func TestService_Receipt(t *testing.T) {
	f := setupStore(t)
	ctx := adminCtx()
	p := f.addProduct(t, "ESP-01", "Espresso", 2.50, 10)
	txn, err := f.svc.RecordSale(ctx, "u-cash", saleRequest(p.ID, 2))
	require.NoError(t, err)

	text, err := f.svc.Receipt(ctx, txn.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "POSGATE MARKET")
	assert.Contains(t, text, "Receipt ID: RCP-"+txn.ID)
	assert.Contains(t, text, "Cashier: u-cash")
	assert.Contains(t, text, "Espresso              2 x     2.50 =     5.00")
	assert.Contains(t, text, "TOTAL:                      5.60")
	assert.Contains(t, text, "Payment Method: cash")
	assert.Contains(t, text, "Thank you for shopping!")
}
