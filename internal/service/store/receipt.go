package store

import (
	"context"
	"fmt"
	"strings"

	"posgate/internal/domain"
)

const receiptWidth = 31

// Receipt renders the printable receipt for a transaction.
func (s *Service) Receipt(ctx context.Context, id string) (string, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderReceipt(txn, s.storeName), nil
}

// RenderReceipt formats a transaction as a fixed-width register receipt.
// The receipt ID is "RCP-" plus the transaction ID.
func RenderReceipt(txn *domain.Transaction, storeName string) string {
	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(centerLine(storeName) + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Receipt ID: RCP-%s\n", txn.ID)
	fmt.Fprintf(&b, "Transaction ID: %s\n", txn.ID)
	fmt.Fprintf(&b, "Date: %s\n", txn.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Cashier: %s\n", txn.CashierID)
	b.WriteString(thin + "\n")

	for _, item := range txn.Items {
		name := item.ProductName
		if len(name) > 20 {
			name = name[:20]
		}
		fmt.Fprintf(&b, "%-20s %2d x %8.2f = %8.2f\n",
			name, item.Quantity, item.UnitPrice, item.Total())
	}

	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "Subtotal:           %12.2f\n", txn.Subtotal)
	fmt.Fprintf(&b, "Tax:                %12.2f\n", txn.Tax)
	fmt.Fprintf(&b, "Discount:           %12.2f\n", txn.Discount)
	fmt.Fprintf(&b, "TOTAL:              %12.2f\n", txn.Total)
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "Payment Method: %s\n", txn.PaymentMethod)
	b.WriteString(rule + "\n")
	b.WriteString(centerLine("Thank you for shopping!") + "\n")
	b.WriteString(rule + "\n")
	return b.String()
}

func centerLine(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	return strings.Repeat(" ", (receiptWidth-len(s))/2) + s
}
