package store

import (
	"context"
	"time"

	"posgate/internal/domain"
)

// RecordSale rings up a sale for the given cashier. The cashier must hold
// pos.sale. Product names and unit prices are copied into the transaction
// at sale time and stock is decremented per line; if any line runs short
// the earlier decrements are undone and nothing is recorded.
func (s *Service) RecordSale(ctx context.Context, cashierID string, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.checker.Check(ctx, cashierID, domain.PermSale) {
		msg := "missing " + domain.PermSale
		s.insertAudit(ctx, domain.CallerName(ctx), "RECORD_SALE", cashierID, "DENIED", &msg)
		return nil, domain.ErrAccessDenied("user %q may not record sales", cashierID)
	}
	if req.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	items := make([]domain.TransactionItem, 0, len(req.Items))
	for _, line := range req.Items {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, domain.ErrValidation("product %q is not for sale", p.SKU)
		}
		items = append(items, domain.TransactionItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
		})
	}

	for i, line := range req.Items {
		if err := s.products.UpdateStock(ctx, line.ProductID, -line.Quantity); err != nil {
			s.restock(ctx, req.Items[:i])
			return nil, err
		}
	}

	txn := &domain.Transaction{
		ID:            domain.NewID(),
		CustomerID:    req.CustomerID,
		CashierID:     cashierID,
		Items:         items,
		Tax:           req.Tax,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.TxnCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	txn.CalculateTotals()
	if txn.Total < 0 {
		s.restock(ctx, req.Items)
		return nil, domain.ErrValidation("discounts exceed the transaction amount")
	}

	if err := s.transactions.Insert(ctx, txn); err != nil {
		s.restock(ctx, req.Items)
		return nil, err
	}

	if req.CustomerID != nil {
		if points := int(txn.Total); points > 0 {
			// The sale is already durable; a failed award only costs points.
			if err := s.customers.AddLoyaltyPoints(ctx, *req.CustomerID, points); err != nil {
				s.logger.Warn("loyalty award failed",
					"customer_id", *req.CustomerID, "points", points, "error", err)
			}
		}
	}

	s.logAudit(ctx, "RECORD_SALE", txn.ID)
	return txn, nil
}

// restock undoes stock decrements for the given request lines.
func (s *Service) restock(ctx context.Context, lines []domain.TransactionItemRequest) {
	for _, line := range lines {
		if err := s.products.UpdateStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.Error("restock failed", "product_id", line.ProductID, "error", err)
		}
	}
}

// Transaction returns a transaction with its line items.
func (s *Service) Transaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

// Transactions returns a filtered page of transactions, newest first.
func (s *Service) Transactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	return s.transactions.List(ctx, filter)
}

// RefundTransaction reverses a completed sale. The cashier must hold
// pos.refund. Sold quantities go back into stock; lines whose product has
// since been removed are logged and skipped.
func (s *Service) RefundTransaction(ctx context.Context, cashierID, id string) (*domain.Transaction, error) {
	if !s.checker.Check(ctx, cashierID, domain.PermRefund) {
		msg := "missing " + domain.PermRefund
		s.insertAudit(ctx, domain.CallerName(ctx), "REFUND_SALE", id, "DENIED", &msg)
		return nil, domain.ErrAccessDenied("user %q may not refund sales", cashierID)
	}
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TxnCompleted {
		return nil, domain.ErrConflict("transaction %q is %s and cannot be refunded", id, txn.Status)
	}
	if err := s.transactions.UpdateStatus(ctx, id, domain.TxnRefunded); err != nil {
		return nil, err
	}
	for _, item := range txn.Items {
		if err := s.products.UpdateStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("restock on refund failed",
				"transaction_id", id, "product_id", item.ProductID, "error", err)
		}
	}
	txn.Status = domain.TxnRefunded
	s.logAudit(ctx, "REFUND_SALE", id)
	return txn, nil
}
