package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"posgate/internal/domain"
)

// AddProduct adds a product to the catalog. The SKU must be unused.
func (s *Service) AddProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          domain.NewID(),
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.products.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.logAudit(ctx, "ADD_PRODUCT", p.SKU)
	return p, nil
}

// Product returns a product by ID.
func (s *Service) Product(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ProductBySKU returns a product by SKU.
func (s *Service) ProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.products.GetBySKU(ctx, strings.TrimSpace(sku))
}

// Products returns a page of the catalog ordered by name.
func (s *Service) Products(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	return s.products.List(ctx, page)
}

// AdjustStock changes a product's stock by delta, which may be negative.
// Adjustments below zero stock are rejected.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	if delta == 0 {
		return nil, domain.ErrValidation("stock delta must be non-zero")
	}
	if err := s.products.UpdateStock(ctx, id, delta); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "ADJUST_STOCK", fmt.Sprintf("%s:%+d", p.SKU, delta))
	return p, nil
}

// SetProductActive marks a product sellable or discontinued. Discontinued
// products stay listed but cannot be sold.
func (s *Service) SetProductActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	if err := s.products.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	action := "DISCONTINUE_PRODUCT"
	if active {
		action = "REACTIVATE_PRODUCT"
	}
	s.logAudit(ctx, action, p.SKU)
	return p, nil
}

// RemoveProduct deletes a product from the catalog. Past transactions keep
// their copied name and price.
func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "REMOVE_PRODUCT", p.SKU)
	return nil
}
