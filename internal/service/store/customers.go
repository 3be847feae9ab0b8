package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"posgate/internal/domain"
)

// AddCustomer registers a store customer.
func (s *Service) AddCustomer(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c := &domain.Customer{
		ID:        domain.NewID(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	if c.Type == "" {
		c.Type = domain.CustomerTypeRegular
	}
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, err
	}
	s.logAudit(ctx, "ADD_CUSTOMER", c.ID)
	return c, nil
}

// Customer returns a customer by ID.
func (s *Service) Customer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// Customers returns a page of customers ordered by last name.
func (s *Service) Customers(ctx context.Context, page domain.PageRequest) ([]domain.Customer, int64, error) {
	return s.customers.List(ctx, page)
}

// AwardLoyaltyPoints adds points to a customer's balance.
func (s *Service) AwardLoyaltyPoints(ctx context.Context, id string, points int) (*domain.Customer, error) {
	if points <= 0 {
		return nil, domain.ErrValidation("points must be positive")
	}
	if err := s.customers.AddLoyaltyPoints(ctx, id, points); err != nil {
		return nil, err
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "AWARD_LOYALTY", fmt.Sprintf("%s:%d", id, points))
	return c, nil
}
