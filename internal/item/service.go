package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("item not found")

type Repository interface {
	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemByName(ctx context.Context, name string) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	ListLowStock(ctx context.Context) ([]*Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int64) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	MinStock    *int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("item name is required")
	}

	minStock := int64(DefaultMinStock)
	if params.MinStock != nil {
		minStock = *params.MinStock
	}

	it := &Item{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Stock:       params.Stock,
		MinStock:    minStock,
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}

	return it, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.ListItems(ctx)
}

// ListLowStock returns catalog entries at or below their restock threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Item, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *Service) Update(ctx context.Context, it *Item) error {
	return s.repo.UpdateItem(ctx, it)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteItem(ctx, id)
}
