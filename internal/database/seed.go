package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invio/internal/customer"
	"github.com/MrJamesThe3rd/invio/internal/item"
)

// Seed inserts starter customers and catalog items so a fresh install has
// something to invoice against. It is a no-op once any customer exists.
func Seed(ctx context.Context, customers *customer.Service, items *item.Service) error {
	existing, err := customers.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing customers: %w", err)
	}

	if len(existing) > 0 {
		return nil
	}

	seedCustomers := []customer.CreateParams{
		{
			Name:    "Acme Corporation",
			Address: "123 Main St, Springfield",
			Phone:   "555-0101",
			Email:   "billing@acme.example",
		},
		{
			Name:    "Globex Industries",
			Address: "456 Oak Ave, Shelbyville",
			Phone:   "555-0102",
			Email:   "accounts@globex.example",
		},
	}

	for _, params := range seedCustomers {
		if _, err := customers.Create(ctx, params); err != nil {
			return fmt.Errorf("seeding customer %q: %w", params.Name, err)
		}
	}

	seedItems := []item.CreateParams{
		{
			Name:        "Standard Widget",
			Description: "General purpose widget",
			Price:       decimal.RequireFromString("25.00"),
			Stock:       100,
		},
		{
			Name:        "Premium Widget",
			Description: "Widget with extended warranty",
			Price:       decimal.RequireFromString("75.50"),
			Stock:       40,
		},
		{
			Name:        "Consulting Hour",
			Description: "Professional services, billed hourly",
			Price:       decimal.RequireFromString("120.00"),
			Stock:       0,
		},
	}

	for _, params := range seedItems {
		if _, err := items.Create(ctx, params); err != nil {
			return fmt.Errorf("seeding item %q: %w", params.Name, err)
		}
	}

	slog.Info("seeded starter data",
		"customers", len(seedCustomers), "items", len(seedItems))

	return nil
}
