package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invio/internal/config"
	"github.com/MrJamesThe3rd/invio/internal/customer"
	customerStore "github.com/MrJamesThe3rd/invio/internal/customer/store"
	"github.com/MrJamesThe3rd/invio/internal/database"
	invioHttp "github.com/MrJamesThe3rd/invio/internal/http"
	customerHandler "github.com/MrJamesThe3rd/invio/internal/http/customer"
	invoiceHandler "github.com/MrJamesThe3rd/invio/internal/http/invoice"
	itemHandler "github.com/MrJamesThe3rd/invio/internal/http/item"
	poHandler "github.com/MrJamesThe3rd/invio/internal/http/purchaseorder"
	quotationHandler "github.com/MrJamesThe3rd/invio/internal/http/quotation"
	"github.com/MrJamesThe3rd/invio/internal/inventory"
	"github.com/MrJamesThe3rd/invio/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invio/internal/invoice/store"
	"github.com/MrJamesThe3rd/invio/internal/item"
	itemStore "github.com/MrJamesThe3rd/invio/internal/item/store"
	"github.com/MrJamesThe3rd/invio/internal/purchaseorder"
	poStore "github.com/MrJamesThe3rd/invio/internal/purchaseorder/store"
	"github.com/MrJamesThe3rd/invio/internal/quotation"
	quotationStore "github.com/MrJamesThe3rd/invio/internal/quotation/store"
	"github.com/MrJamesThe3rd/invio/internal/sequence"
	sequenceStore "github.com/MrJamesThe3rd/invio/internal/sequence/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(cfg.ConnectionString()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		customerService = customer.NewService(customerStore.New(db))
		itemService     = item.NewService(itemStore.New(db))
		sequencer       = sequence.NewGenerator(sequenceStore.New(db))
		ledger          = inventory.NewLedger(itemStore.New(db))
	)

	var (
		invoiceService   = invoice.NewService(invoiceStore.New(db), sequencer, ledger, itemStore.New(db))
		quotationService = quotation.NewService(quotationStore.New(db), sequencer, invoiceService)
		poService        = purchaseorder.NewService(poStore.New(db), sequencer, ledger)
	)

	if cfg.App.Seed {
		if err := database.Seed(context.Background(), customerService, itemService); err != nil {
			slog.Error("failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	router := invioHttp.New(
		customerHandler.NewHandler(customerService),
		itemHandler.NewHandler(itemService),
		invoiceHandler.NewHandler(invoiceService),
		quotationHandler.NewHandler(quotationService),
		poHandler.NewHandler(poService),
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
