// Command seed pushes the built-in sample dataset into the hosted store.
// It is meant for bootstrapping a fresh dataset for local development.
package main

import (
	"context"

	"github.com/tigranv/moneta/internal/config"
	"github.com/tigranv/moneta/internal/logger"
	"github.com/tigranv/moneta/internal/store"
	storebq "github.com/tigranv/moneta/internal/store/bigquery"
	"github.com/tigranv/moneta/internal/store/memory"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	client, err := storebq.New(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create data service client")
	}
	defer client.Close()

	sample := memory.NewSampleStore()
	if err := copyAll(ctx, sample, client); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().
		Str("project", cfg.ProjectID).
		Str("dataset", cfg.Dataset).
		Msg("Sample dataset seeded")
}

func copyAll(ctx context.Context, src store.RecordSource, dst store.MutationSink) error {
	accounts, err := src.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, row := range accounts {
		if err := dst.InsertAccount(ctx, row); err != nil {
			return err
		}
	}

	categories, err := src.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, row := range categories {
		if err := dst.InsertCategory(ctx, row); err != nil {
			return err
		}
	}

	people, err := src.ListPeople(ctx)
	if err != nil {
		return err
	}
	for _, row := range people {
		if err := dst.InsertPerson(ctx, row); err != nil {
			return err
		}
	}

	shops, err := src.ListShops(ctx)
	if err != nil {
		return err
	}
	for _, row := range shops {
		if err := dst.InsertShop(ctx, row); err != nil {
			return err
		}
	}

	txs, err := src.ListTransactions(ctx, store.TransactionFilter{})
	if err != nil {
		return err
	}
	for _, row := range txs {
		if err := dst.InsertTransaction(ctx, row); err != nil {
			return err
		}
	}

	return nil
}
