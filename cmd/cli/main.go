package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/runtime/terminal"
	"github.com/qb-tools/quote-forge/pkg/services/config"
	"github.com/qb-tools/quote-forge/pkg/services/draft"
	"github.com/qb-tools/quote-forge/pkg/services/quotation"
	"github.com/qb-tools/quote-forge/pkg/store/client"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb"
	duckdbdraft "github.com/qb-tools/quote-forge/pkg/store/duckdb/draft"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb/materials"
)

const defaultRemoteHost = "http://localhost:8000/api"

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cfg, err := config.LoadApp(os.Getenv("QUOTE_FORGE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	host := defaultRemoteHost
	token := ""
	if cfg.ProfilesPath != "" {
		registry, err := config.NewRegistry(cfg.ProfilesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		profile, err := registry.GetProfile(ctx, cfg.Profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		host = profile.Host
		token = profile.Token
	}

	remote, err := client.NewQuotations(client.Config{BaseURL: host, Token: token})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DBPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	slot, err := duckdbdraft.NewStore(db, duckdbdraft.DefaultSlotKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	catalog, err := materials.NewStore(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	drafts := draft.NewStore(slot)
	drafts.Initialize(ctx, nil)
	defer drafts.Teardown()

	scheduler := draft.NewScheduler(drafts, draft.SchedulerConfig{
		Interval:     cfg.AutoSaveInterval,
		StatusWindow: cfg.StatusWindow,
	})

	controller := quotation.NewController(drafts, scheduler, remote, catalog)

	cli := terminal.NewCLI(terminal.Options{
		Service: controller,
		Output:  os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
