package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/qb-tools/quote-forge/pkg/server"
	"github.com/qb-tools/quote-forge/pkg/services/config"
	"github.com/qb-tools/quote-forge/pkg/services/draft"
	"github.com/qb-tools/quote-forge/pkg/services/quotation"
	"github.com/qb-tools/quote-forge/pkg/store/client"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb"
	duckdbdraft "github.com/qb-tools/quote-forge/pkg/store/duckdb/draft"
	"github.com/qb-tools/quote-forge/pkg/store/duckdb/materials"
)

const defaultRemoteHost = "http://localhost:8000/api"

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the quotation web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the app config file (defaults apply when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadApp(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	host := defaultRemoteHost
	token := ""
	if cfg.ProfilesPath != "" {
		registry, err := config.NewRegistry(cfg.ProfilesPath)
		if err != nil {
			return fmt.Errorf("failed to load profile registry: %w", err)
		}

		profile, err := registry.GetProfile(ctx, cfg.Profile)
		if err != nil {
			return fmt.Errorf("failed to resolve profile %q: %w", cfg.Profile, err)
		}
		host = profile.Host
		token = profile.Token
		logger.Info().Str("profile", cfg.Profile).Str("host", host).Msg("using remote profile")
	}

	remote, err := client.NewQuotations(client.Config{BaseURL: host, Token: token})
	if err != nil {
		return fmt.Errorf("failed to create quotation client: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: cfg.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	slot, err := duckdbdraft.NewStore(db, duckdbdraft.DefaultSlotKey)
	if err != nil {
		return fmt.Errorf("failed to create draft slot store: %w", err)
	}

	catalog, err := materials.NewStore(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to create material catalog: %w", err)
	}

	drafts := draft.NewStore(slot)
	drafts.Initialize(ctx, nil)
	defer drafts.Teardown()

	scheduler := draft.NewScheduler(drafts, draft.SchedulerConfig{
		Interval:     cfg.AutoSaveInterval,
		StatusWindow: cfg.StatusWindow,
	}, draft.WithErrorHandler(func(err error) {
		logger.Warn().Err(err).Msg("autosave failed")
	}))

	controller := quotation.NewController(drafts, scheduler, remote, catalog)

	addr := cfg.ListenAddr
	if host, port := os.Getenv("SERVER_HOST"), os.Getenv("SERVER_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}

	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Quotations: controller,
			Logger:     logger,
		},
	})

	return api.Start()
}
