package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pbaille/toolscout/internal/api"
	"github.com/pbaille/toolscout/internal/classifier"
	"github.com/pbaille/toolscout/internal/config"
	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/pipeline"
	"github.com/pbaille/toolscout/internal/sources"
	"github.com/pbaille/toolscout/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toolscout",
		Short: "Discover, classify and catalog new AI tools",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Catalog.Driver = "sqlite"
				cfg.Catalog.Path = dbPath
			}

			logger, err = newLogger(cfg.Logging, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite catalog path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(discoverCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !lc.JSON {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// openCatalog returns a nil catalog when none is configured
func openCatalog(ctx context.Context) (store.Catalog, error) {
	if !cfg.CatalogConfigured() {
		logger.Warn("catalog not configured, writes will be skipped")
		return nil, nil
	}
	catalog, err := store.Open(ctx, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return catalog, nil
}

func newPipeline(ctx context.Context, catalog store.Catalog) *pipeline.Pipeline {
	return pipeline.New(
		cfg,
		sources.FromConfig(cfg, logger.Named("sources")),
		catalog,
		classifier.NewFromConfig(ctx, cfg, logger.Named("classifier")),
		logger.Named("pipeline"),
	)
}

func closeCatalog(c store.Catalog) {
	if c != nil {
		c.Close()
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			catalog, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeCatalog(catalog)

			if addr == "" {
				addr = cfg.Server.Addr
			}
			server := api.New(newPipeline(ctx, catalog), catalog, addr, logger.Named("api"))
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func discoverCmd() *cobra.Command {
	var (
		names []string
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run one discovery pass and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			selected := make([]domain.Source, 0, len(names))
			for _, n := range names {
				src, ok := domain.ParseSource(n)
				if !ok {
					return fmt.Errorf("unknown source %q", n)
				}
				selected = append(selected, src)
			}

			catalog, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeCatalog(catalog)

			p := newPipeline(ctx, catalog)
			if debug {
				insp, err := p.Inspect(ctx, selected)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), insp)
			}

			result, err := p.Discover(ctx, selected)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVarP(&names, "source", "s", nil, "sources to query (default all)")
	cmd.Flags().BoolVar(&debug, "debug", false, "fetch only, print raw candidates")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which sources and integrations are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			// status only reports; it does not open the catalog
			p := pipeline.New(cfg, sources.FromConfig(cfg, logger), nil, nil, logger)
			st := p.Status()
			st.Configured["catalog"] = cfg.CatalogConfigured()
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func toolsCmd() *cobra.Command {
	var category, difficulty string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List catalog tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter := store.Filter{
				Category:   domain.Category(category),
				Difficulty: domain.Difficulty(difficulty),
			}

			catalog, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeCatalog(catalog)

			tools := store.FilterTools(store.StarterTools(), filter)
			if catalog != nil {
				if tools, err = catalog.List(ctx, filter); err != nil {
					return err
				}
			}

			if len(tools) == 0 {
				fmt.Println("No tools yet. Use 'toolscout discover' or 'toolscout seed'.")
				return nil
			}
			for _, t := range tools {
				fmt.Printf("%-24s %-16s %-12s %-9s %s\n", truncate(t.Name, 24), t.Category, t.Difficulty, t.Pricing, t.Website)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "filter by difficulty")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter tools into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			if catalog == nil {
				return errors.New("catalog not configured")
			}
			defer catalog.Close()

			n, err := store.Seed(ctx, catalog)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d of %d starter tools\n", n, len(store.StarterTools()))
			return nil
		},
	}
}

// truncate cuts s to at most max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
