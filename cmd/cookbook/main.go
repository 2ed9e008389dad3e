package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/config"
	"github.com/pbaille/cookbook/internal/domain"
	"github.com/pbaille/cookbook/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cookbook",
		Short: "Local recipe catalog with favorites, weekly menus and a random dish picker",
		// usage is noise on domain errors
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}

			logger, err = buildLogger(cfg.Logging)
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
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default from config, ~/.cookbook/cookbook.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(favCmd())
	rootCmd.AddCommand(favsCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(drawCmd())
	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(suggestTagsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if lc.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return zc.Build()
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.Database.Path)
}

// getService opens the store and loads a catalog over it. Callers close the store.
func getService(ctx context.Context, opts ...catalog.Option) (*catalog.Service, *store.Store, error) {
	s, err := getStore()
	if err != nil {
		return nil, nil, err
	}

	opts = append([]catalog.Option{
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithSampleSeed(cfg.Catalog.SeedSamples),
		catalog.WithWheelSize(cfg.Catalog.WheelSize),
	}, opts...)

	svc := catalog.New(s, opts...)
	if err := svc.Load(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return svc, s, nil
}

// resolveRecipe finds a recipe by full id or unique id prefix
func resolveRecipe(snap *catalog.Snapshot, ref string) (domain.Recipe, error) {
	if r, ok := snap.Recipe(ref); ok {
		return r, nil
	}

	var found []domain.Recipe
	for _, r := range snap.Recipes {
		if strings.HasPrefix(r.ID, ref) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return domain.Recipe{}, fmt.Errorf("recipe not found: %s", ref)
	case 1:
		return found[0], nil
	default:
		return domain.Recipe{}, fmt.Errorf("ambiguous recipe id %s (%d matches)", ref, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
