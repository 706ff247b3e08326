// Command semls is the entry point for the language server: `semls serve`
// runs the LSP over stdio, `semls index <path>` runs a one-shot indexing
// pass and reports statistics. Grounded on the teacher's cmd/gtsls/main.go
// (trivial Service/Server wiring) generalized into a cobra command tree in
// the style of C360Studio-semspec's cmd/semspec/main.go (rootCmd with
// persistent flags, one subcommand per mode).
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"semls/internal/config"
	"semls/pkg/indexer"
	"semls/pkg/lspserver"
	"semls/pkg/parserbackend"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "semls: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "semls",
		Short:   "Semantic resolution language server",
		Version: version,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a semls config file")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(indexCmd(&configPath))
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	loaded, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			svc := lspserver.NewService(parserbackend.NewDefaultRegistry(), cfg, logger)
			srv := lspserver.NewServer(os.Stdin, os.Stdout)
			svc.Register(srv)

			return srv.Serve()
		},
	}
}

func indexCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "index <path>",
		Short: "Run a one-shot indexing pass and print build statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			registry := parserbackend.NewDefaultRegistry()
			backend, ok := registry.Get(cfg.Index.Backend)
			if !ok {
				return fmt.Errorf("unknown parser backend %q", cfg.Index.Backend)
			}

			builder := indexer.NewBuilder(backend,
				indexer.WithLogger(logger),
				indexer.WithWorkers(cfg.Index.Workers),
			)

			result, err := builder.BuildPath(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
