package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tutorials/internal/config"
	"tutorials/internal/importer"
	"tutorials/internal/logger"
	"tutorials/internal/metrics"
	"tutorials/internal/model"
	"tutorials/internal/server"
	"tutorials/internal/service"
	"tutorials/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	log        *zap.Logger
	cfg        *config.Config
	configPath string
	backend    string
)

var rootCmd = &cobra.Command{
	Use:   "tutorials",
	Short: "tutorials - CRUD service for Tutorial records",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if backend != "" {
			cfg.Store.Backend = backend
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		log, err = logger.New(cfg.Env)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	SilenceUsage: true,
}

// openService opens the configured store and wraps it in the service.
// The returned store must be closed by the caller.
func openService(ctx context.Context, m *metrics.Metrics) (*service.Service, store.Store, error) {
	st, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init store: %w", err)
	}
	if m != nil {
		st = store.Instrument(st, m)
	}
	return service.New(st, log), st, nil
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New()
		}

		svc, st, err := openService(ctx, m)
		if err != nil {
			return err
		}
		defer st.Close()

		var provider server.MetricsProvider
		if m != nil {
			provider = m
		}
		srv := server.NewServer(svc, provider, log, server.Options{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(cfg.HTTP.Addr())
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			log.Info("Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}

		log.Info("Goodbye!")
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title> [description]",
	Short: "Create a tutorial",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, st, err := openService(ctx, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		in := model.TutorialInput{Title: args[0]}
		if len(args) == 2 {
			in.Description = args[1]
		}
		tutorial, err := svc.Create(ctx, in)
		if err != nil {
			return err
		}

		log.Info("Tutorial created", zap.Int64("id", tutorial.ID), zap.String("title", tutorial.Title))
		return printJSON(cmd, tutorial)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Create a tutorial from a web article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, st, err := openService(ctx, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		tutorial, err := importer.New(svc, log, cfg.Importer.Timeout).Import(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, tutorial)
	},
}

var (
	listTitle     string
	listPublished string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tutorials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, st, err := openService(ctx, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		var tutorials []model.Tutorial
		switch {
		case cmd.Flags().Changed("published"):
			published, perr := strconv.ParseBool(listPublished)
			if perr != nil {
				return perr
			}
			tutorials, err = svc.ListByPublished(ctx, published)
		case cmd.Flags().Changed("title"):
			tutorials, err = svc.ListByTitle(ctx, listTitle)
		default:
			tutorials, err = svc.List(ctx)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, tutorials)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every tutorial",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, st, err := openService(ctx, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := svc.DeleteAll(ctx); err != nil {
			return err
		}
		log.Info("All tutorials deleted")
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (defaults to CONFIG_PATH or ./local.yaml)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Override store backend: memory, badger, redis, postgres")

	listCmd.Flags().StringVar(&listTitle, "title", "", "Only tutorials whose title contains this text")
	listCmd.Flags().StringVar(&listPublished, "published", "", "Only tutorials with this published flag (true/false)")

	rootCmd.AddCommand(serverCmd, addCmd, importCmd, listCmd, purgeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
