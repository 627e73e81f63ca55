package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/config"
	"product-catalog/internal/products/repository"
	"product-catalog/internal/products/seed"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	envFile string
	reset   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load sample products into the catalog store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete all products before seeding")
	return cmd
}

func run(ctx context.Context, opts *options, cmd *cobra.Command) error {
	_ = godotenv.Load(opts.envFile)

	level, err := config.LoadLogLevel()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.LoadStorage()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	res, err := seed.Run(ctx, store, opts.reset, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, skipped %d, catalog holds %d products\n",
		len(res.Inserted), len(res.Skipped), res.Total)
	return nil
}
