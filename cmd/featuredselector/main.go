package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"FeaturedSelector/internal/app"
	"FeaturedSelector/internal/config"
	"FeaturedSelector/internal/logging"
)

var (
	envFile string
	logger  *slog.Logger
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "featuredselector",
	Short: "Weekly featured-set builder",
	Long: `featuredselector fetches feed items, picks one hero, a shuffled set of
articles and a price-gated set of oddities for the current ISO week, checks
every judgment against the vocabulary and publishes the result as JSON.

The same week and the same items always produce the same featured set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.AddCommand(fetchCmd, buildCmd, validateCmd, classifyCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("command failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app.Application) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("close application", "error", cerr)
		}
	}()
	return run(ctx, a)
}
