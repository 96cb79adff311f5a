package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openjournaltheme/scholarfix/internal/hook"
	"github.com/openjournaltheme/scholarfix/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config listen)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve article head previews over HTTP",
	Long: `Serve previews of article landing page heads.

GET /article/view/<best-id>[/...] returns a minimal page whose <head>
carries the citation tags. Versioned URLs (/article/view/42/version/3)
render without tags.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot, cfg := mustFindRepo()
	db := mustOpenDB(repoRoot)
	defer db.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		exitWithError(ExitError, "creating logger: %v", err)
	}
	defer logger.Sync()

	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if count == 0 {
		logger.Warn("article cache is empty, run sfx rebuild")
	} else {
		logger.Info("article cache loaded", zap.Int("articles", count))
	}

	registry := hook.NewRegistry()
	newPlugin(cfg, db, hook.WithLogger(logger)).Register(registry)

	srv := server.New(db, cfg.Journal.Citation(), registry, cfg.Locale,
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		server.WithLogger(logger),
	)

	addr := cfg.Listen
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
