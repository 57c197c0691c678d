package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/auth"
	"github.com/textlab/textlab/internal/config"
	"github.com/textlab/textlab/internal/document"
	"github.com/textlab/textlab/internal/logger"
	"github.com/textlab/textlab/internal/metrics"
	"github.com/textlab/textlab/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Run the REST API until interrupted.

Configuration comes from the config file, a .env file and TEXTLAB_*
environment variables (e.g. TEXTLAB_SERVER_ADDR, TEXTLAB_AUTH_JWT_SECRET).

Examples:
  tl serve
  tl serve --addr :9090 --db ./textlab.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := logger.New(cfg.Server.LogMode)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn("using the development JWT secret; set auth.jwt_secret or TEXTLAB_AUTH_JWT_SECRET")
	}

	db := mustOpenDatabase(cfg.Database.Path)
	defer db.Close()

	authSvc := auth.NewService(db, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	docs := document.NewService(db, apa.New(), log.With("component", "document"))
	srv := server.New(*cfg, authSvc, docs, metrics.New(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting textlab", "version", Version, "db", cfg.Database.Path)
	if err := srv.Run(ctx); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}
