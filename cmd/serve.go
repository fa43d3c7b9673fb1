package cmd

import (
	"fmt"

	"cafefinder/config"
	"cafefinder/database"
	"cafefinder/route"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cfg, logger)
		},
	}
	cmd.Flags().StringP("port", "p", "", "port to listen on (overrides server.port)")
	return cmd
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.Info("running in debug mode")
	}
	if cfg.Access.Password == config.DefaultAccessPassword {
		logger.Warn("access password is the built-in default; set access.password or CAFE_ACCESS_PASSWORD")
	}

	db, err := database.Open(cfg.Database, logger, cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	router, err := route.NewRouter(cfg, db, logger)
	if err != nil {
		return err
	}
	logger.Info("routes configured", zap.Bool("access_enforced", cfg.Access.Enforce))

	addr := ":" + cfg.Server.Port
	logger.Info("starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
