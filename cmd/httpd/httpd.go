// Package httpd implements the HTTP server command for the adboard
// service.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/adboard/cmd/common"
	"github.com/jonesrussell/adboard/internal/api"
	"github.com/jonesrussell/adboard/internal/logger"
	"github.com/jonesrussell/adboard/internal/sweeper"
)

const (
	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
	defaultShutdownTimeout  = 30 * time.Second
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the adboard HTTP server",
		Long:  `Start the HTTP server exposing the listing resolution and comments API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start()
		},
	}
}

// Start starts the HTTP server and runs until interrupted.
// It handles graceful shutdown on SIGINT or SIGTERM signals.
func Start() error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	pipeline, err := common.NewPipeline(deps)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	sweep := sweeper.New(deps.Config.Cache.SweepInterval, deps.Logger.WithComponent("sweeper"))
	sweep.Register("parse-cache", pipeline.ParseCache)
	sweep.Register("mirror", pipeline.Mirror)
	if err := sweep.Start(); err != nil {
		return err
	}

	router := api.SetupRouter(
		deps.Logger.WithComponent("http"),
		api.NewAdsHandler(pipeline.Resolver, deps.Logger.WithComponent("ads")),
		api.NewCommentsHandler(pipeline.Comments, pipeline.Store, deps.Logger.WithComponent("comments")),
	)

	server := api.NewHTTPServer(deps.Config.Server, router)

	deps.Logger.Info("Starting HTTP server", "addr", deps.Config.Server.Address)
	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	return runUntilInterrupt(deps.Logger, server, sweep, errChan)
}

// runUntilInterrupt runs the server until interrupted by signal or error.
func runUntilInterrupt(
	log logger.Interface,
	server *http.Server,
	sweep *sweeper.Sweeper,
	errChan chan error,
) error {
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serverErr := <-errChan:
		log.Error("Server error", "error", serverErr.Error())
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		return shutdown(log, server, sweep, sig)
	}
}

// shutdown performs graceful shutdown of the server and sweeper.
func shutdown(log logger.Interface, server *http.Server, sweep *sweeper.Sweeper, sig os.Signal) error {
	log.Info("Shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	log.Info("Stopping sweeper")
	sweep.Stop()

	log.Info("Stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop server", "error", err.Error())
		return fmt.Errorf("failed to stop server: %w", err)
	}

	log.Info("Server stopped successfully")
	return nil
}
