package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierhq/atelier"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := atelier.LoadConfig(configPath)
		if err != nil {
			return err
		}

		app := atelier.New(cfg)
		if err := app.Bootstrap(cmd.Context()); err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() {
			errc <- app.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errc:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case sig := <-stop:
			log.Printf("received %s, shutting down", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(ctx)
	},
}
