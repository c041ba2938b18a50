package cli

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

	"jfinder/internal/adapter/generate"
	"jfinder/internal/server"
	"jfinder/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP server exposing journal search and text generation.

Endpoints:
  GET  /                 Health check
  POST /search_journals  Rank journals against a text
  POST /generate         Proxy a prompt to the generation model`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "", log.LstdFlags)

		enc, err := buildEncoder(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		idx, closeIdx, err := buildServeIndex(ctx, cfg)
		cancel()
		if err != nil {
			return err
		}
		defer closeIdx()

		gen := generate.NewGemini(
			os.Getenv(cfg.Generate.APIKeyEnv),
			generate.WithModel(cfg.Generate.Model),
			generate.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Generate.TimeoutSecs) * time.Second,
			}),
		)

		searcher := usecase.NewSearcher(enc, idx)
		srv := server.New(searcher, gen, idx, logger)

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("listening on %s", addr)
			errCh <- httpSrv.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-stop:
			logger.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
