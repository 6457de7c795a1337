package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentresults/internal/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the student records HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logger)
		if err != nil {
			return err
		}
		defer a.close()

		uploads := handler.NewUploadHandler(a.importer, logger)
		router := handler.NewRouter(handler.NewStudentHandler(a.records), uploads, a.cfg.AllowedOrigins, logger)

		srv := &http.Server{
			Addr:              a.cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server running", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		uploads.Wait()
		logger.Info("server stopped")
		return nil
	},
}
