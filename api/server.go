package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/app"
)

const shutdownTimeout = 30 * time.Second

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully
// and waits for a running batch to finish.
func Serve(ctx context.Context, rt *app.Runtime) error {
	log := rt.Logger
	batchMgr := app.NewBatchManager(rt.Scheduler, &rt.Config.Download, rt.Events)

	router := SetupRouter(RouterDeps{
		Context:  ctx,
		BatchMgr: batchMgr,
		History:  rt.HistoryRepository(),
		Metrics:  rt.Metrics,
		LogsDir:  rt.Events.GetLogsDir(),
		Logger:   log,
	})

	addr := fmt.Sprintf("%s:%d", rt.Config.Server.Host, rt.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	batchMgr.Wait()

	log.Info("Server exited")
	return nil
}
