package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout - сколько ждём завершения активных запросов при остановке.
const shutdownTimeout = 5 * time.Second

// Serve слушает addr до отмены ctx, затем корректно останавливает сервер.
func Serve(ctx context.Context, addr string, h *Handler, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Starting media server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Infow("Media server stopped")
	return nil
}
