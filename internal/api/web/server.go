package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	app "xray-insights/internal/application"
	"xray-insights/internal/domain/port"
)

// Server отдаёт страницу загрузки снимка и обрабатывает действия пользователя.
type Server struct {
	scans     *app.ScanService
	previewer port.Previewer
	maxUpload int64
}

// NewServer создаёт веб-сервер. previewer может быть nil.
func NewServer(scans *app.ScanService, previewer port.Previewer, maxUpload int64) *Server {
	return &Server{
		scans:     scans,
		previewer: previewer,
		maxUpload: maxUpload,
	}
}

// Handler возвращает маршруты приложения
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run слушает addr до отмены ctx, затем корректно останавливает сервер.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Web UI listening on %s", addr)
		errCh <- srv.ListenAndServe()
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
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
