// Package httpapi предоставляет небольшой статусный HTTP-сервер:
// проверку работоспособности и обзор активных воспроизведений.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"discord-chat-importer/internal/replay"
)

// Server представляет статусный HTTP-сервер.
type Server struct {
	HTTPServer *http.Server
	registry   *replay.Registry
	logger     *slog.Logger
}

// New создает новый экземпляр Server.
func New(addr string, registry *replay.Registry, logger *slog.Logger) *Server {
	s := &Server{registry: registry, logger: logger}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chiRouter.Route("/api/v1", func(r chi.Router) {
		// Список активных воспроизведений
		r.Get("/replays", s.handleListReplays)
		// Запрос отмены воспроизведения по его идентификатору
		r.Post("/replays/{id}/cancel", s.handleCancelReplay)
	})

	s.HTTPServer = &http.Server{Addr: addr, Handler: chiRouter}
	return s
}

// Start запускает сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.logger.Info("статусный сервер запущен", "addr", s.HTTPServer.Addr)
	if err := s.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTPServer.Shutdown(ctx)
}

func (s *Server) handleListReplays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"replays": s.registry.Active(),
	})
}

func (s *Server) handleCancelReplay(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if !s.registry.CancelByID(runID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "replay not found"})
		return
	}
	s.logger.Info("отмена запрошена через HTTP", "run_id", runID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
