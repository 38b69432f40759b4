package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mlisowski/eventsnap/internal/logger"
	"github.com/mlisowski/eventsnap/internal/snapshot"
)

// Server serves the published snapshot.
type Server struct {
	e     *echo.Echo
	store *snapshot.Store
}

// New creates a Server reading from the given store.
func New(store *snapshot.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{e: e, store: store}
	e.GET("/healthz", s.handleHealth)
	e.GET("/api/events", s.handleEvents)

	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start(addr string) error {
	logger.Info("Serving snapshot", logger.Fields{"addr": addr, "snapshot": s.store.Path()})
	return s.e.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents returns the full snapshot document: generated_at plus the
// date-keyed event mapping consumed by the renderer.
func (s *Server) handleEvents(c echo.Context) error {
	snap, err := s.store.Load()
	if err != nil {
		switch {
		case errors.Is(err, snapshot.ErrMissing):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "no snapshot has been generated yet",
			})
		case errors.Is(err, snapshot.ErrCorrupt):
			logger.Error("Stored snapshot is corrupt", logger.Fields{"path": s.store.Path()}, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "stored snapshot is corrupt",
			})
		default:
			logger.Error("Loading snapshot failed", logger.Fields{"path": s.store.Path()}, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "loading snapshot failed",
			})
		}
	}

	return c.JSON(http.StatusOK, snap)
}
