package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/matjam/inkyslide/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Server answers control requests on a unix socket.
type Server struct {
	echo   *echo.Echo
	path   string
	logger *log.Logger
}

func NewServer(manager ManagerInterface, gatherer prometheus.Gatherer, sockPath string, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CharmLog(logger))

	RegisterRoutes(e, manager, gatherer, sockPath)

	return &Server{echo: e, path: sockPath, logger: logger}
}

// Listen replaces a stale socket file and binds the socket.
func (s *Server) Listen() error {
	if _, err := os.Stat(s.path); err == nil {
		_ = os.Remove(s.path)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.path, err)
	}
	s.echo.Listener = listener
	return nil
}

// Serve blocks until Shutdown. Listen must have been called.
func (s *Server) Serve() error {
	s.logger.Info("Control socket listening", "socket", s.path)

	// echo.Shutdown stops e.Server, so that is the one to serve on
	if err := s.echo.StartServer(s.echo.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("socket server: %w", err)
	}
	return nil
}

// Shutdown stops the server and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}
