package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/matjam/inkyslide"
	"github.com/matjam/inkyslide/internal/types"
	"github.com/spf13/viper"
)

// GET /status
func statusHandler(m ManagerInterface, socket string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:    "ok",
			Message:   "inkyslide is running",
			Version:   strings.Trim(inkyslide.Version, "\n\r "),
			PID:       os.Getpid(),
			Socket:    socket,
			Config:    viper.ConfigFileUsed(),
			Slideshow: m.Status(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(types.Command{Type: types.CommandStop})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /next
func nextHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.EnqueueCommand(types.Command{Type: types.CommandNext})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}
