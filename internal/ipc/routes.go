package ipc

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, manager ManagerInterface, gatherer prometheus.Gatherer, socket string) {
	e.GET("/status", statusHandler(manager, socket))
	e.POST("/stop", stopHandler(manager))
	e.POST("/next", nextHandler(manager))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
