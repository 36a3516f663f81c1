package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/cli/cmd/utils"
	"github.com/matjam/inkyslide/internal/config"
	"github.com/matjam/inkyslide/internal/display"
	"github.com/matjam/inkyslide/internal/ipc"
	"github.com/matjam/inkyslide/internal/metrics"
	"github.com/matjam/inkyslide/internal/slideshow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
)

func NewStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the slideshow",
		Long: `Starts the slideshow. It keeps running until stopped with
"inkyslide stop" or a signal. Use --background to detach from the terminal.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()

			if v, err := cmd.Flags().GetBool("background"); err == nil && v {
				daemonize(cfg)
				return
			}
			StartManager(cfg)
		},
	}
}

func daemonize(cfg config.Config) {
	dctx := &daemon.Context{
		Umask: 0o027,
		Args:  os.Args,
		Env:   append(os.Environ(), "BACKGROUND_PROCESS=1"),
	}

	child, err := dctx.Reborn()
	if err != nil {
		log.Fatalf("Unable to run in the background: %v", err)
	}
	if child != nil {
		log.Infof("inkyslide started in the background with PID %d", child.Pid)
		return
	}
	defer dctx.Release()

	StartManager(cfg)
}

func StartManager(cfg config.Config) {
	setupRotatingLogger(cfg.LogDir, "inkyslide", os.Getenv("BACKGROUND_PROCESS") == "1", cfg.Debug)
	log.Infof("StartManager() started in PID: %d", os.Getpid())

	sockPath := utils.SocketPath()
	client := ipc.NewClient(sockPath)
	if _, err := client.Status(); err == nil {
		client.Close()
		log.Infof("inkyslide is already running, exiting")
		os.Exit(0)
	}
	client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	panel := openPanel(cfg, log.WithPrefix("display"))
	defer func() {
		if err := display.Close(panel); err != nil {
			log.Errorf("Error closing panel: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		log.Fatalf("Error registering metrics: %v", err)
	}

	manager := slideshow.NewManager(cfg, panel, log.WithPrefix("slideshow"), slideshow.WithMetrics(recorder))

	server := ipc.NewServer(manager, registry, sockPath, log.WithPrefix("ipc"))
	if err := server.Listen(); err != nil {
		log.Fatalf("Error starting socket server: %v", err)
	}
	go func() {
		log.Infof("Starting socket server")
		if err := server.Serve(); err != nil {
			log.Errorf("Socket server stopped: %v", err)
		}
	}()

	manager.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down socket server: %v", err)
	}
	log.Infof("inkyslide exited")
}
