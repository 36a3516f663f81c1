package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/notify"
	"github.com/matjam/inkyslide/internal/state"
	"github.com/matjam/inkyslide/internal/watchdog"
	"github.com/spf13/cobra"
)

func NewWatchdogCmd() *cobra.Command {
	watchdogCmd := &cobra.Command{
		Use:   "watchdog",
		Short: "One-shot health checks for the photo frame",
		Long: `Health checks meant to be run periodically from a systemd timer or cron.
Notifications go to ntfy_url when it is set.`,
	}

	watchdogCmd.AddCommand(
		&cobra.Command{
			Use:   "heartbeat",
			Short: "Restart the slideshow service when its heartbeat is stale",
			Run: func(cmd *cobra.Command, args []string) {
				cfg := loadConfig()
				setupRotatingLogger(cfg.LogDir, "heartbeat_watchdog", false, cfg.Debug)
				logger := log.WithPrefix("heartbeat")
				notifier := notify.NewNtfy(cfg.NtfyURL, logger)
				defer notifier.Close()

				w := &watchdog.HeartbeatWatchdog{
					Heartbeat: state.NewHeartbeat(cfg.HeartbeatFile),
					Threshold: cfg.HeartbeatThreshold(),
					Service:   cfg.ServiceName,
					Runner:    watchdog.ExecRunner{},
					Notifier:  notifier,
					Logger:    logger,
				}
				result, err := w.Check(contextOf(cmd))
				if err != nil {
					log.Fatalf("Heartbeat check failed: %v", err)
				}
				log.Info("Heartbeat check done", "result", result)
			},
		},
		&cobra.Command{
			Use:   "network",
			Short: "Reconnect Wi-Fi when the gateway stops answering",
			Run: func(cmd *cobra.Command, args []string) {
				cfg := loadConfig()
				setupRotatingLogger(cfg.LogDir, "network_watchdog", false, cfg.Debug)
				logger := log.WithPrefix("network")
				notifier := notify.NewNtfy(cfg.NtfyURL, logger)
				defer notifier.Close()

				w := &watchdog.NetworkWatchdog{
					Gateway:  cfg.Gateway,
					Device:   cfg.WifiDevice,
					Settle:   10 * time.Second,
					Pinger:   watchdog.ICMPPinger{Count: 3, Timeout: 2 * time.Second, Privileged: true},
					Runner:   watchdog.ExecRunner{},
					Notifier: notifier,
					Logger:   logger,
				}
				result, err := w.Check(contextOf(cmd))
				if err != nil {
					log.Fatalf("Network check failed: %v", err)
				}
				log.Info("Network check done", "result", result)
			},
		},
		&cobra.Command{
			Use:   "throttle",
			Short: "Report changes in the firmware throttle flags",
			Run: func(cmd *cobra.Command, args []string) {
				cfg := loadConfig()
				setupRotatingLogger(cfg.LogDir, "throttled_monitor", false, cfg.Debug)
				logger := log.WithPrefix("throttle")
				notifier := notify.NewNtfy(cfg.NtfyURL, logger)
				defer notifier.Close()

				m := &watchdog.ThrottleMonitor{
					StateFile:   cfg.ThrottleStateFile,
					HistoryFile: cfg.ThrottleHistoryFile,
					Runner:      watchdog.ExecRunner{},
					Notifier:    notifier,
					Logger:      logger,
				}
				result, err := m.Check(contextOf(cmd))
				if err != nil {
					log.Fatalf("Throttle check failed: %v", err)
				}
				log.Info("Throttle check done", "result", result)
			},
		},
		newThrottleReportCmd(),
	)

	return watchdogCmd
}

func newThrottleReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "throttle-report",
		Short: "Summarize the recorded throttle flags",
		Long: `Counts how often each throttle flag was set in the readings recorded by
"inkyslide watchdog throttle" and suggests what to check next.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			days, err := cmd.Flags().GetInt("days")
			if err != nil {
				return err
			}

			since := time.Now().AddDate(0, 0, -days)
			readings, err := watchdog.LoadThrottleHistory(cfg.ThrottleHistoryFile, since)
			if err != nil {
				return fmt.Errorf("reading %s: %w", cfg.ThrottleHistoryFile, err)
			}
			report, err := watchdog.SummarizeThrottle(readings)
			if err != nil {
				return fmt.Errorf("last %d days: %w", days, err)
			}
			return report.Write(cmd.OutOrStdout())
		},
	}
	reportCmd.Flags().Int("days", 7, "Only include readings from the last N days")
	return reportCmd
}

// contextOf is the command context, or Background when cobra was run
// without one.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
