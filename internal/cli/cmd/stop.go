package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/cli/cmd/utils"
	"github.com/matjam/inkyslide/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the inkyslide daemon",
		Run: func(cmd *cobra.Command, args []string) {
			client := ipc.NewClient(utils.SocketPath())
			defer client.Close()

			if err := client.Stop(); err != nil {
				log.Fatalf("Failed to send 'stop' command: %v", err)
			}
			log.Info("Stop command sent")
		},
	}
}
