package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/cli/cmd/utils"
	"github.com/matjam/inkyslide/internal/ipc"
	"github.com/spf13/cobra"
)

func NewNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Skip the wait and show the next photo",
		Run: func(cmd *cobra.Command, args []string) {
			client := ipc.NewClient(utils.SocketPath())
			defer client.Close()

			if err := client.Next(); err != nil {
				log.Fatalf("Failed to send 'next' command: %v", err)
			}
			log.Info("Next photo command sent")
		},
	}
}
