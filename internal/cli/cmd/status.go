package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/cli/cmd/utils"
	"github.com/matjam/inkyslide/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get inkyslide status",
		Long:  `Returns the current status of the running slideshow: panel, current photo, counter and queue.`,
		Run: func(cmd *cobra.Command, args []string) {
			client := ipc.NewClient(utils.SocketPath())
			defer client.Close()

			response, err := client.Status()
			if err != nil {
				log.Errorf("Error getting status: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
