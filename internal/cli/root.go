/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide"
	"github.com/matjam/inkyslide/internal/cli/cmd"
	"github.com/matjam/inkyslide/internal/cli/cmd/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkyslide",
	Short: "An e-paper photo frame slideshow",
	Long: `Inkyslide shows a shuffled slideshow of your photos on an
Inky Impression 13.3" e-paper panel, with the capture date and the
frame status drawn on top.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, err := cmd.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := cmd.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		if v, err := cmd.Flags().GetBool("version"); err == nil && v {
			printVersion()
			return
		}

		_ = cmd.Help()
	},
}

func printVersion() {
	babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	log.Infof("%v version %v © 2025 %v",
		babyBlue.Render("inkyslide "),
		green.Render(strings.Trim(inkyslide.Version, "\n\r ")),
		yellow.Render("Nathan Ollerenshaw"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewStartCmd(),
		cmd.NewStatusCmd(),
		cmd.NewNextCmd(),
		cmd.NewStopCmd(),
		cmd.NewPanelTestCmd(),
		cmd.NewPreprocessCmd(),
		cmd.NewWatchdogCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
