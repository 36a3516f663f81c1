package cmd

import (
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/matjam/inkyslide/internal/display"
	"github.com/spf13/cobra"
)

func NewPanelTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paneltest",
		Short: "Fill the panel with white, then black",
		Long: `Detects the panel the same way the slideshow does and fills it with
white and then black. If the panel does not change, check its power,
cable and initialization.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			logger := log.WithPrefix("display")

			panel := openPanel(cfg, logger)
			defer display.Close(panel)

			steps := []struct {
				name string
				fill color.Color
			}{
				{"white", color.White},
				{"black", color.Black},
			}
			for i, step := range steps {
				frame := imaging.New(panel.Width(), panel.Height(), step.fill)
				if err := panel.SetImage(frame); err != nil {
					log.Fatalf("Could not set %s frame: %v", step.name, err)
				}
				if err := panel.Show(); err != nil {
					log.Fatalf("Could not show %s frame: %v", step.name, err)
				}
				log.Infof("[%d/%d] Filled the panel with %s", i+1, len(steps), step.name)
			}

			log.Info("Panel test finished", "driver", panel.Name())
		},
	}
}
