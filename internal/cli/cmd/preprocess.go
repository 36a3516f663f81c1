package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/preprocess"
	"github.com/spf13/cobra"
)

func NewPreprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess",
		Short: "Resize raw photos for the panel",
		Long: `Cover-fits every photo in raw_dir to the panel resolution and writes
it to photo_dir as JPEG, keeping the EXIF data of the original.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			setupRotatingLogger(cfg.LogDir, "preprocess", false, cfg.Debug)

			results, err := preprocess.Run(preprocess.Options{
				RawDir:  cfg.RawDir,
				OutDir:  cfg.PhotoDir,
				Width:   cfg.Width,
				Height:  cfg.Height,
				Quality: cfg.JPEGQuality,
			}, log.WithPrefix("preprocess"))

			log.Infof("Converted %d photos from %s into %s", len(results), cfg.RawDir, cfg.PhotoDir)
			if err != nil {
				log.Fatalf("Some photos could not be converted: %v", err)
			}
		},
	}
}
