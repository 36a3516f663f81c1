package cli

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/matjam/inkyslide/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("inkyslide")
		viper.SetConfigType("toml")
		if viper.GetString("config") != "" {
			viper.SetConfigFile(viper.GetString("config"))
		} else {
			viper.AddConfigPath("$HOME/.config/inkyslide")
			viper.AddConfigPath("/etc/xdg/inkyslide")
		}
	}

	config.SetDefaults(viper.GetViper())

	viper.AutomaticEnv() // read environment variables that match

	// the defaults are enough to run without a config file
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		log.Debug("No config file found, using defaults")
		err = nil
	}
	cobra.CheckErr(err)

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
