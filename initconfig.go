package main

import (
	"os"

	"camper/config"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var forceInit bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeDefaultConfig(configPath, forceInit)
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Errorf("%s already exists, use --force to overwrite it", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	log.Infof("Wrote default config to %s", path)
	return nil
}
