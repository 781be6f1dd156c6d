package main

import (
	"fmt"

	"github.com/marmos91/maxpathlen/pkg/config"
	"github.com/spf13/cobra"
)

func initMain(_ *cobra.Command, _ []string) error {
	var (
		path string
		err  error
	)
	if initConfiguration.output != "" {
		path = initConfiguration.output
		err = config.WriteDefaultConfig(path, initConfiguration.force)
	} else {
		path, err = config.InitConfig(initConfiguration.force)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

var initCommand = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  initMain,
}

var initConfiguration struct {
	// force overwrites an existing file.
	force bool
	// output replaces the default location.
	output string
}

func init() {
	flags := initCommand.Flags()
	flags.SortFlags = false
	flags.BoolVar(&initConfiguration.force, "force", false, "Overwrite an existing configuration file")
	flags.StringVarP(&initConfiguration.output, "output", "o", "", "Write to this path instead of the default location")
}
