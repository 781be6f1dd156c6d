package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/maxpathlen/pkg/config"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"github.com/spf13/cobra"
)

func volumesMain(command *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig(command)
	if err != nil {
		return err
	}
	defer closeLog()

	enumerator := &volume.SystemEnumerator{Excluded: cfg.ExcludedTypes}
	all, err := enumerator.All(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf(volumeRowFormat, "VOLUME", "LABEL", "TYPE", "DRIVE", "STATE", "SIZE", "FREE", "PROBED")
	for _, v := range all {
		probed := "yes"
		switch {
		case volume.IsExcluded(v.FilesystemType, cfg.ExcludedTypes):
			probed = "excluded"
		case !v.Ready:
			probed = "not ready"
		case !v.Writable:
			probed = "read-only"
		}
		fmt.Printf(volumeRowFormat,
			v.Name, v.Label, v.FilesystemType, v.DriveType, v.ReadyState(),
			humanize.IBytes(v.TotalBytes), humanize.IBytes(v.FreeBytes), probed)
	}
	return nil
}

const volumeRowFormat = "%-24s %-16s %-10s %-10s %-9s %10s %10s  %s\n"

var volumesCommand = &cobra.Command{
	Use:   "volumes",
	Short: "List the volumes found on this host and whether they would be probed",
	Args:  cobra.NoArgs,
	RunE:  volumesMain,
}

var volumesConfiguration runConfiguration

func init() {
	flags := volumesCommand.Flags()
	flags.SortFlags = false
	flags.StringVarP(&volumesConfiguration.logLevel, "log-level", "l", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringSliceVar(&volumesConfiguration.excluded, "exclude", nil, "Filesystem types to skip")
}
