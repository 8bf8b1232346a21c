package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build metadata injected by the linker
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

// currentVersion parses the build version, accepting a leading "v"
func currentVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("not a release build: %q", version)
	}
	return v, nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initializeLogging,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		if v, err := currentVersion(); err == nil {
			fmt.Fprintf(out, "gopdfctl %s\n", v)
		} else {
			fmt.Fprintf(out, "gopdfctl %s\n", version)
		}
		fmt.Fprintf(out, "Built:   %s\n", buildTime)
		fmt.Fprintf(out, "Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
