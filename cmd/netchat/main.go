package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via ldflags.
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "netchat",
	Short: "Browse and manage netchat channels from the terminal",
	Long: `netchat is the command line client for netchat.

It keeps the list of saved channels in local storage, resolves channel ids
against that list, and reads messages from the remote store. Everyone behind
the same public IP shares a network channel.`,
	Version:       fmt.Sprintf("%s (build %s, %s)", Version, Build, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a TOML config file (overrides NETCHAT_CONFIG)")
	rootCmd.PersistentFlags().String("storage", "", "local storage backend: memory, file, redis, sqlite or none")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the root command and releases local storage afterwards, also
// when the command failed.
func execute() error {
	err := rootCmd.Execute()
	if closeErr := closeApp(); err == nil {
		err = closeErr
	}
	return err
}
