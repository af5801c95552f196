// Package cmd implements the argon CLI, a cobra command tree ported from
// the teacher's rootCmd/Execute shape (one persistent root command, a flat
// set of subcommands registered in init). Verbosity and confirmation
// defaults read the same ARGON_VERBOSITY / ARGON_YES environment variables
// as original_source/src/util.rs's get_verbosity / get_yes, since nothing
// in the Go rewrite replaces that convention.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	projectPath string
	verbosity   string
	assumeYes   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", "argon.project.json", "Path to the project file")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", verbosityFromEnv(), "Log verbosity: OFF, ERROR, WARN, INFO, DEBUG, TRACE")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", yesFromEnv(), "Assume yes to all prompts")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sourcemapCmd)
}

// verbosityFromEnv mirrors original_source/src/util.rs's get_verbosity:
// ARGON_VERBOSITY defaults to ERROR when unset or unrecognized.
func verbosityFromEnv() string {
	v := os.Getenv("ARGON_VERBOSITY")
	switch v {
	case "OFF", "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
		return v
	default:
		return "ERROR"
	}
}

// yesFromEnv mirrors original_source/src/util.rs's get_yes: any value
// (including empty) for ARGON_YES counts as set.
func yesFromEnv() bool {
	_, ok := os.LookupEnv("ARGON_YES")
	return ok
}

func configureLogging() {
	if verbosity == "OFF" {
		log.SetOutput(io.Discard)
	}
}

var rootCmd = &cobra.Command{
	Use:     "argon",
	Short:   "Argon: a filesystem/engine sync bridge",
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("argon version %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
