package commands

import (
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clauses",
		Short: "Evaluate and inspect guarded multi-clause functions",
		Long: color.CyanString(`clauses - guarded multi-clause functions

Functions are declared in a YAML rule file as ordered clauses.
Each call runs the first clause whose guards accept the arguments.

Examples:
  clauses check
  clauses describe factorial
  clauses eval classify -- -3`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./clauses.yaml)")
	flags.String("rules", "", "rule file (default rules.yaml)")
	flags.StringP("format", "f", "", "output format: table, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "log clause registration and dispatch")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewEvalCommand())
	rootCmd.AddCommand(NewDescribeCommand())
	rootCmd.AddCommand(NewCheckCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the clauses version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "clauses version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
