package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/obs"
)

const (
	successExitCode = config.ExitSuccess
	usageExitCode   = config.ExitUsage
)

var rootCmd = &cobra.Command{
	Use:   "bintest",
	Short: "Declarative integration-test runner for command-line executables",
	Long: `bintest runs declarative specifications against a command-line
binary: it sets up filesystem and database state, runs the binary, and
asserts on exit status, captured output, resulting files, and database
query results.`,
}

var (
	flagVerbose bool
	flagNoColor bool
)

// Execute runs the CLI and returns the process exit code. Errors from
// cobra (usage errors, unknown commands) exit 64; everything
// else maps through render.ExitCode via each subcommand's own RunE.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitCodeError); ok {
			if exitErr.msg != "" {
				fmt.Println(exitErr.msg)
			}
			return exitErr.code
		}
		fmt.Println(err)
		return usageExitCode
	}
	return successExitCode
}

// exitCodeError lets a subcommand's RunE carry a specific process exit
// code back through cobra's single error return value.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	cobra.OnInitialize(func() {
		obs.Configure(flagVerbose, flagNoColor)
	})
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}
