package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamcooper1386/bintest/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a scaffold specification file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("binary", "", "Binary under test (prompted interactively if omitted and attached to a terminal)")
	initCmd.Flags().String("timeout", "3s", "Default process timeout")
	initCmd.Flags().String("sandbox-dir", "temp", "Sandbox policy: temp, local, or an explicit path")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if filepath.Ext(path) == "" {
		path = filepath.Join(path, "example.bintest.yaml")
	}

	if fileExists(path) {
		return usageError(fmt.Sprintf("%s already exists", path))
	}

	binary := mustGetString(cmd, "binary")
	timeout := mustGetString(cmd, "timeout")
	sandboxDir := mustGetString(cmd, "sandbox-dir")

	if ui.IsInteractive() {
		var err error
		if binary == "" {
			binary, err = ui.PromptString("Binary under test", "/usr/bin/mytool", requireNonEmpty)
			if err != nil {
				if ui.IsAbort(err) {
					return nil
				}
				return errExit(err)
			}
		}
		timeout, err = ui.PromptString("Default timeout", timeout, requireNonEmpty)
		if err != nil {
			if ui.IsAbort(err) {
				return nil
			}
			return errExit(err)
		}
		sandboxDir, err = ui.PromptSelect("Sandbox policy", []string{"temp", "local"})
		if err != nil {
			if ui.IsAbort(err) {
				return nil
			}
			return errExit(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errExit(err)
	}
	if err := os.WriteFile(path, []byte(scaffoldTemplate(binary, timeout, sandboxDir)), 0o644); err != nil {
		return errExit(err)
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %s", path))
	return nil
}

func requireNonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func scaffoldTemplate(binary, timeout, sandboxDir string) string {
	if binary == "" {
		binary = "/usr/bin/true"
	}
	return fmt.Sprintf(`binary: %s
timeout: %s
sandbox_dir: %s

tests:
  - name: example
    run:
      cmd: %s
    expect:
      exit: 0
`, binary, timeout, sandboxDir, binary)
}
