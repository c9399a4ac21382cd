package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/specyaml"
	"github.com/adamcooper1386/bintest/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load and schema-check a specification without executing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	dir := path
	var filePaths []string
	info, err := os.Stat(path)
	if err != nil {
		return usageError(fmt.Sprintf("%s: %v", path, err))
	}
	if info.IsDir() {
		filePaths, err = specyaml.DiscoverFiles(path)
		if err != nil {
			return errExit(err)
		}
		if len(filePaths) == 0 {
			return usageError(fmt.Sprintf("%s: no *.bintest.yaml files found", path))
		}
	} else {
		dir = filepath.Dir(path)
		filePaths = []string{path}
	}

	suitePath := ""
	if candidate := filepath.Join(dir, "suite.bintest.yaml"); fileExists(candidate) {
		suitePath = candidate
	}

	suite, err := specyaml.LoadSuite(suitePath, filePaths)
	if err != nil {
		ui.PrintError(err.Error())
		return &exitCodeError{code: config.ExitError}
	}

	for _, f := range suite.Files {
		ui.PrintSuccess(fmt.Sprintf("%s (%d test(s))", f.Path, len(f.Tests)))
	}
	return nil
}
