package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/obs"
	"github.com/adamcooper1386/bintest/internal/render"
	"github.com/adamcooper1386/bintest/internal/result"
	"github.com/adamcooper1386/bintest/internal/scheduler"
	bspec "github.com/adamcooper1386/bintest/internal/spec"
	"github.com/adamcooper1386/bintest/internal/specyaml"
	"github.com/adamcooper1386/bintest/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Run a specification file or directory of specification files",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("filter", "", "Only run tests whose name contains this substring")
	runCmd.Flags().String("output", "", "Render format: human, json, or junit (default human)")
	runCmd.Flags().String("sandbox-dir", "", "Override sandbox_dir policy: local or an explicit path")
	runCmd.Flags().Int("jobs", 0, "Max parallel files/tests (default: NumCPU, or $BINTEST_JOBS)")
	runCmd.Flags().Bool("dry-run", false, "Print the execution plan without running anything")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	cliCfg, err := config.LoadCLIConfig(dir)
	if err != nil {
		return errExit(err)
	}

	suitePath := ""
	if candidate := filepath.Join(dir, "suite.bintest.yaml"); fileExists(candidate) {
		suitePath = candidate
	}

	suite, err := specyaml.LoadSuite(suitePath, filePaths)
	if err != nil {
		return errExit(err)
	}

	if sandboxFlag := mustGetString(cmd, "sandbox-dir"); sandboxFlag != "" {
		policy, perr := specyaml.ParseSandboxFlag(sandboxFlag)
		if perr != nil {
			return usageError(perr.Error())
		}
		suite.SandboxDir = policy
		for _, f := range suite.Files {
			f.SandboxDir = nil
		}
	}

	jobs := mustGetInt(cmd, "jobs")
	if jobs == 0 {
		jobs = cliCfg.Jobs
	}
	if jobs == 0 {
		if env := os.Getenv("BINTEST_JOBS"); env != "" {
			if n, perr := parsePositiveInt(env); perr == nil {
				jobs = n
			}
		}
	}

	outputFormat := mustGetString(cmd, "output")
	if outputFormat == "" {
		outputFormat = cliCfg.Output
	}
	if outputFormat == "" {
		outputFormat = "human"
	}

	noColor := flagNoColor || cliCfg.NoColor || os.Getenv("BINTEST_NO_COLOR") != ""
	if noColor {
		os.Setenv("NO_COLOR", "1")
	}

	if mustGetBool(cmd, "dry-run") {
		printExecutionPlan(suite)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := &scheduler.Scheduler{
		Suite: suite,
		Opts: scheduler.Options{
			Filter:       mustGetString(cmd, "filter"),
			RunTimestamp: runTimestamp(),
			Jobs:         jobs,
		},
	}

	var rs result.Suite
	runWithProgress := outputFormat == "human"
	if runWithProgress {
		ui.RunWithSpinner("Running tests", func() error {
			rs = sched.Run(ctx)
			return nil
		})
	} else {
		rs = sched.Run(ctx)
	}

	switch outputFormat {
	case "human":
		fmt.Println(render.Human(rs))
	case "json":
		data, rerr := render.JSON(rs)
		if rerr != nil {
			return errExit(rerr)
		}
		fmt.Println(string(data))
	case "junit":
		data, rerr := render.JUnit(rs)
		if rerr != nil {
			return errExit(rerr)
		}
		fmt.Println(string(data))
	default:
		return usageError(fmt.Sprintf("unknown --output %q (want human, json, or junit)", outputFormat))
	}

	code := render.ExitCode(rs)
	if code != config.ExitSuccess {
		return &exitCodeError{code: code}
	}
	return nil
}

// printExecutionPlan implements --dry-run: print what would run without
// creating a sandbox, spawning a process, or opening a database.
func printExecutionPlan(suite *bspec.Suite) {
	for _, f := range suite.Files {
		fmt.Printf("%s\n", f.Path)
		for _, t := range f.Tests {
			fmt.Printf("  %s", t.Name)
			if len(t.SkipIf) > 0 {
				fmt.Printf(" (skip_if: %d condition(s))", len(t.SkipIf))
			}
			if len(t.Require) > 0 {
				fmt.Printf(" (require: %d condition(s))", len(t.Require))
			}
			fmt.Println()
			for _, s := range t.Steps {
				fmt.Printf("    - %s: %s %v\n", s.Name, s.Run.Cmd, s.Run.Args)
			}
		}
	}
}

func runTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15-04-05Z")
}

func usageError(msg string) error {
	return &exitCodeError{code: config.ExitUsage, msg: msg}
}

func errExit(err error) error {
	obs.Error("run failed", "err", err)
	return &exitCodeError{code: config.ExitError, msg: err.Error()}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a positive integer: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, fmt.Errorf("not a positive integer: %q", s)
	}
	return n, nil
}

func mustGetInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}
