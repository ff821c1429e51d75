package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

// Process exit codes. Findings above the fail-on threshold are the only
// "failure" that still produced a complete report.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var (
	flagDebug bool
	log       = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "Multi-pass AI code analysis",
	Long:  "Facet runs a sequence of focused LLM analysis passes over a code diff and emits a threaded findings report.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = buildLogger(flagDebug)
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func buildLogger(debug bool) *zap.Logger {
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return l
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print facet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "facet version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}
