package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/facet/internal/extract"
)

var (
	extractFormat string
	extractOut    string
)

var extractCmd = &cobra.Command{
	Use:   "extract <report.md>",
	Short: "Extract checked findings from a checklist report",
	Long: "Read a checklist-format report, collect the items whose checkbox " +
		"has been ticked, and re-emit just those findings. Use \"-\" to read " +
		"the report from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading report: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		findings := extract.Findings(string(data))

		var out []byte
		switch extractFormat {
		case "json":
			out, err = extract.JSON(findings)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding findings: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			out = append(out, '\n')
		case "markdown", "":
			out = []byte(extract.Markdown(findings))
		default:
			return fmt.Errorf("unknown extract format: %s", extractFormat)
		}

		if extractOut == "" {
			_, err = os.Stdout.Write(out)
		} else {
			err = os.WriteFile(extractOut, out, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFormat, "format", "markdown", "Output format (markdown, json)")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "Output file path (default: stdout)")
}
