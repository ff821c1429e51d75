package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> facet pre-commit hook >>>"
	hookMarkerEnd   = "# <<< facet pre-commit hook <<<"
)

var (
	hookFailOn      string
	hookFormat      string
	hookMaxFindings int
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install facet as a git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(hookFailOn, hookFormat, hookMaxFindings)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating hooks directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed facet pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove facet pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No pre-commit hook found.")
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing))

		// If only a shebang remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed facet pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "Removed facet section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed)")
	}
	gitDir := strings.TrimSpace(string(out))
	return filepath.Join(gitDir, "hooks", "pre-commit"), nil
}

func generateHookScript(failOn, format string, maxFindings int) string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(fmt.Sprintf("facet review staged --fail-on %s --format %s --max-findings %d\n", failOn, format, maxFindings))
	b.WriteString("FACET_EXIT=$?\n")
	b.WriteString("if [ $FACET_EXIT -eq 1 ]; then\n")
	b.WriteString("  echo \"facet: findings above threshold, commit blocked\"\n")
	b.WriteString("  exit 1\n")
	b.WriteString("elif [ $FACET_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"facet: warning - analysis encountered an error (exit $FACET_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		// No existing facet section: append
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFailOn, "fail-on", "high", "Fail on severity threshold (none, low, medium, high, critical)")
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Output format (text, json, markdown, checklist, sarif)")
	hookInstallCmd.Flags().IntVar(&hookMaxFindings, "max-findings", 10, "Maximum number of findings")
}
