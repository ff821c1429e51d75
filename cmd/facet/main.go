// Facet is a local-first CLI that runs staged LLM analysis passes over
// code diffs.
//
// Each configured stage examines the diff with its own focus (security,
// correctness, performance, maintainability, summary) and sees the
// findings of the stages before it. Reports render as text, JSON,
// markdown, an interactive checklist, or SARIF; ticked checklist items
// can be re-extracted with the extract command.
//
// Usage:
//
//	facet review unstaged            # analyze working tree changes
//	facet review staged              # analyze staged changes
//	facet review commit <sha>        # analyze a specific commit
//	facet review file changes.diff   # analyze a saved unified diff
//	facet extract report.md --format json
//
// Exit codes: 0 success, 1 findings at or above --fail-on, 2 usage
// error, 3 authentication failure, 4 runtime error.
package main

import (
	"os"

	"github.com/dshills/facet/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
