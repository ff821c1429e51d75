// Package cli wires the cobra command tree: review subcommands for each
// diff source, checklist extraction, config and cache management, and the
// pre-commit hook installer.
package cli
