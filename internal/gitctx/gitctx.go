package gitctx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// EmptyTree is git's well-known empty tree object, used as the comparison
// base for a repository's root commit.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// ErrUnreadable marks the one fatal failure on the diff path: the source
// text could not be obtained at all.
var ErrUnreadable = errors.New("diff source unreadable")

// Options control how diff sources are gathered.
type Options struct {
	ContextLines int
	MaxDiffBytes int
}

// Source is resolved diff text plus metadata, ready for parsing. Summary
// is the git shortstat line when available, preferred over recomputing
// counts from the filtered parse.
type Source struct {
	Diff    string
	Summary string
	Mode    string
	Ref     string
}

// Commit resolves a commit's diff against its parent. Root commits (no
// parent) are compared against the EmptyTree sentinel instead of failing.
func Commit(sha, parent string, opts Options) (Source, error) {
	if parent == "" {
		out, err := gitOutput("rev-parse", "--verify", "--quiet", sha+"^")
		if err != nil {
			parent = EmptyTree
		} else {
			parent = strings.TrimSpace(out)
		}
	}

	args := append([]string{"diff"}, diffArgs(opts)...)
	args = append(args, parent, sha)
	diff, err := gitOutput(args...)
	if err != nil {
		return Source{}, fmt.Errorf("%w: git diff %s %s: %v", ErrUnreadable, parent, sha, err)
	}
	summary, _ := gitOutput("diff", "--shortstat", parent, sha)
	return build(diff, summary, "commit", sha, opts), nil
}

// Staged returns the diff of index vs HEAD.
func Staged(opts Options) (Source, error) {
	args := append([]string{"diff", "--cached"}, diffArgs(opts)...)
	diff, err := gitOutput(args...)
	if err != nil {
		return Source{}, fmt.Errorf("%w: git diff --cached: %v", ErrUnreadable, err)
	}
	summary, _ := gitOutput("diff", "--cached", "--shortstat")
	return build(diff, summary, "staged", "", opts), nil
}

// Unstaged returns the diff of working tree vs index.
func Unstaged(opts Options) (Source, error) {
	args := append([]string{"diff"}, diffArgs(opts)...)
	diff, err := gitOutput(args...)
	if err != nil {
		return Source{}, fmt.Errorf("%w: git diff: %v", ErrUnreadable, err)
	}
	summary, _ := gitOutput("diff", "--shortstat")
	return build(diff, summary, "unstaged", "", opts), nil
}

// File reads a static unified-diff blob from a path, or stdin when path
// is "-".
func File(path string, opts Options) (Source, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Source{}, fmt.Errorf("%w: reading %s: %v", ErrUnreadable, path, err)
	}
	return build(string(data), "", "file", path, opts), nil
}

func diffArgs(opts Options) []string {
	var args []string
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	return args
}

func build(diff, summary, mode, ref string, opts Options) Source {
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		// Truncate at a file boundary so no half-parsed block remains.
		cut := strings.LastIndex(diff[:opts.MaxDiffBytes], "\ndiff --git ")
		if cut <= 0 {
			cut = opts.MaxDiffBytes
		}
		diff = diff[:cut] + "\n... (diff truncated at max-diff-bytes limit)\n"
	}
	return Source{
		Diff:    diff,
		Summary: strings.TrimSpace(summary),
		Mode:    mode,
		Ref:     ref,
	}
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
