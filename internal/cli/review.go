package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/facet/internal/cache"
	"github.com/dshills/facet/internal/config"
	"github.com/dshills/facet/internal/diffparse"
	"github.com/dshills/facet/internal/finding"
	"github.com/dshills/facet/internal/gitctx"
	"github.com/dshills/facet/internal/pipeline"
	"github.com/dshills/facet/internal/providers"
	"github.com/dshills/facet/internal/render"
	"github.com/dshills/facet/internal/stages"
)

// Shared review flags
var (
	flagPaths        string
	flagExclude      string
	flagExtensions   string
	flagContextLines int
	flagMaxDiffBytes int
	flagProvider     string
	flagModel        string
	flagStages       string
	flagFormat       string
	flagOut          string
	flagFailOn       string
	flagMaxFindings  int
	flagNoRedact     bool
	flagNoCache      bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExtensions, "extensions", "", "File extensions to analyze (comma-separated, with dots)")
	cmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Number of context lines in diff")
	cmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagStages, "stages", "", "Analysis stages to run, in order (comma-separated)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, checklist, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, low, medium, high, critical)")
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum findings per stage")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagStages != "" {
		m["stages"] = flagStages
	}
	if flagExtensions != "" {
		m["extensions"] = flagExtensions
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = fmt.Sprintf("%d", flagMaxFindings)
	}
	if flagContextLines > 0 {
		m["contextLines"] = fmt.Sprintf("%d", flagContextLines)
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = fmt.Sprintf("%d", flagMaxDiffBytes)
	}
	return m
}

func diffOpts(cfg config.Config) gitctx.Options {
	return gitctx.Options{
		ContextLines: cfg.ContextLines,
		MaxDiffBytes: cfg.MaxDiffBytes,
	}
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// buildArtifacts resolves the output set: --format/--out override the
// configured outputs wholesale.
func buildArtifacts(cfg config.Config) []render.Artifact {
	if flagFormat != "" || flagOut != "" {
		format := flagFormat
		if format == "" {
			format = cfg.Outputs[0].Format
		}
		return []render.Artifact{{Format: format, Path: flagOut}}
	}
	artifacts := make([]render.Artifact, 0, len(cfg.Outputs))
	for _, o := range cfg.Outputs {
		artifacts = append(artifacts, render.Artifact{Format: o.Format, Path: o.Path})
	}
	return artifacts
}

// runAnalysis drives parse → pipeline → render for one diff source and
// sets the process exit code.
func runAnalysis(src gitctx.Source, cfg config.Config) {
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}

	parsed := diffparse.Parse(src.Diff, diffparse.Options{
		Extensions: cfg.Extensions,
		Summary:    src.Summary,
	})

	include := cfg.Include
	if flagPaths != "" {
		include = splitComma(flagPaths)
	}
	exclude := cfg.Exclude
	if flagExclude != "" {
		exclude = append(exclude, splitComma(flagExclude)...)
	}
	parsed = parsed.Filter(include, exclude)

	if parsed.IsEmpty() {
		fmt.Fprintln(os.Stdout, "No supported changes to analyze.")
		return
	}

	completer, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitAuthError
		return
	}

	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn("cache unavailable, continuing without it", zap.Error(err))
		c, _ = cache.New(false, "", 0)
	}

	stageList, err := stages.New(cfg, completer, c, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	orch, err := pipeline.New(stageList, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	report, err := orch.Execute(context.Background(), parsed, pipeline.Meta{
		Mode: src.Mode,
		Ref:  src.Ref,
	})
	if err != nil {
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if written := render.WriteAll(report, buildArtifacts(cfg), log); written == 0 {
		fmt.Fprintln(os.Stderr, "Error: no output artifact could be written")
		exitCode = ExitRuntimeError
		return
	}

	if cfg.FailOn != "none" && cfg.FailOn != "" {
		for _, f := range report.Findings() {
			if finding.MeetsThreshold(f.Severity, cfg.FailOn) {
				exitCode = ExitFindings
				return
			}
		}
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Analyze code changes",
	Long:  "Run the configured analysis passes over a diff. Use subcommands to pick the diff source.",
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Analyze unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		src, err := gitctx.Unstaged(diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runAnalysis(src, cfg)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Analyze staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		src, err := gitctx.Staged(diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runAnalysis(src, cfg)
		return nil
	},
}

var flagParent string

var reviewCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Analyze a specific commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		src, err := gitctx.Commit(args[0], flagParent, diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runAnalysis(src, cfg)
		return nil
	},
}

var reviewFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Analyze a unified diff read from a file, or stdin with \"-\"",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		src, err := gitctx.File(args[0], diffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runAnalysis(src, cfg)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewUnstagedCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewCommitCmd)
	reviewCmd.AddCommand(reviewFileCmd)

	for _, cmd := range []*cobra.Command{
		reviewUnstagedCmd,
		reviewStagedCmd,
		reviewCommitCmd,
		reviewFileCmd,
	} {
		addReviewFlags(cmd)
	}

	reviewCommitCmd.Flags().StringVar(&flagParent, "parent", "", "Override parent SHA (for merge commits)")
}
