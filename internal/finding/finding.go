package finding

import "time"

// Kind classifies how a finding should be treated by consumers.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Finding is a single issue surfaced by an analysis stage. File and
// Message are required; a finding missing either is invalid and must be
// discarded by its producer, never by the orchestrator.
type Finding struct {
	Kind       Kind     `json:"kind"`
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// Valid reports whether the finding carries both required fields.
func (f Finding) Valid() bool {
	return f.File != "" && f.Message != ""
}

// TokenUsage is pass-through accounting from a stage's provider call. The
// core never interprets it beyond summing for the report footer.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		Prompt:     u.Prompt + o.Prompt,
		Completion: u.Completion + o.Completion,
		Total:      u.Total + o.Total,
	}
}

// StageResult is one stage's output.
type StageResult struct {
	StageName  string        `json:"stageName"`
	Findings   []Finding     `json:"findings"`
	Elapsed    time.Duration `json:"elapsed"`
	TokenUsage *TokenUsage   `json:"tokenUsage,omitempty"`
}

// SeverityCounts holds finding counts by severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Report is the aggregate of all stage results for one pipeline run.
// Built exactly once per run, immutable thereafter.
type Report struct {
	RunID          string         `json:"runId"`
	Mode           string         `json:"mode,omitempty"`
	Ref            string         `json:"ref,omitempty"`
	DiffSummary    string         `json:"diffSummary,omitempty"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	StageResults   []StageResult  `json:"stageResults"`
	TotalFindings  int            `json:"totalFindings"`
	SeverityCounts SeverityCounts `json:"severityCounts"`
	StageCounts    map[string]int `json:"stageCounts"`
	TotalElapsed   time.Duration  `json:"totalElapsed"`
	TokenUsage     *TokenUsage    `json:"tokenUsage,omitempty"`
}

// Findings returns the concatenation of all stage findings in
// stage-execution order.
func (r *Report) Findings() []Finding {
	var all []Finding
	for _, sr := range r.StageResults {
		all = append(all, sr.Findings...)
	}
	return all
}

// HighestSeverity returns the most severe level present, or "" when the
// report is empty.
func (r *Report) HighestSeverity() Severity {
	var highest Severity
	for _, f := range r.Findings() {
		if SeverityRank(f.Severity) > SeverityRank(highest) {
			highest = f.Severity
		}
	}
	return highest
}

// Aggregate builds a Report from stage results in execution order. Counts
// come from a single pass over the concatenated findings, so ordering
// within a severity bucket is first-seen order.
func Aggregate(runID string, results []StageResult, elapsed time.Duration) *Report {
	r := &Report{
		RunID:        runID,
		GeneratedAt:  time.Now(),
		StageResults: results,
		StageCounts:  make(map[string]int, len(results)),
		TotalElapsed: elapsed,
	}

	var usage TokenUsage
	var sawUsage bool
	for _, sr := range results {
		r.StageCounts[sr.StageName] = len(sr.Findings)
		r.TotalFindings += len(sr.Findings)
		for _, f := range sr.Findings {
			switch f.Severity {
			case SeverityCritical:
				r.SeverityCounts.Critical++
			case SeverityHigh:
				r.SeverityCounts.High++
			case SeverityMedium:
				r.SeverityCounts.Medium++
			case SeverityLow:
				r.SeverityCounts.Low++
			}
		}
		if sr.TokenUsage != nil {
			usage = usage.Add(*sr.TokenUsage)
			sawUsage = true
		}
	}
	if sawUsage {
		r.TokenUsage = &usage
	}
	return r
}
