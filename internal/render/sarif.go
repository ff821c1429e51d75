package render

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/facet/internal/finding"
)

// SARIFRenderer outputs findings in SARIF v2.1.0 format for code-scanning
// integrations.
type SARIFRenderer struct{}

func (s *SARIFRenderer) Format() string { return "sarif" }

func (s *SARIFRenderer) Render(w io.Writer, report *finding.Report) error {
	log := buildSARIF(report)
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

func buildSARIF(report *finding.Report) sarifLog {
	findings := report.Findings()
	rulesMap := make(map[string]sarifRule)
	var ruleOrder []string
	results := make([]sarifResult, 0, len(findings))

	for _, f := range findings {
		ruleID := ruleIDFor(f)
		if _, ok := rulesMap[ruleID]; !ok {
			rulesMap[ruleID] = sarifRule{
				ID:               ruleID,
				Name:             f.Category,
				ShortDescription: sarifMessage{Text: f.Category},
				DefaultConfig:    sarifDefaultConfig{Level: kindToLevel(f.Kind)},
			}
			ruleOrder = append(ruleOrder, ruleID)
		}

		result := sarifResult{
			RuleID:  ruleID,
			Level:   kindToLevel(f.Kind),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.File},
					Region:           sarifRegion{StartLine: f.Line},
				},
			}},
		}
		if f.Suggestion != "" {
			result.Fixes = append(result.Fixes, sarifFix{Description: sarifMessage{Text: f.Suggestion}})
		}
		results = append(results, result)
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, id := range ruleOrder {
		rules = append(rules, rulesMap[id])
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "facet",
					InformationURI: "https://github.com/dshills/facet",
					Rules:          rules,
				},
			},
			Results: results,
		}},
	}
}

// kindToLevel maps a finding kind to a SARIF level.
func kindToLevel(k finding.Kind) string {
	switch k {
	case finding.KindError:
		return "error"
	case finding.KindWarning:
		return "warning"
	default:
		return "note"
	}
}

// ruleIDFor creates a stable rule ID from category + severity.
func ruleIDFor(f finding.Finding) string {
	h := sha256.Sum256([]byte(f.Category + "/" + string(f.Severity)))
	return fmt.Sprintf("facet/%s/%x", f.Category, h[:4])
}
