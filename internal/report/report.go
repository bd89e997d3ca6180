// Package report renders an aggregate scan report for the console or as
// JSON.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"codecritic/internal/config"
	"codecritic/internal/models"
)

// Generator handles formatting and displaying scan results
type Generator struct {
	format string
	config *config.Config
}

// NewGenerator creates a new report generator
func NewGenerator(format string) *Generator {
	return &Generator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from an aggregate scan report
func (r *Generator) Generate(report *models.AggregateReport) string {
	switch r.format {
	case "json":
		return r.generateJSON(report)
	default:
		return r.generateConsole(report)
	}
}

// generateJSON creates a JSON report
func (r *Generator) generateJSON(report *models.AggregateReport) string {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

// generateConsole creates a colorized console report
func (r *Generator) generateConsole(result *models.AggregateReport) string {
	var report strings.Builder

	useColors := true
	verbose := false
	showSuggestions := true
	if r.config != nil {
		useColors = r.config.Output.Colors
		verbose = r.config.Output.Verbose
		showSuggestions = r.config.Output.ShowSuggestions
	}

	// Header
	if useColors {
		report.WriteString(color.CyanString("🔍 CodeCritic Review Report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("CodeCritic Review Report\n")
		report.WriteString("=======================================\n\n")
	}

	if verbose {
		r.writeScanInfo(&report, result, useColors)
	}

	r.writeVerdict(&report, result, useColors)
	r.writeQualityScore(&report, result, useColors)

	if len(result.Issues) > 0 {
		r.writeSeverityBreakdown(&report, result, useColors)
		if showSuggestions {
			report.WriteString("\n")
			r.writeDetailedIssues(&report, result, useColors)
		}
	} else {
		if useColors {
			report.WriteString(color.GreenString("🎉 No issues detected! Great job!\n\n"))
		} else {
			report.WriteString("No issues detected! Great job!\n\n")
		}
	}

	for _, praise := range result.Praise {
		if useColors {
			report.WriteString(color.GreenString("👍 %s\n", praise))
		} else {
			report.WriteString(fmt.Sprintf("%s\n", praise))
		}
	}

	if useColors {
		report.WriteString(color.WhiteString("\nScan completed in %.2fms\n", result.ScanDurationMS))
	} else {
		report.WriteString(fmt.Sprintf("\nScan completed in %.2fms\n", result.ScanDurationMS))
	}

	return report.String()
}

func (r *Generator) writeScanInfo(report *strings.Builder, result *models.AggregateReport, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📋 Scan:\n"))
		report.WriteString(fmt.Sprintf("   Review ID: %s\n", color.CyanString(result.ReviewID)))
		report.WriteString(fmt.Sprintf("   Timestamp: %s\n", color.CyanString(result.Timestamp)))
	} else {
		report.WriteString("Scan:\n")
		report.WriteString(fmt.Sprintf("   Review ID: %s\n", result.ReviewID))
		report.WriteString(fmt.Sprintf("   Timestamp: %s\n", result.Timestamp))
	}
	report.WriteString("\n")
}

func (r *Generator) writeVerdict(report *strings.Builder, result *models.AggregateReport, useColors bool) {
	var verdictColor func(a ...interface{}) string
	var emoji string
	switch result.Verdict {
	case models.VerdictApprove:
		verdictColor = color.New(color.FgGreen, color.Bold).SprintFunc()
		emoji = "✅"
	case models.VerdictCommentOnly:
		verdictColor = color.New(color.FgYellow, color.Bold).SprintFunc()
		emoji = "💬"
	default:
		verdictColor = color.New(color.FgRed, color.Bold).SprintFunc()
		emoji = "🛑"
	}

	if useColors {
		report.WriteString(fmt.Sprintf("%s Verdict: %s  (risk: %s)\n",
			emoji, verdictColor(string(result.Verdict)), result.RiskLevel))
	} else {
		report.WriteString(fmt.Sprintf("Verdict: %s  (risk: %s)\n", result.Verdict, result.RiskLevel))
	}
	report.WriteString(fmt.Sprintf("   %s\n\n", result.Summary))
}

// writeQualityScore writes the quality score with color coding
func (r *Generator) writeQualityScore(report *strings.Builder, result *models.AggregateReport, useColors bool) {
	score := result.QualityScore
	approve := 90
	commentOnly := 70
	if r.config != nil {
		approve = r.config.Scoring.Verdicts.Approve
		commentOnly = r.config.Scoring.Verdicts.CommentOnly
	}

	var scoreColor func(a ...interface{}) string
	var emoji string
	switch {
	case score >= approve:
		scoreColor = color.New(color.FgGreen).SprintFunc()
		emoji = "🌟"
	case score >= commentOnly:
		scoreColor = color.New(color.FgYellow).SprintFunc()
		emoji = "⚡"
	default:
		scoreColor = color.New(color.FgRed).SprintFunc()
		emoji = "🚨"
	}

	if useColors {
		scoreText := scoreColor(fmt.Sprintf("%d", score))
		report.WriteString(fmt.Sprintf("%s Quality Score: %s/100\n\n", emoji, scoreText))
	} else {
		report.WriteString(fmt.Sprintf("Quality Score: %d/100\n\n", score))
	}
}

// getSeverityDisplay returns emoji and color function for a severity level
func (r *Generator) getSeverityDisplay(severity string) (string, func(a ...interface{}) string) {
	switch severity {
	case "CRITICAL":
		return "🚨", color.New(color.FgRed, color.Bold).SprintFunc()
	case "HIGH":
		return "❌", color.New(color.FgRed).SprintFunc()
	case "MEDIUM":
		return "⚠️", color.New(color.FgYellow).SprintFunc()
	case "LOW":
		return "ℹ️", color.New(color.FgBlue).SprintFunc()
	case "NITPICK":
		return "✏️", color.New(color.FgWhite).SprintFunc()
	default:
		return "❓", color.New(color.FgWhite).SprintFunc()
	}
}

func (r *Generator) writeSeverityBreakdown(report *strings.Builder, result *models.AggregateReport, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📋 Issues by Severity:\n"))
	} else {
		report.WriteString("Issues by Severity:\n")
	}

	counts := map[string]int{}
	for _, issue := range result.Issues {
		counts[issue.Severity.String()]++
	}
	severities := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "NITPICK"}
	for _, severity := range severities {
		count := counts[severity]
		if count > 0 {
			if useColors {
				emoji, colorFunc := r.getSeverityDisplay(severity)
				countText := colorFunc(fmt.Sprintf("%d", count))
				report.WriteString(fmt.Sprintf("   %s %s: %s\n", emoji, severity, countText))
			} else {
				report.WriteString(fmt.Sprintf("   %s: %d\n", severity, count))
			}
		}
	}
}

func (r *Generator) writeDetailedIssues(report *strings.Builder, result *models.AggregateReport, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("\n🔍 Detailed Issues:\n"))
	} else {
		report.WriteString("\nDetailed Issues:\n")
	}
	report.WriteString(strings.Repeat("─", 50) + "\n\n")

	// Sort issues by severity (critical first), then location
	sortedIssues := make([]models.Issue, len(result.Issues))
	copy(sortedIssues, result.Issues)
	sort.SliceStable(sortedIssues, func(i, j int) bool {
		return sortedIssues[i].Severity > sortedIssues[j].Severity
	})

	for i, issue := range sortedIssues {
		r.writeIssueDetail(report, issue, i+1, useColors)
		report.WriteString("\n")
	}
}

func (r *Generator) writeIssueDetail(report *strings.Builder, issue models.Issue, index int, useColors bool) {
	location := fmt.Sprintf("%s:%d", issue.FilePath, issue.LineStart)
	if issue.LineEnd > issue.LineStart {
		location = fmt.Sprintf("%s:%d-%d", issue.FilePath, issue.LineStart, issue.LineEnd)
	}

	if useColors {
		emoji, severityColor := r.getSeverityDisplay(issue.Severity.String())

		report.WriteString(fmt.Sprintf("%s Issue #%d - %s %s\n",
			emoji, index, severityColor(issue.Severity.String()),
			color.WhiteString(string(issue.Category))))
		report.WriteString(color.CyanString("   📍 Location: %s\n", location))
		report.WriteString(color.WhiteString("   💭 %s: %s\n", issue.Title, issue.Body))
		if issue.PolicyTag != "" {
			report.WriteString(color.YellowString("   📜 Policy: %s\n", issue.PolicyTag))
		}
		if issue.Suggestion != "" {
			report.WriteString(color.GreenString("   💡 Suggestion:\n"))
			for _, line := range strings.Split(issue.Suggestion, "\n") {
				if strings.TrimSpace(line) != "" {
					report.WriteString(color.GreenString("      %s\n", strings.TrimSpace(line)))
				}
			}
		}
	} else {
		report.WriteString(fmt.Sprintf("Issue #%d - %s %s\n",
			index, issue.Severity.String(), issue.Category))
		report.WriteString(fmt.Sprintf("   Location: %s\n", location))
		report.WriteString(fmt.Sprintf("   %s: %s\n", issue.Title, issue.Body))
		if issue.PolicyTag != "" {
			report.WriteString(fmt.Sprintf("   Policy: %s\n", issue.PolicyTag))
		}
		if issue.Suggestion != "" {
			report.WriteString("   Suggestion:\n")
			for _, line := range strings.Split(issue.Suggestion, "\n") {
				if strings.TrimSpace(line) != "" {
					report.WriteString(fmt.Sprintf("      %s\n", strings.TrimSpace(line)))
				}
			}
		}
	}
}
