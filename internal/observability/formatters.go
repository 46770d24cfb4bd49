// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printNotice prints a one-line box.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printNotice(message string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, message)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// shorten truncates s to limit runes, marking the cut with "...".
func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// PrintJob outputs a summary of the job being ranked against.
func (p *Printer) PrintJob(job *types.JobOpening) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", job.ID))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	if job.ClientName != "" {
		sb.WriteString(fmt.Sprintf("Client:   %s\n", job.ClientName))
	}
	if job.ClientFocus != "" {
		sb.WriteString(fmt.Sprintf("Focus:    %s\n", job.ClientFocus))
	}
	where := strings.Trim(strings.Join([]string{job.City, job.State}, ", "), ", ")
	if where == "" {
		where = "(no location)"
	}
	sb.WriteString(fmt.Sprintf("Location: %s [%s]", where, job.Mode))

	p.printBox("JOB OPENING", sb.String())
}

// PrintSkillTargets outputs the weighted skills extracted from the job.
func (p *Printer) PrintSkillTargets(targets []types.SkillTarget) {
	if len(targets) == 0 {
		p.printNotice("NO SKILLS EXTRACTED FROM JOB")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d skills:\n\n", len(targets)))

	count := min(len(targets), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		t := targets[i]
		sb.WriteString(fmt.Sprintf("  • %-20s %.2f", t.Name, t.Weight))
		if t.ClientFocus {
			sb.WriteString("  ★ client focus")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(targets) > count {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(targets)-count))
	}

	p.printBox("SKILL TARGETS", sb.String())
}

// PrintMatchResults outputs the top ranked candidates with sub-scores and reasons.
func (p *Printer) PrintMatchResults(results []types.MatchResult) {
	if len(results) == 0 {
		p.printNotice("NO CANDIDATES ABOVE THRESHOLD")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total candidates ranked: %d\n\n", len(results)))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		name := r.CandidateID
		if r.CandidateName != "" {
			name = fmt.Sprintf("%s (%s)", r.CandidateName, r.CandidateID)
		}
		sb.WriteString(fmt.Sprintf("#%d  %s  score %d\n", i+1, name, r.Score))
		s := r.SubScores
		sb.WriteString(fmt.Sprintf("    T %.2f  S %.2f  L %.2f  C %.2f  X %.2f\n",
			s.Title, s.Skill, s.Location, s.Client, s.Seniority))
		for j, reason := range r.Reasons {
			if j == 3 {
				sb.WriteString(fmt.Sprintf("    ... and %d more reasons\n", len(r.Reasons)-3))
				break
			}
			sb.WriteString(fmt.Sprintf("    • %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(results)-maxItemsToShow))
	}

	p.printBox("TOP RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSimilarity outputs similar employment histories, flagging suspicious ones.
func (p *Printer) PrintSimilarity(report *types.SimilarityReport) {
	if report == nil || len(report.Matches) == 0 {
		p.printNotice("✅ NO SIMILAR HISTORIES FOUND")
		return
	}

	var sb strings.Builder
	if report.Suspicious {
		sb.WriteString("⚠ Suspicious: high similarity or identical chronology\n\n")
	}
	sb.WriteString(fmt.Sprintf("Found %d similar histories:\n\n", len(report.Matches)))

	count := min(len(report.Matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := report.Matches[i]
		sb.WriteString(fmt.Sprintf("%s  similarity %d\n", m.CandidateID, m.Similarity))
		sb.WriteString(fmt.Sprintf("    companies %.0f%%  dates %.0f%%\n", m.CompanyMatchPercentage, m.DateMatchPercentage))

		flags := []string{}
		if m.HighSimilarity {
			flags = append(flags, "high")
		}
		if m.ChronologyMatch {
			flags = append(flags, "in order")
		}
		if m.IdenticalChronology {
			flags = append(flags, "identical chronology")
		}
		if len(flags) > 0 {
			sb.WriteString(fmt.Sprintf("    [%s]\n", strings.Join(flags, ", ")))
		}
		if len(m.MatchedOrganizations) > 0 {
			sb.WriteString(fmt.Sprintf("    Orgs: %s\n", strings.Join(m.MatchedOrganizations, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(report.Matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches", len(report.Matches)-maxItemsToShow))
	}

	p.printBox("SIMILAR EMPLOYMENT HISTORIES", strings.TrimSuffix(sb.String(), "\n"))
}
