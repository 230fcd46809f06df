package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	mintGreen  = lipgloss.Color("#A8E6CF")
	salmonPink = lipgloss.Color("#FFB3BA")
	amber      = lipgloss.Color("#FFD580")
	mutedGray  = lipgloss.Color("#6B7280")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(salmonPink)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	causeStyle = lipgloss.NewStyle().
			Foreground(mutedGray)
)

// outcomeOrder fixes the row order; unknown outcomes sort after it.
var outcomeOrder = []string{"passed", "failed", "aborted", "disabled"}

var outcomeColors = map[string]lipgloss.Color{
	"passed":   mintGreen,
	"failed":   salmonPink,
	"aborted":  amber,
	"disabled": mutedGray,
}

// SummaryRow is one recorded test.
type SummaryRow struct {
	Name    string
	Outcome string
	Cause   string
}

// Summary tallies outcomes for the end-of-run console report.
type Summary struct {
	title string

	mu   sync.Mutex
	rows []SummaryRow
}

func NewSummary(title string) *Summary {
	return &Summary{title: title}
}

// Record adds a test outcome.
func (s *Summary) Record(name, outcome, cause string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, SummaryRow{Name: name, Outcome: outcome, Cause: cause})
}

// Counts returns the number of tests per outcome.
func (s *Summary) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range s.rows {
		counts[r.Outcome]++
	}
	return counts
}

// Total is the number of recorded tests.
func (s *Summary) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Failures returns the failed rows sorted by name.
func (s *Summary) Failures() []SummaryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SummaryRow
	for _, r := range s.rows {
		if r.Outcome == "failed" {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func outcomes(counts map[string]int) []string {
	known := make(map[string]bool, len(outcomeOrder))
	out := make([]string, 0, len(counts))
	for _, o := range outcomeOrder {
		known[o] = true
		if counts[o] > 0 {
			out = append(out, o)
		}
	}
	var extra []string
	for o := range counts {
		if !known[o] {
			extra = append(extra, o)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Render formats the summary as a bordered box for the terminal.
func (s *Summary) Render() string {
	counts := s.Counts()

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.title))
	fmt.Fprintf(&b, "\n%d tests", s.Total())
	for _, o := range outcomes(counts) {
		color, ok := outcomeColors[o]
		if !ok {
			color = mutedGray
		}
		label := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-9s", o))
		fmt.Fprintf(&b, "\n  %s %d", label, counts[o])
	}

	if failures := s.Failures(); len(failures) > 0 {
		b.WriteString("\n\nFailures:")
		for _, f := range failures {
			fmt.Fprintf(&b, "\n  %s", f.Name)
			if f.Cause != "" {
				fmt.Fprintf(&b, "\n    %s", causeStyle.Render(firstLine(f.Cause)))
			}
		}
	}
	return boxStyle.Render(b.String())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
