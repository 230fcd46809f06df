package lifecycle

import (
	"fmt"
	"io"

	"github.com/entrhq/storefront-e2e/pkg/report"
)

// Tally records every outcome in a report.Summary and prints it when the
// suite ends.
type Tally struct {
	Summary *report.Summary
	Out     io.Writer
}

func NewTally(suite string, out io.Writer) *Tally {
	return &Tally{Summary: report.NewSummary(suite), Out: out}
}

func (t *Tally) BeforeSuite(name string)  {}
func (t *Tally) BeforeTest(info TestInfo) {}

func (t *Tally) AfterTest(ev Event) {
	t.Summary.Record(ev.Name, ev.Outcome.String(), ev.Cause)
}

func (t *Tally) AfterSuite(name string) {
	if t.Out == nil {
		return
	}
	fmt.Fprintln(t.Out, t.Summary.Render())
}
