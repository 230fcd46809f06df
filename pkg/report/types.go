package report

import "errors"

// Status is the final state of a reported test, using the Allure vocabulary.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusBroken  Status = "broken"
	StatusSkipped Status = "skipped"
)

// MIME types used for failure evidence.
const (
	MIMEPNG  = "image/png"
	MIMEText = "text/plain"
	MIMEHTML = "text/html"
)

// ErrUnknownTest is returned when a test is finished without being started.
var ErrUnknownTest = errors.New("unknown test")

// Attachment is a named piece of evidence attached to a test result.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Sink receives test results and their attachments. Implementations must be
// safe for concurrent use; tests of different workers report in parallel.
type Sink interface {
	// StartTest opens a result for name, discarding attachments left over
	// from an earlier run of the same name.
	StartTest(name string) error

	// Attach adds evidence to the open result for test.
	Attach(test string, a Attachment) error

	// FinishTest closes the result for name.
	FinishTest(name string, status Status, message string) error
}

// Multi fans every call out to all sinks. Every sink is called even when an
// earlier one fails; the failures are joined.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) StartTest(name string) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.StartTest(name))
	}
	return errors.Join(errs...)
}

func (m multiSink) Attach(test string, a Attachment) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Attach(test, a))
	}
	return errors.Join(errs...)
}

func (m multiSink) FinishTest(name string, status Status, message string) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.FinishTest(name, status, message))
	}
	return errors.Join(errs...)
}

func extension(mimeType string) string {
	switch mimeType {
	case MIMEPNG:
		return "png"
	case MIMEHTML:
		return "html"
	case MIMEText:
		return "txt"
	default:
		return "bin"
	}
}
