package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/config"
	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/logging"
	"github.com/entrhq/storefront-e2e/pkg/report"
)

// Sessions is the part of the session registry the listener drives.
// *driver.Registry implements it.
type Sessions interface {
	Lookup(worker driver.WorkerID) (*driver.Session, bool)
	Close(worker driver.WorkerID)
	CloseAll()
}

// Options control failure evidence.
type Options struct {
	// ScreenshotOnFailure attaches a PNG of the failing page
	ScreenshotOnFailure bool

	// ScreenshotDir also receives a copy of every failure screenshot; empty
	// keeps screenshots in the report only
	ScreenshotDir string

	// DOMSnapshot writes a reduced copy of the failing page's DOM next to
	// the screenshot
	DOMSnapshot bool
}

// OptionsFromConfig reads the failure evidence settings.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	shots, err := cfg.ScreenshotOnFailure()
	if err != nil {
		return Options{}, err
	}
	dom, err := cfg.DOMSnapshotOnFailure()
	if err != nil {
		return Options{}, err
	}
	return Options{
		ScreenshotOnFailure: shots,
		ScreenshotDir:       cfg.ScreenshotDirectory(),
		DOMSnapshot:         dom,
	}, nil
}

// Listener logs test transitions, reports results, captures evidence of
// failures and closes the worker's session after every test.
type Listener struct {
	sessions Sessions
	sink     report.Sink
	opts     Options
	log      *logging.Logger
	now      func() time.Time
}

func NewListener(sessions Sessions, sink report.Sink, opts Options) *Listener {
	return &Listener{
		sessions: sessions,
		sink:     sink,
		opts:     opts,
		log:      logging.MustLogger("lifecycle"),
		now:      time.Now,
	}
}

const rule = "----------------------------------------------------------------"

func (l *Listener) BeforeSuite(name string) {
	l.log.Infof("%s", strings.Repeat("=", len(rule)))
	l.log.Infof("Starting suite: %s", name)
	l.log.Infof("%s", strings.Repeat("=", len(rule)))
}

func (l *Listener) BeforeTest(info TestInfo) {
	l.log.Infof("%s", rule)
	l.log.Infof("> Starting test: %s", info.Name)
	l.log.Infof("  Worker: %s", info.Worker)
	l.log.Infof("%s", rule)
	if err := l.sink.StartTest(info.Name); err != nil {
		l.log.Errorf("Failed to open report entry for %s: %v", info.Name, err)
	}
}

func (l *Listener) AfterTest(ev Event) {
	switch ev.Outcome {
	case Passed:
		l.log.Infof("PASSED: %s (%s)", ev.Name, ev.Duration.Round(time.Millisecond))
		l.finish(ev, report.StatusPassed)
		l.sessions.Close(ev.Worker)
	case Failed:
		l.log.Errorf("FAILED: %s (%s)", ev.Name, ev.Duration.Round(time.Millisecond))
		l.log.Errorf("  Cause: %s", ev.Cause)
		l.collectEvidence(ev)
		l.finish(ev, report.StatusFailed)
		l.sessions.Close(ev.Worker)
	case Aborted:
		l.log.Warnf("ABORTED: %s", ev.Name)
		l.log.Warnf("  Cause: %s", ev.Cause)
		l.finish(ev, report.StatusSkipped)
		l.sessions.Close(ev.Worker)
	case Disabled:
		reason := ev.Cause
		if reason == "" {
			reason = "not given"
		}
		l.log.Warnf("DISABLED: %s", ev.Name)
		l.log.Warnf("  Reason: %s", reason)
	default:
		l.log.Errorf("Unknown outcome %s for %s", ev.Outcome, ev.Name)
		l.sessions.Close(ev.Worker)
	}
}

func (l *Listener) AfterSuite(name string) {
	l.log.Infof("%s", strings.Repeat("=", len(rule)))
	l.log.Infof("Finished suite: %s", name)
	l.log.Infof("%s", strings.Repeat("=", len(rule)))
	l.sessions.CloseAll()
}

func (l *Listener) finish(ev Event, status report.Status) {
	if err := l.sink.FinishTest(ev.Name, status, ev.Cause); err != nil {
		l.log.Errorf("Failed to report %s: %v", ev.Name, err)
	}
}

// collectEvidence attaches one screenshot (when enabled and a session exists)
// and one failure message. Capture problems are logged, never reported.
func (l *Listener) collectEvidence(ev Event) {
	session, ok := l.sessions.Lookup(ev.Worker)
	stamp := l.now().Format("20060102-150405.000")

	if l.opts.ScreenshotOnFailure {
		if ok {
			l.screenshot(ev.Name, stamp, session)
		} else {
			l.log.Warnf("No session for %s, skipping screenshot", ev.Name)
		}
	}

	if err := l.sink.Attach(ev.Name, report.Attachment{
		Name:     "Failure",
		MIMEType: report.MIMEText,
		Data:     []byte(ev.Cause),
	}); err != nil {
		l.log.Errorf("Failed to attach failure message for %s: %v", ev.Name, err)
	}

	if l.opts.DOMSnapshot && ok {
		l.snapshot(ev.Name, stamp, session)
	}
}

func (l *Listener) screenshot(test, stamp string, session *driver.Session) {
	data, err := session.Screenshot()
	if err != nil {
		l.log.Errorf("Could not take failure screenshot for %s: %v", test, err)
		return
	}
	if err := l.sink.Attach(test, report.Attachment{
		Name:     "Screenshot: " + test,
		MIMEType: report.MIMEPNG,
		Data:     data,
	}); err != nil {
		l.log.Errorf("Failed to attach screenshot for %s: %v", test, err)
	} else {
		l.log.Infof("Failure screenshot attached for %s", test)
	}

	if l.opts.ScreenshotDir == "" {
		return
	}
	path, err := l.save(test, stamp, ".png", data)
	if err != nil {
		l.log.Errorf("Could not save screenshot for %s: %v", test, err)
		return
	}
	l.log.Infof("Screenshot saved: %s", path)
}

func (l *Listener) snapshot(test, stamp string, session *driver.Session) {
	snap, err := session.Snapshot(driver.DefaultSnapshotLength)
	if err != nil {
		l.log.Errorf("Could not capture DOM for %s: %v", test, err)
		return
	}
	path, err := l.save(test, stamp, ".dom.txt", []byte(snap.String()))
	if err != nil {
		l.log.Errorf("Could not save DOM snapshot for %s: %v", test, err)
		return
	}
	l.log.Infof("DOM snapshot saved: %s", path)
}

func (l *Listener) save(test, stamp, ext string, data []byte) (string, error) {
	dir := l.opts.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(test)+"_"+stamp+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName turns a test name such as "TestLogin/locked_user" into a name
// safe to use as a file name.
func FileName(test string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(test, "_"), "_")
	if name == "" {
		return "test"
	}
	return name
}
