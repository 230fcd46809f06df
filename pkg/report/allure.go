package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/logging"
	"github.com/google/uuid"
	"github.com/magiconair/properties"
)

// AllureWriter writes results in the Allure 2 file format: one
// <uuid>-result.json per test and one <uuid>-attachment.<ext> per
// attachment, all in a single directory.
type AllureWriter struct {
	dir   string
	suite string

	mu      sync.Mutex
	running map[string]*allureResult
	log     *logging.Logger
}

type allureResult struct {
	UUID          string             `json:"uuid"`
	HistoryID     string             `json:"historyId"`
	Name          string             `json:"name"`
	FullName      string             `json:"fullName"`
	Status        Status             `json:"status"`
	StatusDetails *allureDetails     `json:"statusDetails,omitempty"`
	Stage         string             `json:"stage"`
	Start         int64              `json:"start"`
	Stop          int64              `json:"stop"`
	Labels        []allureLabel      `json:"labels"`
	Attachments   []allureAttachment `json:"attachments"`
}

type allureDetails struct {
	Message string `json:"message,omitempty"`
}

type allureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type allureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// NewAllureWriter creates the results directory if needed.
func NewAllureWriter(dir, suite string) (*AllureWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &AllureWriter{
		dir:     dir,
		suite:   suite,
		running: make(map[string]*allureResult),
		log:     logging.MustLogger("report"),
	}, nil
}

// Dir returns the results directory.
func (w *AllureWriter) Dir() string {
	return w.dir
}

func (w *AllureWriter) StartTest(name string) error {
	now := time.Now().UnixMilli()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running[name] = &allureResult{
		UUID:        uuid.New().String(),
		HistoryID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte(w.suite+"/"+name)).String(),
		Name:        name,
		FullName:    w.suite + "." + name,
		Stage:       "running",
		Start:       now,
		Labels:      w.labels(),
		Attachments: []allureAttachment{},
	}
	return nil
}

func (w *AllureWriter) labels() []allureLabel {
	return []allureLabel{
		{Name: "suite", Value: w.suite},
		{Name: "framework", Value: "playwright-go"},
		{Name: "language", Value: "go"},
	}
}

// Attach writes the attachment file right away. Attaching to a test that was
// never started opens a result for it.
func (w *AllureWriter) Attach(test string, a Attachment) error {
	w.mu.Lock()
	res, ok := w.running[test]
	w.mu.Unlock()
	if !ok {
		if err := w.StartTest(test); err != nil {
			return err
		}
		w.mu.Lock()
		res = w.running[test]
		w.mu.Unlock()
	}

	source := fmt.Sprintf("%s-attachment.%s", uuid.New().String(), extension(a.MIMEType))
	if err := os.WriteFile(filepath.Join(w.dir, source), a.Data, 0644); err != nil {
		return fmt.Errorf("failed to write attachment %q: %w", a.Name, err)
	}

	w.mu.Lock()
	res.Attachments = append(res.Attachments, allureAttachment{
		Name:   a.Name,
		Source: source,
		Type:   a.MIMEType,
	})
	w.mu.Unlock()
	w.log.Debugf("Attached %s (%s, %d bytes) to %s", a.Name, a.MIMEType, len(a.Data), test)
	return nil
}

func (w *AllureWriter) FinishTest(name string, status Status, message string) error {
	w.mu.Lock()
	res, ok := w.running[name]
	delete(w.running, name)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTest, name)
	}

	res.Status = status
	res.Stage = "finished"
	res.Stop = time.Now().UnixMilli()
	if message != "" {
		res.StatusDetails = &allureDetails{Message: message}
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", name, err)
	}
	path := filepath.Join(w.dir, res.UUID+"-result.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result for %s: %w", name, err)
	}
	w.log.Debugf("Wrote %s result for %s to %s", status, name, path)
	return nil
}

// WriteEnvironment records run parameters in environment.properties, which
// Allure shows on the report overview.
func (w *AllureWriter) WriteEnvironment(env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := properties.NewProperties()
	for _, k := range keys {
		if _, _, err := p.Set(k, env[k]); err != nil {
			return fmt.Errorf("failed to set environment %s: %w", k, err)
		}
	}

	f, err := os.Create(filepath.Join(w.dir, "environment.properties"))
	if err != nil {
		return fmt.Errorf("failed to create environment file: %w", err)
	}
	defer f.Close()
	if _, err := p.Write(f, properties.UTF8); err != nil {
		return fmt.Errorf("failed to write environment file: %w", err)
	}
	return nil
}
