package report

import (
	"fmt"
	"sync"
)

// Result is a test result held in memory by a Recorder.
type Result struct {
	Name        string
	Status      Status
	Message     string
	Finished    bool
	Attachments []Attachment
}

// Recorder is an in-memory Sink.
type Recorder struct {
	mu      sync.Mutex
	results map[string]*Result
	order   []string
}

func NewRecorder() *Recorder {
	return &Recorder{results: make(map[string]*Result)}
}

func (r *Recorder) StartTest(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.results[name]; !ok {
		r.order = append(r.order, name)
	}
	r.results[name] = &Result{Name: name}
	return nil
}

func (r *Recorder) Attach(test string, a Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[test]
	if !ok {
		res = &Result{Name: test}
		r.results[test] = res
		r.order = append(r.order, test)
	}
	data := append([]byte(nil), a.Data...)
	res.Attachments = append(res.Attachments, Attachment{Name: a.Name, MIMEType: a.MIMEType, Data: data})
	return nil
}

func (r *Recorder) FinishTest(name string, status Status, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTest, name)
	}
	res.Status = status
	res.Message = message
	res.Finished = true
	return nil
}

// Result returns a copy of the result recorded for name.
func (r *Recorder) Result(name string) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[name]
	if !ok {
		return Result{}, false
	}
	cp := *res
	cp.Attachments = append([]Attachment(nil), res.Attachments...)
	return cp, true
}

// Attachments returns the attachments of name with the given MIME type.
func (r *Recorder) Attachments(name, mimeType string) []Attachment {
	res, ok := r.Result(name)
	if !ok {
		return nil
	}
	var out []Attachment
	for _, a := range res.Attachments {
		if a.MIMEType == mimeType {
			out = append(out, a)
		}
	}
	return out
}

// Results returns every result in the order tests were first seen.
func (r *Recorder) Results() []Result {
	r.mu.Lock()
	names := append([]string(nil), r.order...)
	r.mu.Unlock()

	out := make([]Result, 0, len(names))
	for _, name := range names {
		if res, ok := r.Result(name); ok {
			out = append(out, res)
		}
	}
	return out
}
