package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the final report of a run.
type Sink interface {
	Publish(r Report) error
}

// FileSink writes the report as indented JSON to Dir/output_file.json.
type FileSink struct {
	Dir string
}

// Path is where Publish writes.
func (s FileSink) Path() string { return filepath.Join(s.Dir, FileName) }

func (s FileSink) Publish(r Report) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", s.Dir, err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(s.Path(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", s.Path(), err)
	}
	return nil
}

// Recorder keeps published reports in memory.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
	once    sync.Once
	done    chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{done: make(chan struct{})}
}

func (r *Recorder) Publish(rep Report) error {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
	return nil
}

// Done is closed once the first report is published.
func (r *Recorder) Done() <-chan struct{} { return r.done }

// Last returns the most recent report.
func (r *Recorder) Last() (Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reports) == 0 {
		return nil, false
	}
	return r.reports[len(r.reports)-1], true
}

// Count is the number of reports published so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Tee publishes to every sink and joins their errors.
type Tee []Sink

func (t Tee) Publish(r Report) error {
	var errs []error
	for _, s := range t {
		if err := s.Publish(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
