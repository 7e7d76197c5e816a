// Package registry holds the process-wide shared state of a run: running
// counters for the success report and the fault registry for the error
// report. Instances are built once per run and handed to every actor.
package registry

import "sync/atomic"

// Statistics are the running counters of a run. Safe for concurrent use.
type Statistics struct {
	runtime   atomic.Int64
	detected  atomic.Int64
	tracked   atomic.Int64
	landmarks atomic.Int64
}

// Counters is a point-in-time copy of Statistics.
type Counters struct {
	SystemRuntime      int `json:"systemRuntime"`
	NumDetectedObjects int `json:"numDetectedObjects"`
	NumTrackedObjects  int `json:"numTrackedObjects"`
	NumLandmarks       int `json:"numLandmarks"`
}

func NewStatistics() *Statistics { return &Statistics{} }

// SetRuntime records the last tick emitted by the clock.
func (s *Statistics) SetRuntime(tick int) { s.runtime.Store(int64(tick)) }

func (s *Statistics) AddDetected(n int)  { s.detected.Add(int64(n)) }
func (s *Statistics) AddTracked(n int)   { s.tracked.Add(int64(n)) }
func (s *Statistics) AddLandmarks(n int) { s.landmarks.Add(int64(n)) }

// Snapshot returns the current counters.
func (s *Statistics) Snapshot() Counters {
	return Counters{
		SystemRuntime:      int(s.runtime.Load()),
		NumDetectedObjects: int(s.detected.Load()),
		NumTrackedObjects:  int(s.tracked.Load()),
		NumLandmarks:       int(s.landmarks.Load()),
	}
}
