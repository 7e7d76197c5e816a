// Package report defines the final records of a run and where they go.
package report

import (
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/objects"
)

// FileName is the name of the report written into the output directory.
const FileName = "output_file.json"

// Report is either a *Success or a *Failure.
type Report interface {
	Failed() bool
	ID() string
}

// Success is the report of a run in which no sensor crashed.
type Success struct {
	RunID string `json:"runId"`
	registry.Counters
	LandMarks []objects.LandMark `json:"landMarks"`
}

func (*Success) Failed() bool  { return false }
func (s *Success) ID() string { return s.RunID }

// Failure is the report of a run cut short by a sensor crash.
type Failure struct {
	RunID                        string                                    `json:"runId"`
	Error                        string                                    `json:"error"`
	FaultySensor                 string                                    `json:"faultySensor"`
	CrashTick                    int                                       `json:"crashTick"`
	LastCamerasFrame             map[string]objects.StampedDetectedObjects `json:"lastCamerasFrame"`
	LastLiDarWorkerTrackersFrame map[string][]objects.TrackedObject        `json:"lastLiDarWorkerTrackersFrame"`
	Poses                        []objects.Pose                            `json:"poses"`
	Statistics                   registry.Counters                         `json:"statistics"`
	LandMarks                    []objects.LandMark                        `json:"landMarks"`
}

func (*Failure) Failed() bool  { return true }
func (f *Failure) ID() string { return f.RunID }

func NewSuccess(runID string, stats registry.Counters, landmarks []objects.LandMark) *Success {
	if landmarks == nil {
		landmarks = []objects.LandMark{}
	}
	return &Success{RunID: runID, Counters: stats, LandMarks: landmarks}
}

// NewFailure builds the error report from the fault registry. The crash is
// passed separately so the caller decides what to do when none is recorded.
func NewFailure(runID string, crash registry.Crash, faults *registry.Faults, poses []objects.Pose, stats registry.Counters, landmarks []objects.LandMark) *Failure {
	if poses == nil {
		poses = []objects.Pose{}
	}
	if landmarks == nil {
		landmarks = []objects.LandMark{}
	}
	return &Failure{
		RunID:                        runID,
		Error:                        crash.Description,
		FaultySensor:                 crash.Sensor,
		CrashTick:                    crash.Tick,
		LastCamerasFrame:             faults.CameraFrames(),
		LastLiDarWorkerTrackersFrame: faults.LiDARFrames(),
		Poses:                        poses,
		Statistics:                   stats,
		LandMarks:                    landmarks,
	}
}
