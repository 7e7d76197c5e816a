package registry

import (
	"sync"
	"sync/atomic"

	"github.com/lguibr/slamwood/objects"
)

// Crash describes the first sensor fault of a run.
type Crash struct {
	Sensor      string
	Tick        int
	Description string
}

// Faults records the first crash and the last good frame of every sensor.
// The first RecordCrash wins; later ones are discarded.
type Faults struct {
	crash atomic.Pointer[Crash]

	mu           sync.Mutex
	cameraFrames map[string]objects.StampedDetectedObjects
	lidarFrames  map[string][]objects.TrackedObject
}

func NewFaults() *Faults {
	return &Faults{
		cameraFrames: make(map[string]objects.StampedDetectedObjects),
		lidarFrames:  make(map[string][]objects.TrackedObject),
	}
}

// RecordCrash stores c if no crash was recorded yet. It reports whether c
// was the one kept.
func (f *Faults) RecordCrash(c Crash) bool {
	return f.crash.CompareAndSwap(nil, &c)
}

// Crash returns the recorded crash, if any.
func (f *Faults) Crash() (Crash, bool) {
	c := f.crash.Load()
	if c == nil {
		return Crash{}, false
	}
	return *c, true
}

// SetCameraFrame records the last frame camera emitted.
func (f *Faults) SetCameraFrame(camera string, frame objects.StampedDetectedObjects) {
	frame.DetectedObjects = append([]objects.DetectedObject(nil), frame.DetectedObjects...)
	f.mu.Lock()
	f.cameraFrames[camera] = frame
	f.mu.Unlock()
}

// SetLiDARFrame records the last tracked objects lidar emitted.
func (f *Faults) SetLiDARFrame(lidar string, frame []objects.TrackedObject) {
	frame = objects.CloneTracked(frame)
	f.mu.Lock()
	f.lidarFrames[lidar] = frame
	f.mu.Unlock()
}

// CameraFrames returns a copy of the last frame per camera.
func (f *Faults) CameraFrames() map[string]objects.StampedDetectedObjects {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]objects.StampedDetectedObjects, len(f.cameraFrames))
	for k, v := range f.cameraFrames {
		v.DetectedObjects = append([]objects.DetectedObject(nil), v.DetectedObjects...)
		out[k] = v
	}
	return out
}

// LiDARFrames returns a copy of the last tracked objects per LiDAR.
func (f *Faults) LiDARFrames() map[string][]objects.TrackedObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]objects.TrackedObject, len(f.lidarFrames))
	for k, v := range f.lidarFrames {
		out[k] = objects.CloneTracked(v)
	}
	return out
}
