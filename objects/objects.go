// Package objects holds the data model shared by sensors, the fusion actor and
// the reports: detections, cloud points, tracked objects, poses and landmarks.
package objects

// ErrorID marks a corrupted reading. A sensor that reads it crashes.
const ErrorID = "ERROR"

// DetectedObject is a single object seen by a camera.
type DetectedObject struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// IsError reports whether the detection is the corrupted-reading sentinel.
func (d DetectedObject) IsError() bool { return d.ID == ErrorID }

// StampedDetectedObjects is one camera frame: everything detected at Time.
type StampedDetectedObjects struct {
	Time            int              `json:"time"`
	DetectedObjects []DetectedObject `json:"detectedObjects"`
}

// Fault returns the first sentinel detection in the frame, if any.
func (s StampedDetectedObjects) Fault() (DetectedObject, bool) {
	for _, d := range s.DetectedObjects {
		if d.IsError() {
			return d, true
		}
	}
	return DetectedObject{}, false
}

// CloudPoint is a 2-D point. Its frame (sensor-local or global) depends on
// where it is stored.
type CloudPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StampedCloudPoints are the LiDAR returns for one object at one tick.
type StampedCloudPoints struct {
	ID          string       `json:"id"`
	Time        int          `json:"time"`
	CloudPoints []CloudPoint `json:"cloudPoints"`
}

// TrackedObject is a detection enriched with its sensor-local geometry.
type TrackedObject struct {
	ID          string       `json:"id"`
	Time        int          `json:"time"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}

// Pose is the robot position in the global frame at a tick. Yaw is in degrees.
type Pose struct {
	Time int     `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Yaw  float64 `json:"yaw"`
}

// LandMark is the global-frame estimate of one physical feature.
type LandMark struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Coordinates []CloudPoint `json:"coordinates"`
}

// Clone returns a deep copy.
func (l LandMark) Clone() LandMark {
	l.Coordinates = append([]CloudPoint(nil), l.Coordinates...)
	return l
}

// CloneTracked deep-copies a list of tracked objects.
func CloneTracked(in []TrackedObject) []TrackedObject {
	if in == nil {
		return nil
	}
	out := make([]TrackedObject, len(in))
	for i, t := range in {
		t.Coordinates = append([]CloudPoint(nil), t.Coordinates...)
		out[i] = t
	}
	return out
}
