package sensor

import "github.com/lguibr/slamwood/objects"

// GPSIMU replays the robot's pose recording, one pose per tick.
type GPSIMU struct {
	status objects.Status
	poses  map[int]objects.Pose
	last   int
}

func NewGPSIMU(poses []objects.Pose) *GPSIMU {
	g := &GPSIMU{poses: make(map[int]objects.Pose, len(poses))}
	for _, p := range poses {
		if _, dup := g.poses[p.Time]; dup {
			continue
		}
		g.poses[p.Time] = p
		g.last = max(g.last, p.Time)
	}
	return g
}

func (g *GPSIMU) Status() objects.Status { return g.status }

// LastTime is the latest tick the recording covers.
func (g *GPSIMU) LastTime() int { return g.last }

// Tick returns the pose of tick t. A tick the recording does not cover puts
// the source DOWN.
func (g *GPSIMU) Tick(t int) (objects.Pose, bool) {
	if g.status.Terminal() {
		return objects.Pose{}, false
	}
	p, ok := g.poses[t]
	if !ok {
		g.status = objects.StatusDown
		return objects.Pose{}, false
	}
	return p, true
}

// Stop puts an UP source DOWN. It reports whether the status changed.
func (g *GPSIMU) Stop() bool {
	if g.status.Terminal() {
		return false
	}
	g.status = objects.StatusDown
	return true
}
