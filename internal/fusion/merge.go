// Package fusion builds the global landmark map from tracked objects and
// robot poses. It knows nothing about actors or the bus; the fusion actor in
// internal/services owns a Map and feeds it from its handlers.
package fusion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lguibr/slamwood/objects"
)

// Transform maps sensor-local points into the global frame: rotate by the
// pose yaw (degrees) around the origin, then translate by the pose position.
func Transform(pose objects.Pose, local []objects.CloudPoint) []objects.CloudPoint {
	if len(local) == 0 {
		return nil
	}
	alpha := pose.Yaw * math.Pi / 180
	origin := r2.Vec{X: pose.X, Y: pose.Y}
	out := make([]objects.CloudPoint, len(local))
	for i, p := range local {
		g := r2.Add(r2.Rotate(toVec(p), alpha, r2.Vec{}), origin)
		out[i] = fromVec(g)
	}
	return out
}

// Merge refines old with a new sighting. Indices present in both become the
// per-axis mean; trailing points of the longer list are kept as they are.
func Merge(old, sighting []objects.CloudPoint) []objects.CloudPoint {
	n := max(len(old), len(sighting))
	out := make([]objects.CloudPoint, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(old) && i < len(sighting):
			out[i] = fromVec(r2.Scale(0.5, r2.Add(toVec(old[i]), toVec(sighting[i]))))
		case i < len(old):
			out[i] = old[i]
		default:
			out[i] = sighting[i]
		}
	}
	return out
}

func toVec(p objects.CloudPoint) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) objects.CloudPoint { return objects.CloudPoint{X: v.X, Y: v.Y} }
