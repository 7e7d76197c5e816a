package objects

import (
	"fmt"
	"strings"
)

// Actor names. Peers classify Terminated and Crashed senders by prefix.
const (
	CameraPrefix = "Camera"
	LiDARPrefix  = "LiDarWorkerTracker"
	PoseName     = "PoseService"
	ClockName    = "TimeService"
	FusionName   = "FusionSlam"
)

// ActorKind classifies an actor by its name.
type ActorKind int

const (
	KindUnknown ActorKind = iota
	KindCamera
	KindLiDAR
	KindPose
	KindClock
	KindFusion
)

func (k ActorKind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindLiDAR:
		return "lidar"
	case KindPose:
		return "pose"
	case KindClock:
		return "clock"
	case KindFusion:
		return "fusion"
	default:
		return "unknown"
	}
}

// CameraName returns the actor name of camera id.
func CameraName(id int) string { return fmt.Sprintf("%s%d", CameraPrefix, id) }

// LiDARName returns the actor name of LiDAR tracker id.
func LiDARName(id int) string { return fmt.Sprintf("%s%d", LiDARPrefix, id) }

// KindOf classifies name by the naming convention above.
func KindOf(name string) ActorKind {
	switch {
	case name == PoseName:
		return KindPose
	case name == ClockName:
		return KindClock
	case name == FusionName:
		return KindFusion
	case strings.HasPrefix(name, LiDARPrefix):
		return KindLiDAR
	case strings.HasPrefix(name, CameraPrefix):
		return KindCamera
	default:
		return KindUnknown
	}
}

// IsProducer reports whether the kind feeds the fusion actor.
func (k ActorKind) IsProducer() bool {
	return k == KindCamera || k == KindLiDAR || k == KindPose
}
