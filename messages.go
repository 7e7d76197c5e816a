package slamwood

import "github.com/lguibr/slamwood/objects"

// Kind enumerates every message the bus carries. Actors map kinds to
// handlers; there is no dynamic type registration.
type Kind uint8

const (
	KindTick Kind = iota + 1
	KindTerminated
	KindCrashed
	KindDetectObjects
	KindTrackedObjects
	KindPose
)

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "Tick"
	case KindTerminated:
		return "Terminated"
	case KindCrashed:
		return "Crashed"
	case KindDetectObjects:
		return "DetectObjects"
	case KindTrackedObjects:
		return "TrackedObjects"
	case KindPose:
		return "Pose"
	default:
		return "Unknown"
	}
}

// IsEvent reports whether messages of this kind are events (one receiver,
// answered through a Future) rather than broadcasts.
func (k Kind) IsEvent() bool {
	return k == KindDetectObjects || k == KindTrackedObjects || k == KindPose
}

// Message is anything that can sit in a mailbox.
type Message interface {
	Kind() Kind
}

// Event is a message delivered to exactly one subscriber whose reply
// resolves a Future[bool]. Events are pointers: the pointer identifies the
// in-flight request.
type Event interface {
	Message
	event()
}

// --- Broadcasts ---

// Tick advances the global discrete clock.
type Tick struct {
	Time int
}

func (Tick) Kind() Kind { return KindTick }

// Terminated announces that Sender finished normally.
type Terminated struct {
	Sender string
}

func (Terminated) Kind() Kind { return KindTerminated }

// Crashed announces that Sender hit a faulty reading.
type Crashed struct {
	Sender string
	Reason string
}

func (Crashed) Kind() Kind { return KindCrashed }

// --- Events ---

// DetectObjects carries one camera frame to a LiDAR tracker.
type DetectObjects struct {
	Frame  objects.StampedDetectedObjects
	Sender string
}

func (*DetectObjects) Kind() Kind { return KindDetectObjects }
func (*DetectObjects) event()     {}

// TrackedObjects carries LiDAR-enriched detections to the fusion actor.
type TrackedObjects struct {
	Objects []objects.TrackedObject
	Sender  string
}

func (*TrackedObjects) Kind() Kind { return KindTrackedObjects }
func (*TrackedObjects) event()     {}

// PoseEvent carries the robot pose for one tick to the fusion actor.
type PoseEvent struct {
	Pose objects.Pose
}

func (*PoseEvent) Kind() Kind { return KindPose }
func (*PoseEvent) event()     {}
