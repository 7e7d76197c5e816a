package services

import (
	"errors"

	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/internal/sensor"
	"github.com/lguibr/slamwood/objects"
)

// LiDARService tracks camera detections and forwards them to fusion. It
// stops once every camera is gone and its queue is drained, or the clock is
// gone too and the queue can never drain.
type LiDARService struct {
	tracker   *sensor.LiDARTracker
	cameras   int
	clockDone bool
	stats     *registry.Statistics
	faults    *registry.Faults
}

// NewLiDARService returns a tracker actor fed by the given number of cameras.
func NewLiDARService(tracker *sensor.LiDARTracker, cameras int, stats *registry.Statistics, faults *registry.Faults) *LiDARService {
	return &LiDARService{tracker: tracker, cameras: cameras, stats: stats, faults: faults}
}

func (s *LiDARService) Initialize(ctx slamwood.Context) {
	ctx.Subscribe(slamwood.KindTick, s.onTick)
	ctx.Subscribe(slamwood.KindDetectObjects, s.onDetectObjects)
	ctx.Subscribe(slamwood.KindTerminated, s.onTerminated)
	ctx.Subscribe(slamwood.KindCrashed, func(ctx slamwood.Context) {
		peerCrashed(ctx, s.tracker.Stop)
	})
}

func (s *LiDARService) onTick(ctx slamwood.Context) {
	tick := ctx.Message().(slamwood.Tick)
	batches, err := s.tracker.Tick(tick.Time)
	var fault *sensor.Fault
	if errors.As(err, &fault) {
		crash(ctx, s.faults, fault)
		return
	}
	s.emit(ctx, batches)
	s.maybeDown(ctx)
}

func (s *LiDARService) onDetectObjects(ctx slamwood.Context) {
	e := ctx.Message().(*slamwood.DetectObjects)
	s.emit(ctx, s.tracker.Detect(e.Frame))
	ctx.Complete(e, true)
}

func (s *LiDARService) emit(ctx slamwood.Context, batches [][]objects.TrackedObject) {
	name := ctx.Self().ID
	for _, batch := range batches {
		ctx.SendEvent(&slamwood.TrackedObjects{Objects: batch, Sender: name})
		s.stats.AddTracked(len(batch))
	}
	if len(batches) > 0 {
		s.faults.SetLiDARFrame(name, s.tracker.LastFrame())
	}
}

func (s *LiDARService) onTerminated(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Terminated)
	switch objects.KindOf(msg.Sender) {
	case objects.KindCamera:
		s.cameras--
	case objects.KindClock:
		s.clockDone = true
	default:
		return
	}
	s.maybeDown(ctx)
}

func (s *LiDARService) maybeDown(ctx slamwood.Context) {
	if s.cameras > 0 {
		return
	}
	if s.tracker.Pending() > 0 && !s.clockDone {
		return
	}
	if n := s.tracker.Discard(); n > 0 {
		ctx.Logger().Warn("dropping detections that can no longer be released", "count", n)
	}
	if s.tracker.Stop() {
		shutdown(ctx, "no camera left")
	}
}
