package services

import (
	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/fusion"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/internal/report"
	"github.com/lguibr/slamwood/objects"
)

// FusionOptions wire a FusionService.
type FusionOptions struct {
	RunID     string
	Producers []string // names of every camera, LiDAR and pose actor
	Stats     *registry.Statistics
	Faults    *registry.Faults
	Sink      report.Sink
}

// FusionService owns the landmark map. It publishes exactly one report once
// every producer and the clock are gone.
type FusionService struct {
	opts      FusionOptions
	m         *fusion.Map
	producers map[string]struct{}
	crashed   bool
	clockDone bool
	finished  bool
	reported  bool
}

func NewFusionService(opts FusionOptions) *FusionService {
	s := &FusionService{
		opts:      opts,
		m:         fusion.NewMap(),
		producers: make(map[string]struct{}, len(opts.Producers)),
	}
	for _, p := range opts.Producers {
		s.producers[p] = struct{}{}
	}
	return s
}

func (s *FusionService) Initialize(ctx slamwood.Context) {
	ctx.Subscribe(slamwood.KindTrackedObjects, s.onTrackedObjects)
	ctx.Subscribe(slamwood.KindPose, s.onPose)
	ctx.Subscribe(slamwood.KindTerminated, s.onTerminated)
	ctx.Subscribe(slamwood.KindCrashed, s.onCrashed)
}

func (s *FusionService) onTrackedObjects(ctx slamwood.Context) {
	e := ctx.Message().(*slamwood.TrackedObjects)
	s.opts.Stats.AddLandmarks(s.m.AddTracked(e.Objects))
	ctx.Complete(e, true)
	s.check(ctx)
}

func (s *FusionService) onPose(ctx slamwood.Context) {
	e := ctx.Message().(*slamwood.PoseEvent)
	created, ok := s.m.AddPose(e.Pose)
	if !ok {
		ctx.Logger().Warn("duplicate pose ignored", "time", e.Pose.Time)
	}
	s.opts.Stats.AddLandmarks(created)
	ctx.Complete(e, ok)
	s.check(ctx)
}

func (s *FusionService) onTerminated(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Terminated)
	switch kind := objects.KindOf(msg.Sender); {
	case kind == objects.KindClock:
		s.clockDone = true
	case kind.IsProducer():
		delete(s.producers, msg.Sender)
	default:
		return
	}
	s.check(ctx)
}

func (s *FusionService) onCrashed(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Crashed)
	s.crashed = true
	delete(s.producers, msg.Sender)
	s.check(ctx)
}

// check runs the two termination steps. Quiescence (no producer, nothing
// pending) is announced once so the clock can stop early; the report is
// published once when the clock is gone as well.
func (s *FusionService) check(ctx slamwood.Context) {
	if len(s.producers) > 0 {
		return
	}
	if !s.finished && s.m.Pending() == 0 {
		s.finished = true
		ctx.Logger().Info("fusion finished", "landmarks", s.m.Len())
		ctx.Broadcast(slamwood.Terminated{Sender: ctx.Self().ID})
	}
	if !s.clockDone || s.reported {
		return
	}
	s.reported = true
	if ticks := s.m.PendingTicks(); len(ticks) > 0 {
		ctx.Logger().Warn("tracked objects never matched a pose",
			"count", s.m.DropPending(),
			"ticks", ticks)
	}
	if err := s.opts.Sink.Publish(s.build()); err != nil {
		ctx.Logger().Error("publishing report failed", "error", err)
	}
	ctx.Terminate()
}

func (s *FusionService) build() report.Report {
	stats := s.opts.Stats.Snapshot()
	if crash, ok := s.opts.Faults.Crash(); s.crashed && ok {
		return report.NewFailure(s.opts.RunID, crash, s.opts.Faults, s.m.Poses(), stats, s.m.Landmarks())
	}
	return report.NewSuccess(s.opts.RunID, stats, s.m.Landmarks())
}
