package services

import (
	"errors"

	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/internal/sensor"
	"github.com/lguibr/slamwood/objects"
)

// CameraService replays a camera and sends every released frame to a LiDAR
// tracker.
type CameraService struct {
	camera *sensor.Camera
	stats  *registry.Statistics
	faults *registry.Faults
}

func NewCameraService(camera *sensor.Camera, stats *registry.Statistics, faults *registry.Faults) *CameraService {
	return &CameraService{camera: camera, stats: stats, faults: faults}
}

func (s *CameraService) Initialize(ctx slamwood.Context) {
	ctx.Subscribe(slamwood.KindTick, s.onTick)
	ctx.Subscribe(slamwood.KindTerminated, s.onTerminated)
	ctx.Subscribe(slamwood.KindCrashed, func(ctx slamwood.Context) {
		peerCrashed(ctx, s.camera.Stop)
	})
}

func (s *CameraService) onTick(ctx slamwood.Context) {
	tick := ctx.Message().(slamwood.Tick)
	frames, err := s.camera.Tick(tick.Time)
	var fault *sensor.Fault
	if errors.As(err, &fault) {
		crash(ctx, s.faults, fault)
		return
	}

	name := ctx.Self().ID
	for _, f := range frames {
		if fut := ctx.SendEvent(&slamwood.DetectObjects{Frame: f, Sender: name}); fut == nil {
			ctx.Logger().Debug("no LiDAR tracker for frame", "time", f.Time)
		}
		s.stats.AddDetected(len(f.DetectedObjects))
	}
	if last, ok := s.camera.LastFrame(); ok && len(frames) > 0 {
		s.faults.SetCameraFrame(name, last)
	}
	if s.camera.Status() == objects.StatusDown {
		shutdown(ctx, "recording exhausted")
	}
}

func (s *CameraService) onTerminated(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Terminated)
	if objects.KindOf(msg.Sender) != objects.KindClock {
		return
	}
	if s.camera.Stop() {
		shutdown(ctx, "clock stopped")
	}
}
