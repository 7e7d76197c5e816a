package services

import (
	"fmt"

	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/sensor"
	"github.com/lguibr/slamwood/objects"
)

// PoseService sends the robot pose of every tick to fusion while cameras or
// LiDAR trackers are still producing.
type PoseService struct {
	gps     *sensor.GPSIMU
	cameras int
	lidars  int
}

func NewPoseService(gps *sensor.GPSIMU, cameras, lidars int) *PoseService {
	return &PoseService{gps: gps, cameras: cameras, lidars: lidars}
}

func (s *PoseService) Initialize(ctx slamwood.Context) {
	ctx.Subscribe(slamwood.KindTick, s.onTick)
	ctx.Subscribe(slamwood.KindTerminated, s.onTerminated)
	ctx.Subscribe(slamwood.KindCrashed, func(ctx slamwood.Context) {
		peerCrashed(ctx, s.gps.Stop)
	})
}

func (s *PoseService) onTick(ctx slamwood.Context) {
	tick := ctx.Message().(slamwood.Tick)
	if s.cameras <= 0 && s.lidars <= 0 {
		if s.gps.Stop() {
			shutdown(ctx, "no sensor left")
		}
		return
	}
	pose, ok := s.gps.Tick(tick.Time)
	if !ok {
		shutdown(ctx, fmt.Sprintf("no pose for tick %d, recording ends at tick %d", tick.Time, s.gps.LastTime()))
		return
	}
	ctx.SendEvent(&slamwood.PoseEvent{Pose: pose})
}

func (s *PoseService) onTerminated(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Terminated)
	switch objects.KindOf(msg.Sender) {
	case objects.KindCamera:
		s.cameras--
	case objects.KindLiDAR:
		s.lidars--
	case objects.KindClock:
		if s.gps.Stop() {
			shutdown(ctx, "clock stopped")
		}
		return
	default:
		return
	}
	if s.cameras <= 0 && s.lidars <= 0 && s.gps.Stop() {
		shutdown(ctx, "no sensor left")
	}
}
