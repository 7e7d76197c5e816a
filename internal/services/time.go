package services

import (
	"context"
	"sync"

	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/clock"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/objects"
)

// TimeService broadcasts ticks 1..duration, paced by its ticker, then
// announces its own termination. Fusion's Terminated stops it early.
type TimeService struct {
	parent   context.Context
	ticker   clock.Ticker
	duration int
	stats    *registry.Statistics

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewTimeService returns a clock actor. Cancelling parent stops the ticking
// goroutine without announcing termination.
func NewTimeService(parent context.Context, ticker clock.Ticker, duration int, stats *registry.Statistics) *TimeService {
	return &TimeService{
		parent:   parent,
		ticker:   ticker,
		duration: duration,
		stats:    stats,
		done:     make(chan struct{}),
	}
}

func (s *TimeService) Initialize(ctx slamwood.Context) {
	ctx.Subscribe(slamwood.KindTerminated, s.onTerminated)

	runCtx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	go s.run(runCtx, ctx)
}

func (s *TimeService) run(runCtx context.Context, ctx slamwood.Context) {
	defer close(s.done)
	for t := 1; t <= s.duration; t++ {
		if err := s.ticker.Wait(runCtx); err != nil {
			ctx.Logger().Debug("clock interrupted", "tick", t, "error", err)
			return
		}
		s.stats.SetRuntime(t)
		ctx.Broadcast(slamwood.Tick{Time: t})
	}
	s.finish(ctx, "duration reached")
}

func (s *TimeService) onTerminated(ctx slamwood.Context) {
	msg := ctx.Message().(slamwood.Terminated)
	if objects.KindOf(msg.Sender) != objects.KindFusion {
		return
	}
	s.cancel()
	<-s.done
	s.finish(ctx, "fusion finished")
}

func (s *TimeService) finish(ctx slamwood.Context, reason string) {
	s.once.Do(func() {
		ctx.Logger().Info("clock stopped", "reason", reason, "runtime", s.stats.Snapshot().SystemRuntime)
		s.cancel()
		ctx.Broadcast(slamwood.Terminated{Sender: ctx.Self().ID})
		ctx.Terminate()
	})
}
