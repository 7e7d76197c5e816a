// Package services contains the actors of a run. Each one wraps a domain
// object from internal/sensor or internal/fusion and drives it from bus
// messages:
//
//	TimeService  -> Tick ............................ every actor
//	CameraService  -> DetectObjects ................. LiDARService
//	LiDARService   -> TrackedObjects ................ FusionService
//	PoseService    -> Pose .......................... FusionService
//	any sensor     -> Terminated / Crashed .......... everyone subscribed
//	FusionService  -> Terminated(FusionSlam) ........ TimeService
package services

import (
	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/internal/sensor"
)

// shutdown announces a normal stop and ends the actor.
func shutdown(ctx slamwood.Context, reason string) {
	ctx.Logger().Info("sensor down", "reason", reason)
	ctx.Broadcast(slamwood.Terminated{Sender: ctx.Self().ID})
	ctx.Terminate()
}

// crash records the fault, announces it and ends the actor.
func crash(ctx slamwood.Context, faults *registry.Faults, f *sensor.Fault) {
	first := faults.RecordCrash(registry.Crash{
		Sensor:      f.Sensor,
		Tick:        f.Time,
		Description: f.Description,
	})
	ctx.Logger().Error("sensor crashed", "tick", f.Time, "description", f.Description, "first", first)
	ctx.Broadcast(slamwood.Crashed{Sender: ctx.Self().ID, Reason: f.Description})
	ctx.Terminate()
}

// peerCrashed is the common Crashed handler of sensors: a crash elsewhere
// stops this sensor gracefully.
func peerCrashed(ctx slamwood.Context, stop func() bool) {
	msg := ctx.Message().(slamwood.Crashed)
	if msg.Sender == ctx.Self().ID {
		return
	}
	if stop() {
		shutdown(ctx, "peer "+msg.Sender+" crashed")
	}
}
