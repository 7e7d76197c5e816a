package slamwood

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/slamwood/objects"
)

// Using recorder and ActorFunc from engine_test.go

func TestProcess_MessageOrder(t *testing.T) {
	engine := newTestEngine()
	defer engine.Shutdown(time.Second)

	var wg sync.WaitGroup
	wg.Add(3)
	rec := &recorder{kinds: []Kind{KindTick, KindTerminated}, wg: &wg}
	_, err := engine.Spawn("a", PropsOf(rec))
	require.NoError(t, err)

	engine.Bus().SendBroadcast(Tick{Time: 1})
	engine.Bus().SendBroadcast(Terminated{Sender: "x"})
	engine.Bus().SendBroadcast(Tick{Time: 2})

	waitTimeout(&wg, 500*time.Millisecond, t, "Actor did not receive all messages")
	assert.Equal(t, []Message{Tick{Time: 1}, Terminated{Sender: "x"}, Tick{Time: 2}}, rec.Received())
}

func TestProcess_DispatchByKind(t *testing.T) {
	engine := newTestEngine()
	defer engine.Shutdown(time.Second)

	var ticks, poses sync.WaitGroup
	ticks.Add(1)
	poses.Add(1)
	_, err := engine.Spawn("a", PropsOf(ActorFunc(func(ctx Context) {
		ctx.Subscribe(KindTick, func(ctx Context) {
			_, ok := ctx.Message().(Tick)
			assert.True(t, ok)
			ticks.Done()
		})
		ctx.Subscribe(KindPose, func(ctx Context) {
			e := ctx.Message().(*PoseEvent)
			ctx.Complete(e, e.Pose.Time == 9)
			poses.Done()
		})
	})))
	require.NoError(t, err)

	f := engine.Bus().SendEvent(&PoseEvent{Pose: objects.Pose{Time: 9}})
	engine.Bus().SendBroadcast(Tick{Time: 1})

	waitTimeout(&ticks, 500*time.Millisecond, t, "tick not dispatched")
	waitTimeout(&poses, 500*time.Millisecond, t, "pose not dispatched")
	v, ok := f.Get()
	assert.True(t, ok)
	assert.True(t, v)
}

func TestProcess_PanicInHandlerTerminatesActor(t *testing.T) {
	engine := newTestEngine()
	defer engine.Shutdown(time.Second)

	_, err := engine.Spawn("a", PropsOf(ActorFunc(func(ctx Context) {
		ctx.Subscribe(KindTick, func(ctx Context) {
			panic("test panic on tick")
		})
		ctx.Subscribe(KindDetectObjects, func(ctx Context) {
			ctx.Complete(ctx.Message().(Event), true)
		})
	})))
	require.NoError(t, err)

	engine.Bus().SendBroadcast(Tick{Time: 1})
	assert.True(t, engine.WaitTimeout(500*time.Millisecond), "panicking actor did not stop")
	assert.False(t, engine.Bus().IsRegistered("a"))

	// Nothing can be sent to it any more.
	assert.Nil(t, engine.Bus().SendEvent(&DetectObjects{}))
}

func TestProcess_PanicInHandlerAnnouncesCrash(t *testing.T) {
	engine := newTestEngine()
	defer engine.Shutdown(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	watcher := &recorder{kinds: []Kind{KindCrashed}, wg: &wg}
	_, err := engine.Spawn("watcher", PropsOf(watcher))
	require.NoError(t, err)
	_, err = engine.Spawn("Camera1", PropsOf(ActorFunc(func(ctx Context) {
		ctx.Subscribe(KindTick, func(ctx Context) {
			panic("lens cracked")
		})
	})))
	require.NoError(t, err)

	engine.Bus().SendBroadcast(Tick{Time: 1})
	waitTimeout(&wg, 500*time.Millisecond, t, "no Crashed after panic")
	assert.Equal(t, []Message{Crashed{Sender: "Camera1", Reason: "lens cracked"}}, watcher.Received())
	assert.Eventually(t, func() bool {
		return !engine.Bus().IsRegistered("Camera1")
	}, 500*time.Millisecond, 5*time.Millisecond)
}

func TestProcess_UnhandledEventResolvesOnExit(t *testing.T) {
	engine := newTestEngine()

	var got sync.WaitGroup
	got.Add(1)
	_, err := engine.Spawn("a", PropsOf(ActorFunc(func(ctx Context) {
		// Takes the event but never answers, then stops.
		ctx.Subscribe(KindTrackedObjects, func(ctx Context) {
			got.Done()
			ctx.Terminate()
		})
	})))
	require.NoError(t, err)

	first := engine.Bus().SendEvent(&TrackedObjects{})
	second := engine.Bus().SendEvent(&TrackedObjects{})
	waitTimeout(&got, 500*time.Millisecond, t, "event not taken")

	for _, f := range []*Future[bool]{first, second} {
		_, ok := f.GetTimeout(500 * time.Millisecond)
		assert.False(t, ok)
		assert.True(t, f.IsDone(), "future must be resolved with no answer")
	}
	assert.True(t, engine.WaitTimeout(500*time.Millisecond))
	assert.Equal(t, 0, engine.Bus().InFlight())
}
