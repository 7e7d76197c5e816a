// Package pipeline wires a run: it turns a configuration and its recordings
// into sensors and actors, spawns them and waits for the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lguibr/slamwood"
	"github.com/lguibr/slamwood/internal/clock"
	"github.com/lguibr/slamwood/internal/config"
	"github.com/lguibr/slamwood/internal/log"
	"github.com/lguibr/slamwood/internal/recording"
	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/internal/report"
	"github.com/lguibr/slamwood/internal/sensor"
	"github.com/lguibr/slamwood/internal/services"
	"github.com/lguibr/slamwood/objects"
)

var (
	// ErrNoReport means every actor stopped but none published a report.
	ErrNoReport = errors.New("run ended without a report")
	// ErrUnknownCameraKey means a camera's key is missing from the camera data.
	ErrUnknownCameraKey = errors.New("camera key not found in camera data")
)

const defaultShutdownTimeout = 5 * time.Second

// Setup is everything a run needs.
type Setup struct {
	Config  *config.Config
	Cameras recording.Cameras
	LiDAR   []objects.StampedCloudPoints
	Poses   []objects.Pose

	// Ticker paces the clock. Nil means one tick per Config.TickDuration().
	Ticker clock.Ticker
	// Sink receives the report besides the result. Optional.
	Sink   report.Sink
	Logger *slog.Logger
	// ShutdownTimeout bounds the forced teardown after ctx is cancelled.
	ShutdownTimeout time.Duration
}

type spawn struct {
	name  string
	actor slamwood.Actor
}

// Result is the outcome of a finished run.
type Result struct {
	RunID  string
	Report report.Report
	Stats  registry.Counters
}

// Load reads the recordings the configuration points to.
func Load(cfg *config.Config) (*Setup, error) {
	s := &Setup{Config: cfg, Cameras: recording.Cameras{}}
	var err error
	if cfg.Cameras.DataPath != "" {
		if s.Cameras, err = recording.LoadCameras(cfg.Cameras.DataPath); err != nil {
			return nil, err
		}
	}
	if cfg.LiDarWorkers.DataPath != "" {
		if s.LiDAR, err = recording.LoadLiDAR(cfg.LiDarWorkers.DataPath); err != nil {
			return nil, err
		}
	}
	if s.Poses, err = recording.LoadPoses(cfg.PoseJSONFile); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes one run and blocks until its report is published or ctx is
// cancelled. Cancellation shuts the engine down and returns ctx.Err().
func Run(ctx context.Context, s Setup) (*Result, error) {
	cfg := s.Config
	runID := uuid.NewString()
	var logger *slog.Logger
	if s.Logger != nil {
		logger = s.Logger.With("run_id", runID)
	} else {
		logger = log.With("run_id", runID)
	}

	ticker := s.Ticker
	if ticker == nil {
		ticker = clock.NewRateTicker(cfg.TickDuration())
	}
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	stats := registry.NewStatistics()
	faults := registry.NewFaults()
	recorder := report.NewRecorder()
	var sink report.Sink = recorder
	if s.Sink != nil {
		sink = report.Tee{recorder, s.Sink}
	}

	cameras := make([]*sensor.Camera, 0, len(cfg.Cameras.Configurations))
	for _, c := range cfg.Cameras.Configurations {
		frames, ok := s.Cameras.Frames(c.Key)
		if !ok {
			return nil, fmt.Errorf("camera %d: %w: %q", c.ID, ErrUnknownCameraKey, c.Key)
		}
		cameras = append(cameras, sensor.NewCamera(c.ID, c.Frequency, c.Key, frames))
	}
	db := sensor.NewLiDARDatabase(s.LiDAR)
	if db.Len() > 0 && db.LastTime() > cfg.Duration {
		logger.Warn("LiDAR recording outlasts the run",
			"last_cloud_tick", db.LastTime(),
			"duration", cfg.Duration)
	}
	lidars := make([]*sensor.LiDARTracker, 0, len(cfg.LiDarWorkers.Configurations))
	for _, l := range cfg.LiDarWorkers.Configurations {
		lidars = append(lidars, sensor.NewLiDARTracker(l.ID, l.Frequency, db))
	}

	producers := make([]string, 0, len(cameras)+len(lidars)+1)
	for _, c := range cameras {
		producers = append(producers, c.Name())
	}
	for _, l := range lidars {
		producers = append(producers, l.Name())
	}
	producers = append(producers, objects.PoseName)

	engine := slamwood.NewEngine(logger)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Consumers first, the clock last: every subscription exists before the
	// first tick.
	spawns := []spawn{{objects.FusionName, services.NewFusionService(services.FusionOptions{
		RunID:     runID,
		Producers: producers,
		Stats:     stats,
		Faults:    faults,
		Sink:      sink,
	})}}
	for _, l := range lidars {
		spawns = append(spawns, spawn{l.Name(), services.NewLiDARService(l, len(cameras), stats, faults)})
	}
	for _, c := range cameras {
		spawns = append(spawns, spawn{c.Name(), services.NewCameraService(c, stats, faults)})
	}
	spawns = append(spawns,
		spawn{objects.PoseName, services.NewPoseService(sensor.NewGPSIMU(s.Poses), len(cameras), len(lidars))},
		spawn{objects.ClockName, services.NewTimeService(runCtx, ticker, cfg.Duration, stats)},
	)

	for _, sp := range spawns {
		if _, err := engine.Spawn(sp.name, slamwood.PropsOf(sp.actor)); err != nil {
			engine.Shutdown(timeout)
			return nil, err
		}
	}
	logger.Info("run started",
		"cameras", len(cameras),
		"lidars", len(lidars),
		"duration", cfg.Duration,
		"tick", cfg.TickDuration())

	done := make(chan struct{})
	go func() {
		engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		cancel()
		engine.Shutdown(timeout)
		return nil, ctx.Err()
	}

	rep, ok := recorder.Last()
	if !ok {
		return nil, ErrNoReport
	}
	res := &Result{RunID: runID, Report: rep, Stats: stats.Snapshot()}
	logger.Info("run finished",
		"failed", rep.Failed(),
		"runtime", res.Stats.SystemRuntime,
		"landmarks", res.Stats.NumLandmarks)
	return res, nil
}
