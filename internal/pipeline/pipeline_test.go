package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/slamwood/internal/clock"
	"github.com/lguibr/slamwood/internal/config"
	"github.com/lguibr/slamwood/internal/log"
	"github.com/lguibr/slamwood/internal/report"
	"github.com/lguibr/slamwood/objects"
)

func pts(xy ...float64) []objects.CloudPoint {
	out := make([]objects.CloudPoint, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, objects.CloudPoint{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func det(id string) objects.DetectedObject {
	return objects.DetectedObject{ID: id, Description: id + " desc"}
}

// scenario: one camera and one LiDAR, both without delay. Wall_1 is seen at
// ticks 2 and 4, Chair_1 at tick 4.
func scenario() Setup {
	return Setup{
		Config: &config.Config{
			Cameras: config.CamerasConfig{Configurations: []config.CameraConfig{
				{ID: 1, Frequency: 0, Key: "camera1"},
			}},
			LiDarWorkers: config.LiDARsConfig{Configurations: []config.LiDARConfig{
				{ID: 1, Frequency: 0},
			}},
			Duration: 10,
		},
		Cameras: map[string][]objects.StampedDetectedObjects{
			"camera1": {
				{Time: 2, DetectedObjects: []objects.DetectedObject{det("Wall_1")}},
				{Time: 4, DetectedObjects: []objects.DetectedObject{det("Wall_1"), det("Chair_1")}},
			},
		},
		LiDAR: []objects.StampedCloudPoints{
			{ID: "Wall_1", Time: 2, CloudPoints: pts(1, 0)},
			{ID: "Wall_1", Time: 4, CloudPoints: pts(3, 2)},
			{ID: "Chair_1", Time: 4, CloudPoints: pts(0, 1, 0, 2)},
		},
		Poses: []objects.Pose{
			{Time: 1},
			{Time: 2, X: 1, Y: 2, Yaw: 90},
			{Time: 3},
			{Time: 4},
			{Time: 5},
		},
		Ticker: clock.Immediate{},
		Logger: log.Discard(),
	}
}

func run(t *testing.T, s Setup) *Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := Run(ctx, s)
	require.NoError(t, err)
	return res
}

func TestRun_Success(t *testing.T) {
	res := run(t, scenario())

	require.False(t, res.Report.Failed())
	success := res.Report.(*report.Success)
	assert.Equal(t, res.RunID, success.RunID)
	assert.NotEmpty(t, res.RunID)

	want := []objects.LandMark{
		{ID: "Wall_1", Description: "Wall_1 desc", Coordinates: pts(2, 2.5)},
		{ID: "Chair_1", Description: "Chair_1 desc", Coordinates: pts(0, 1, 0, 2)},
	}
	if diff := cmp.Diff(want, success.LandMarks, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, success.NumDetectedObjects)
	assert.Equal(t, 3, success.NumTrackedObjects)
	assert.Equal(t, 2, success.NumLandmarks)
	assert.GreaterOrEqual(t, success.SystemRuntime, 4)
	assert.LessOrEqual(t, success.SystemRuntime, 10)
}

func TestRun_CameraCrash(t *testing.T) {
	s := scenario()
	s.Cameras["camera1"] = append(s.Cameras["camera1"], objects.StampedDetectedObjects{
		Time:            3,
		DetectedObjects: []objects.DetectedObject{{ID: objects.ErrorID, Description: "Camera Disconnected"}},
	})

	res := run(t, s)
	require.True(t, res.Report.Failed())
	failure := res.Report.(*report.Failure)

	assert.Equal(t, "Camera1", failure.FaultySensor)
	assert.Equal(t, 3, failure.CrashTick)
	assert.Equal(t, "Camera Disconnected", failure.Error)
	assert.Equal(t, 2, failure.LastCamerasFrame["Camera1"].Time)
	require.Len(t, failure.LastLiDarWorkerTrackersFrame["LiDarWorkerTracker1"], 1)
	assert.Equal(t, "Wall_1", failure.LastLiDarWorkerTrackersFrame["LiDarWorkerTracker1"][0].ID)

	require.GreaterOrEqual(t, len(failure.Poses), 3, "poses up to the crash tick reach fusion")
	for i, p := range failure.Poses[:3] {
		assert.Equal(t, i+1, p.Time)
	}
	assert.Equal(t, 1, failure.Statistics.NumDetectedObjects)
	assert.Equal(t, 1, failure.Statistics.NumLandmarks)
}

func TestRun_LiDARCrash(t *testing.T) {
	s := scenario()
	s.LiDAR = append(s.LiDAR, objects.StampedCloudPoints{ID: objects.ErrorID, Time: 3})

	res := run(t, s)
	require.True(t, res.Report.Failed())
	failure := res.Report.(*report.Failure)
	assert.Equal(t, "LiDarWorkerTracker1", failure.FaultySensor)
	assert.Equal(t, 3, failure.CrashTick)
}

func TestRun_NoSensors(t *testing.T) {
	s := scenario()
	s.Config.Cameras.Configurations = nil
	s.Config.LiDarWorkers.Configurations = nil

	res := run(t, s)
	require.False(t, res.Report.Failed())
	assert.Empty(t, res.Report.(*report.Success).LandMarks)
}

func TestRun_UnknownCameraKey(t *testing.T) {
	s := scenario()
	s.Config.Cameras.Configurations[0].Key = "camera7"
	_, err := Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrUnknownCameraKey)
}

func TestRun_Cancel(t *testing.T) {
	s := scenario()
	s.Ticker = clock.NewManualTicker()
	s.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Run(ctx, s)
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoadAndRun_WritesReportFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	s := scenario()
	write("camera_data.json", s.Cameras)
	write("pose_data.json", s.Poses)
	write("lidar_data.json", []map[string]any{
		{"time": 2, "id": "Wall_1", "cloudPoints": [][]float64{{1, 0, 0.3}}},
		{"time": 4, "id": "Wall_1", "cloudPoints": [][]float64{{3, 2, 0.3}}},
		{"time": 4, "id": "Chair_1", "cloudPoints": [][]float64{{0, 1, 0.1}, {0, 2, 0.1}}},
	})
	write("configuration_file.json", map[string]any{
		"Cameras": map[string]any{
			"CamerasConfigurations": []map[string]any{{"id": 1, "frequency": 0, "camera_key": "camera1"}},
			"camera_datas_path":     "./camera_data.json",
		},
		"LiDarWorkers": map[string]any{
			"LidarConfigurations": []map[string]any{{"id": 1, "frequency": 0}},
			"lidars_data_path":    "./lidar_data.json",
		},
		"poseJsonFile": "./pose_data.json",
		"TickTime":     0,
		"Duration":     10,
	})

	cfg, err := config.LoadConfig(filepath.Join(dir, "configuration_file.json"))
	require.NoError(t, err)
	setup, err := Load(cfg)
	require.NoError(t, err)
	setup.Logger = log.Discard()
	setup.Sink = report.FileSink{Dir: cfg.OutputDir}

	res := run(t, *setup)
	require.False(t, res.Report.Failed())

	data, err := os.ReadFile(filepath.Join(dir, report.FileName))
	require.NoError(t, err)
	var got report.Success
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, res.RunID, got.RunID)
	assert.Len(t, got.LandMarks, 2)
	assert.Equal(t, 2, got.NumLandmarks)
}

func TestLoad_MissingRecording(t *testing.T) {
	_, err := Load(&config.Config{PoseJSONFile: filepath.Join(t.TempDir(), "none.json")})
	assert.Error(t, err)
}
