package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/slamwood/internal/registry"
	"github.com/lguibr/slamwood/objects"
)

func TestFileSink_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := FileSink{Dir: dir}

	rep := NewSuccess("run-1", registry.Counters{SystemRuntime: 4, NumDetectedObjects: 3, NumTrackedObjects: 2, NumLandmarks: 1},
		[]objects.LandMark{{ID: "Wall_1", Description: "wall", Coordinates: []objects.CloudPoint{{X: 1, Y: 2}}}})
	require.NoError(t, sink.Publish(rep))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	want := map[string]any{
		"runId":              "run-1",
		"systemRuntime":      4.0,
		"numDetectedObjects": 3.0,
		"numTrackedObjects":  2.0,
		"numLandmarks":       1.0,
		"landMarks": []any{map[string]any{
			"id":          "Wall_1",
			"description": "wall",
			"coordinates": []any{map[string]any{"x": 1.0, "y": 2.0}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("success report mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSink_Failure(t *testing.T) {
	faults := registry.NewFaults()
	faults.SetCameraFrame("Camera1", objects.StampedDetectedObjects{Time: 2, DetectedObjects: []objects.DetectedObject{{ID: "Wall", Description: "wall"}}})
	faults.SetLiDARFrame("LiDarWorkerTracker1", []objects.TrackedObject{{ID: "Wall", Time: 2}})
	crash := registry.Crash{Sensor: "Camera1", Tick: 3, Description: "lens cracked"}

	rep := NewFailure("run-2", crash, faults, []objects.Pose{{Time: 1, X: 1}}, registry.Counters{SystemRuntime: 3}, nil)
	assert.True(t, rep.Failed())
	assert.Equal(t, "run-2", rep.ID())

	sink := FileSink{Dir: t.TempDir()}
	require.NoError(t, sink.Publish(rep))
	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)

	var got Failure
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "lens cracked", got.Error)
	assert.Equal(t, "Camera1", got.FaultySensor)
	assert.Equal(t, 3, got.CrashTick)
	assert.Equal(t, 2, got.LastCamerasFrame["Camera1"].Time)
	assert.Equal(t, "Wall", got.LastLiDarWorkerTrackersFrame["LiDarWorkerTracker1"][0].ID)
	assert.Equal(t, []objects.Pose{{Time: 1, X: 1}}, got.Poses)
	assert.Equal(t, 3, got.Statistics.SystemRuntime)
	assert.NotNil(t, got.LandMarks)
}

func TestFileSink_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err := FileSink{Dir: file}.Publish(NewSuccess("x", registry.Counters{}, nil))
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	_, ok := rec.Last()
	assert.False(t, ok)
	select {
	case <-rec.Done():
		t.Fatal("Done closed before any report")
	default:
	}

	require.NoError(t, rec.Publish(NewSuccess("a", registry.Counters{}, nil)))
	require.NoError(t, rec.Publish(NewSuccess("b", registry.Counters{}, nil)))
	<-rec.Done()
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.ID())
	assert.False(t, last.Failed())
	assert.Equal(t, 2, rec.Count())
}

type failingSink struct{ err error }

func (f failingSink) Publish(Report) error { return f.err }

func TestTee(t *testing.T) {
	rec := NewRecorder()
	boom := errors.New("boom")
	err := Tee{failingSink{boom}, rec}.Publish(NewSuccess("a", registry.Counters{}, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rec.Count(), "later sinks still receive the report")

	assert.NoError(t, Tee{rec}.Publish(NewSuccess("b", registry.Counters{}, nil)))
}
