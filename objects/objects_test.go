package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := map[string]ActorKind{
		CameraName(1):  KindCamera,
		CameraName(12): KindCamera,
		LiDARName(3):   KindLiDAR,
		PoseName:       KindPose,
		ClockName:      KindClock,
		FusionName:     KindFusion,
		"stranger":     KindUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, KindOf(name), name)
	}
	assert.True(t, KindCamera.IsProducer())
	assert.True(t, KindPose.IsProducer())
	assert.False(t, KindClock.IsProducer())
	assert.False(t, KindFusion.IsProducer())
}

func TestStampedDetectedObjects_Fault(t *testing.T) {
	frame := StampedDetectedObjects{Time: 3, DetectedObjects: []DetectedObject{
		{ID: "Wall_1", Description: "Wall"},
		{ID: ErrorID, Description: "camera disconnected"},
	}}
	fault, ok := frame.Fault()
	assert.True(t, ok)
	assert.Equal(t, "camera disconnected", fault.Description)

	_, ok = StampedDetectedObjects{Time: 1}.Fault()
	assert.False(t, ok)
}

func TestLandMark_CloneIsDeep(t *testing.T) {
	l := LandMark{ID: "a", Coordinates: []CloudPoint{{X: 1, Y: 2}}}
	c := l.Clone()
	c.Coordinates[0].X = 9
	assert.Equal(t, 1.0, l.Coordinates[0].X)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "UP", StatusUp.String())
	assert.False(t, StatusUp.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusDown.Terminal())
}
