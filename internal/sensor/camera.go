package sensor

import (
	"sort"

	"github.com/lguibr/slamwood/objects"
)

type pendingFrame struct {
	ready int
	frame objects.StampedDetectedObjects
}

// Camera replays a recording of detections. A frame detected at tick t is
// released at tick t+Frequency.
type Camera struct {
	ID        int
	Frequency int
	Key       string

	status   objects.Status
	readings []objects.StampedDetectedObjects
	next     int
	queue    []pendingFrame
	last     *objects.StampedDetectedObjects
}

// NewCamera returns an UP camera. Readings are sorted by time.
func NewCamera(id, frequency int, key string, readings []objects.StampedDetectedObjects) *Camera {
	rs := append([]objects.StampedDetectedObjects(nil), readings...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Time < rs[j].Time })
	return &Camera{
		ID:        id,
		Frequency: frequency,
		Key:       key,
		readings:  rs,
	}
}

func (c *Camera) Name() string           { return objects.CameraName(c.ID) }
func (c *Camera) Status() objects.Status { return c.status }

// LastFrame is the last frame the camera released.
func (c *Camera) LastFrame() (objects.StampedDetectedObjects, bool) {
	if c.last == nil {
		return objects.StampedDetectedObjects{}, false
	}
	return *c.last, true
}

// Tick advances the camera to tick t and returns the frames released at t.
// Readings stamped at or before t are taken in; one carrying an ERROR
// detection puts the camera in ERROR and is returned as a *Fault. The camera
// goes DOWN when the recording and the queue are both exhausted.
func (c *Camera) Tick(t int) ([]objects.StampedDetectedObjects, error) {
	if c.status.Terminal() {
		return nil, nil
	}
	for c.next < len(c.readings) && c.readings[c.next].Time <= t {
		r := c.readings[c.next]
		c.next++
		if d, bad := r.Fault(); bad {
			c.status = objects.StatusError
			c.queue = nil
			return nil, &Fault{Sensor: c.Name(), Time: t, Description: d.Description}
		}
		c.queue = append(c.queue, pendingFrame{ready: r.Time + c.Frequency, frame: r})
	}

	var out []objects.StampedDetectedObjects
	kept := c.queue[:0]
	for _, p := range c.queue {
		if p.ready <= t {
			out = append(out, p.frame)
			continue
		}
		kept = append(kept, p)
	}
	c.queue = kept
	if len(out) > 0 {
		last := out[len(out)-1]
		c.last = &last
	}
	if c.next == len(c.readings) && len(c.queue) == 0 {
		c.status = objects.StatusDown
	}
	return out, nil
}

// Pending is the number of frames waiting for their release tick.
func (c *Camera) Pending() int { return len(c.queue) }

// Stop puts an UP camera DOWN. It reports whether the status changed.
func (c *Camera) Stop() bool {
	if c.status.Terminal() {
		return false
	}
	c.status = objects.StatusDown
	c.queue = nil
	return true
}
