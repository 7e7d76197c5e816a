package fusion

import (
	"sort"

	"github.com/lguibr/slamwood/objects"
)

// Map is the landmark map with its pose history and the buffer of tracked
// objects still waiting for the pose of their detection tick.
//
// Map is not safe for concurrent use; it belongs to a single actor.
type Map struct {
	landmarks map[string]*objects.LandMark
	order     []string
	poses     map[int]objects.Pose
	pending   map[int][]objects.TrackedObject
	waiting   int
}

func NewMap() *Map {
	return &Map{
		landmarks: make(map[string]*objects.LandMark),
		poses:     make(map[int]objects.Pose),
		pending:   make(map[int][]objects.TrackedObject),
	}
}

// AddPose records the pose of its tick and merges every tracked object that
// was waiting for it. A second pose for an already known tick is ignored.
// It returns the number of landmarks created and whether the pose was kept.
func (m *Map) AddPose(p objects.Pose) (created int, ok bool) {
	if _, dup := m.poses[p.Time]; dup {
		return 0, false
	}
	m.poses[p.Time] = p
	buffered := m.pending[p.Time]
	delete(m.pending, p.Time)
	m.waiting -= len(buffered)
	for _, obj := range buffered {
		if m.merge(p, obj) {
			created++
		}
	}
	return created, true
}

// AddTracked merges objects whose detection tick has a pose and buffers the
// rest. It returns the number of landmarks created.
func (m *Map) AddTracked(objs []objects.TrackedObject) (created int) {
	for _, obj := range objs {
		p, ok := m.poses[obj.Time]
		if !ok {
			obj.Coordinates = append([]objects.CloudPoint(nil), obj.Coordinates...)
			m.pending[obj.Time] = append(m.pending[obj.Time], obj)
			m.waiting++
			continue
		}
		if m.merge(p, obj) {
			created++
		}
	}
	return created
}

// merge folds obj into the map and reports whether a landmark was created.
func (m *Map) merge(p objects.Pose, obj objects.TrackedObject) bool {
	global := Transform(p, obj.Coordinates)
	if lm, ok := m.landmarks[obj.ID]; ok {
		lm.Coordinates = Merge(lm.Coordinates, global)
		return false
	}
	m.landmarks[obj.ID] = &objects.LandMark{
		ID:          obj.ID,
		Description: obj.Description,
		Coordinates: global,
	}
	m.order = append(m.order, obj.ID)
	return true
}

// Pending is the number of tracked objects waiting for a pose.
func (m *Map) Pending() int { return m.waiting }

// PendingTicks lists the ticks that still lack a pose, ascending.
func (m *Map) PendingTicks() []int {
	ticks := make([]int, 0, len(m.pending))
	for t := range m.pending {
		ticks = append(ticks, t)
	}
	sort.Ints(ticks)
	return ticks
}

// DropPending discards the buffer and returns how many objects it held.
func (m *Map) DropPending() int {
	n := m.waiting
	m.pending = make(map[int][]objects.TrackedObject)
	m.waiting = 0
	return n
}

// Landmarks returns a copy of the map in creation order.
func (m *Map) Landmarks() []objects.LandMark {
	out := make([]objects.LandMark, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.landmarks[id].Clone())
	}
	return out
}

// Len is the number of landmarks.
func (m *Map) Len() int { return len(m.order) }

// Poses returns the pose history ordered by tick.
func (m *Map) Poses() []objects.Pose {
	out := make([]objects.Pose, 0, len(m.poses))
	for _, p := range m.poses {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
