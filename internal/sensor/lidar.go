package sensor

import (
	"container/heap"

	"github.com/lguibr/slamwood/objects"
)

// LiDARFaultDescription is the crash description of a LiDAR reading an
// ERROR cloud.
const LiDARFaultDescription = "LiDAR returned an ERROR cloud"

type cloudKey struct {
	id   string
	time int
}

// LiDARDatabase indexes the LiDAR recording by object id and detection
// time. It is shared by every tracker and never written after construction.
type LiDARDatabase struct {
	clouds map[cloudKey][]objects.CloudPoint
	faults map[int]struct{}
	last   int
	size   int
}

func NewLiDARDatabase(records []objects.StampedCloudPoints) *LiDARDatabase {
	db := &LiDARDatabase{
		clouds: make(map[cloudKey][]objects.CloudPoint, len(records)),
		faults: make(map[int]struct{}),
	}
	for _, r := range records {
		db.last = max(db.last, r.Time)
		if r.ID == objects.ErrorID {
			db.faults[r.Time] = struct{}{}
			continue
		}
		db.clouds[cloudKey{r.ID, r.Time}] = append([]objects.CloudPoint(nil), r.CloudPoints...)
		db.size++
	}
	return db
}

// Lookup returns the points of object id at time t. The slice is shared;
// callers must not modify it.
func (db *LiDARDatabase) Lookup(id string, t int) ([]objects.CloudPoint, bool) {
	pts, ok := db.clouds[cloudKey{id, t}]
	return pts, ok
}

// FaultAt reports whether the recording holds an ERROR entry at tick t.
func (db *LiDARDatabase) FaultAt(t int) bool {
	_, ok := db.faults[t]
	return ok
}

// LastTime is the latest tick the recording covers.
func (db *LiDARDatabase) LastTime() int { return db.last }

// Len is the number of clouds, ERROR entries excluded.
func (db *LiDARDatabase) Len() int { return db.size }

type pendingDetection struct {
	ready int
	seq   int
	frame objects.StampedDetectedObjects
}

// detectionQueue is a min-heap on ready time, ties broken by arrival.
type detectionQueue []pendingDetection

func (q detectionQueue) Len() int { return len(q) }
func (q detectionQueue) Less(i, j int) bool {
	if q[i].ready != q[j].ready {
		return q[i].ready < q[j].ready
	}
	return q[i].seq < q[j].seq
}
func (q detectionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *detectionQueue) Push(x any)   { *q = append(*q, x.(pendingDetection)) }
func (q *detectionQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// LiDARTracker turns camera detections into tracked objects by looking up
// their clouds. A detection stamped t is released at tick t+Frequency.
type LiDARTracker struct {
	ID        int
	Frequency int

	db     *LiDARDatabase
	status objects.Status
	queue  detectionQueue
	seq    int
	now    int
	last   []objects.TrackedObject
}

func NewLiDARTracker(id, frequency int, db *LiDARDatabase) *LiDARTracker {
	return &LiDARTracker{ID: id, Frequency: frequency, db: db}
}

func (l *LiDARTracker) Name() string           { return objects.LiDARName(l.ID) }
func (l *LiDARTracker) Status() objects.Status { return l.status }

// LastFrame is the last batch of tracked objects the tracker released.
func (l *LiDARTracker) LastFrame() []objects.TrackedObject {
	return objects.CloneTracked(l.last)
}

// Detect queues a camera frame and returns whatever is already due.
func (l *LiDARTracker) Detect(frame objects.StampedDetectedObjects) [][]objects.TrackedObject {
	if l.status.Terminal() {
		return nil
	}
	l.seq++
	heap.Push(&l.queue, pendingDetection{ready: frame.Time + l.Frequency, seq: l.seq, frame: frame})
	return l.drain()
}

// Tick advances the tracker to tick t and returns one batch of tracked
// objects per released detection frame. An ERROR cloud at t puts the tracker
// in ERROR and is returned as a *Fault.
func (l *LiDARTracker) Tick(t int) ([][]objects.TrackedObject, error) {
	if l.status.Terminal() {
		return nil, nil
	}
	if l.db.FaultAt(t) {
		l.status = objects.StatusError
		l.queue = nil
		return nil, &Fault{Sensor: l.Name(), Time: t, Description: LiDARFaultDescription}
	}
	l.now = max(l.now, t)
	return l.drain(), nil
}

func (l *LiDARTracker) drain() [][]objects.TrackedObject {
	var out [][]objects.TrackedObject
	for l.queue.Len() > 0 && l.queue[0].ready <= l.now {
		p := heap.Pop(&l.queue).(pendingDetection)
		if batch := l.track(p.frame); len(batch) > 0 {
			out = append(out, batch)
			l.last = batch
		}
	}
	return out
}

// track keeps the detections that have a cloud at their detection time.
func (l *LiDARTracker) track(frame objects.StampedDetectedObjects) []objects.TrackedObject {
	var batch []objects.TrackedObject
	for _, d := range frame.DetectedObjects {
		pts, ok := l.db.Lookup(d.ID, frame.Time)
		if !ok {
			continue
		}
		batch = append(batch, objects.TrackedObject{
			ID:          d.ID,
			Time:        frame.Time,
			Description: d.Description,
			Coordinates: append([]objects.CloudPoint(nil), pts...),
		})
	}
	return batch
}

// Pending is the number of detection frames not yet released.
func (l *LiDARTracker) Pending() int { return l.queue.Len() }

// Discard drops every queued detection and returns how many there were.
func (l *LiDARTracker) Discard() int {
	n := l.queue.Len()
	l.queue = nil
	return n
}

// Stop puts an UP tracker DOWN. It reports whether the status changed.
func (l *LiDARTracker) Stop() bool {
	if l.status.Terminal() {
		return false
	}
	l.status = objects.StatusDown
	return true
}
