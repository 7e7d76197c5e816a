// Package recording loads the pre-recorded sensor data a run replays.
package recording

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lguibr/slamwood/objects"
)

// Cameras maps a camera key to its frames, in file order.
type Cameras map[string][]objects.StampedDetectedObjects

// Frames returns the frames recorded under key, sorted by time.
func (c Cameras) Frames(key string) ([]objects.StampedDetectedObjects, bool) {
	frames, ok := c[key]
	if !ok {
		return nil, false
	}
	out := append([]objects.StampedDetectedObjects(nil), frames...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, true
}

// lidarRecord is one entry of the LiDAR file. Points are [x, y, z].
type lidarRecord struct {
	Time        int         `json:"time"`
	ID          string      `json:"id"`
	CloudPoints [][]float64 `json:"cloudPoints"`
}

func LoadCameras(path string) (Cameras, error) {
	return loadFile(path, ReadCameras)
}

// ReadCameras decodes a camera file: an object mapping each camera key to
// a list of {time, detectedObjects}.
func ReadCameras(r io.Reader) (Cameras, error) {
	var c Cameras
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode camera data: %w", err)
	}
	return c, nil
}

func LoadLiDAR(path string) ([]objects.StampedCloudPoints, error) {
	return loadFile(path, ReadLiDAR)
}

// ReadLiDAR decodes a LiDAR file: a list of {time, id, cloudPoints} where
// every point is [x, y] or [x, y, z]. The z coordinate is dropped.
func ReadLiDAR(r io.Reader) ([]objects.StampedCloudPoints, error) {
	var recs []lidarRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode lidar data: %w", err)
	}
	return convertLiDAR(recs)
}

func convertLiDAR(recs []lidarRecord) ([]objects.StampedCloudPoints, error) {
	out := make([]objects.StampedCloudPoints, 0, len(recs))
	for i, r := range recs {
		pts := make([]objects.CloudPoint, 0, len(r.CloudPoints))
		for j, p := range r.CloudPoints {
			if len(p) < 2 {
				return nil, fmt.Errorf("lidar record %d (%s@%d): point %d has %d coordinates", i, r.ID, r.Time, j, len(p))
			}
			pts = append(pts, objects.CloudPoint{X: p[0], Y: p[1]})
		}
		out = append(out, objects.StampedCloudPoints{ID: r.ID, Time: r.Time, CloudPoints: pts})
	}
	return out, nil
}

func LoadPoses(path string) ([]objects.Pose, error) {
	return loadFile(path, ReadPoses)
}

// ReadPoses decodes a pose file: a list of {time, x, y, yaw}.
func ReadPoses(r io.Reader) ([]objects.Pose, error) {
	var poses []objects.Pose
	if err := json.NewDecoder(r).Decode(&poses); err != nil {
		return nil, fmt.Errorf("decode pose data: %w", err)
	}
	return poses, nil
}

// loadFile opens path and hands it to read, naming the file in any error.
func loadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
