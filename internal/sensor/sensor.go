// Package sensor implements the tick-driven state machines of the camera,
// the LiDAR tracker and the GPS/IMU pose source. Sensors are plain values
// owned by one actor each; they never touch the bus.
package sensor

import "fmt"

// Fault is returned by a sensor when it reads a corrupted entry. The sensor
// is in ERROR once a Fault was returned.
type Fault struct {
	Sensor      string
	Time        int
	Description string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s failed at tick %d: %s", f.Sensor, f.Time, f.Description)
}
