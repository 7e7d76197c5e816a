package objects

// Status is the lifecycle state of a sensor. UP is initial; ERROR and DOWN
// are terminal.
type Status int

const (
	StatusUp Status = iota
	StatusError
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "UP"
	case StatusError:
		return "ERROR"
	case StatusDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool { return s != StatusUp }
