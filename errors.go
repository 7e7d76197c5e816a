package slamwood

import "errors"

var (
	// ErrNotRegistered means an actor was used before Register or after
	// Unregister. It is a lifecycle bug, not a runtime condition.
	ErrNotRegistered = errors.New("slamwood: actor not registered")
	// ErrAlreadyRegistered is returned by Register for a duplicate name.
	ErrAlreadyRegistered = errors.New("slamwood: actor already registered")
	// ErrWrongKind is returned when subscribing an event kind as a broadcast
	// or the other way around.
	ErrWrongKind = errors.New("slamwood: wrong message kind for subscription")
	// ErrEngineStopping is returned by Spawn during Shutdown.
	ErrEngineStopping = errors.New("slamwood: engine is stopping")
	// ErrTimeout is returned by Future.Await when the context ends first.
	ErrTimeout = errors.New("slamwood: timeout waiting for future")
)
