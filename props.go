package slamwood

// Actor is a service running on the bus. Initialize subscribes the actor's
// handlers; it runs exactly once, before the actor's loop starts, so every
// subscription exists by the time Spawn returns.
type Actor interface {
	Initialize(ctx Context)
}

// Handler reacts to one message. ctx.Message() holds the message.
type Handler func(ctx Context)

// Producer creates a new actor instance.
type Producer func() Actor

// Props is the recipe for spawning an actor.
type Props struct {
	producer Producer
}

// NewProps wraps producer. It panics on a nil producer.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("slamwood: producer cannot be nil")
	}
	return &Props{producer: producer}
}

// PropsOf is NewProps for an already built actor.
func PropsOf(a Actor) *Props {
	return NewProps(func() Actor { return a })
}

// Produce creates a new actor instance.
func (p *Props) Produce() Actor {
	return p.producer()
}

// PID identifies a spawned actor. ID is the actor's unique name.
type PID struct {
	ID string
}

func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}
