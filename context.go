package slamwood

import "log/slog"

// Context gives an actor access to the bus while it initializes or handles a
// message.
type Context interface {
	// Engine returns the engine running this actor.
	Engine() *Engine
	// Self returns the PID of the actor.
	Self() *PID
	// Message returns the message being handled, nil during Initialize.
	Message() Message
	// Logger returns the actor-scoped logger.
	Logger() *slog.Logger
	// Subscribe routes messages of kind to h. Event kinds join the
	// round-robin roster, broadcast kinds join the subscriber set.
	Subscribe(kind Kind, h Handler)
	// SendEvent sends e to one subscriber and returns its future.
	SendEvent(e Event) *Future[bool]
	// Broadcast sends m to every subscriber of its kind.
	Broadcast(m Message)
	// Complete answers an event this actor received.
	Complete(e Event, result bool)
	// Terminate stops the actor: its loop exits and it is unregistered.
	// Safe to call from any goroutine.
	Terminate()
}

// actorContext implements the Context interface.
type actorContext struct {
	engine  *Engine
	proc    *process
	message Message
}

func (c *actorContext) Engine() *Engine      { return c.engine }
func (c *actorContext) Self() *PID           { return c.proc.pid }
func (c *actorContext) Message() Message     { return c.message }
func (c *actorContext) Logger() *slog.Logger { return c.proc.log }

func (c *actorContext) Subscribe(kind Kind, h Handler) {
	c.proc.subscribe(kind, h)
}

func (c *actorContext) SendEvent(e Event) *Future[bool] {
	return c.engine.bus.SendEvent(e)
}

func (c *actorContext) Broadcast(m Message) {
	c.engine.bus.SendBroadcast(m)
}

func (c *actorContext) Complete(e Event, result bool) {
	c.engine.bus.Complete(e, result)
}

func (c *actorContext) Terminate() {
	c.engine.Stop(c.proc.pid)
}
