package slamwood

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/lguibr/slamwood/internal/log"
)

// process is the running instance of an actor: its handler table and loop.
type process struct {
	engine     *Engine
	pid        *PID
	actor      Actor
	props      *Props
	handlers   map[Kind]Handler
	subErr     error
	terminated atomic.Bool
	log        *slog.Logger
}

func newProcess(engine *Engine, pid *PID, props *Props) *process {
	return &process{
		engine:   engine,
		pid:      pid,
		props:    props,
		handlers: make(map[Kind]Handler),
		log:      log.Actor(engine.log, pid.ID),
	}
}

// initialize produces the actor and lets it subscribe. Panics in either step
// are turned into errors so Spawn can refuse the actor.
func (p *process) initialize() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor %s panicked during initialization: %v", p.pid.ID, r)
		}
	}()

	p.actor = p.props.Produce()
	if p.actor == nil {
		return fmt.Errorf("actor %s producer returned nil actor", p.pid.ID)
	}
	p.actor.Initialize(&actorContext{engine: p.engine, proc: p})
	return p.subErr
}

func (p *process) subscribe(kind Kind, h Handler) {
	var err error
	if kind.IsEvent() {
		err = p.engine.bus.SubscribeEvent(kind, p.pid.ID)
	} else {
		err = p.engine.bus.SubscribeBroadcast(kind, p.pid.ID)
	}
	if err != nil {
		p.subErr = errors.Join(p.subErr, err)
		return
	}
	p.handlers[kind] = h
}

// run is the main loop: take, dispatch, repeat until terminated.
func (p *process) run() {
	defer p.engine.remove(p)

	for !p.terminated.Load() {
		msg, err := p.engine.bus.AwaitMessage(p.pid.ID)
		if err != nil {
			if !p.terminated.Load() {
				p.log.Error("mailbox lost while running", "error", err)
			}
			return
		}
		p.invoke(msg)
	}
}

// invoke calls the handler for msg, recovering from panics in it. A panicking
// actor announces Crashed so its peers stop waiting on it, then terminates.
func (p *process) invoke(msg Message) {
	h, ok := p.handlers[msg.Kind()]
	if !ok {
		p.log.Debug("no handler for message", "kind", msg.Kind())
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("actor panicked",
				"kind", msg.Kind(),
				"panic", r,
				"stack", string(debug.Stack()))
			p.engine.bus.SendBroadcast(Crashed{Sender: p.pid.ID, Reason: fmt.Sprint(r)})
			p.terminated.Store(true)
		}
	}()
	h(&actorContext{engine: p.engine, proc: p, message: msg})
}
