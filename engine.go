package slamwood

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguibr/slamwood/internal/log"
)

// Engine runs actors on top of a Bus, one goroutine per actor.
type Engine struct {
	bus      *Bus
	actors   map[string]*process
	mu       sync.RWMutex // Protects the actors map
	stopping atomic.Bool  // Indicates if the engine is shutting down
	wg       sync.WaitGroup
	log      *slog.Logger
}

// NewEngine creates a new actor engine with its own bus.
// A nil logger uses the global one.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = log.L()
	}
	return &Engine{
		bus:    NewBus(logger),
		actors: make(map[string]*process),
		log:    logger,
	}
}

// Bus returns the engine's message bus.
func (e *Engine) Bus() *Bus { return e.bus }

// Spawn registers an actor under name, runs its Initialize on the calling
// goroutine and then starts its loop. When Spawn returns without error every
// subscription the actor made is live.
func (e *Engine) Spawn(name string, props *Props) (*PID, error) {
	if e.stopping.Load() {
		return nil, ErrEngineStopping
	}
	if err := e.bus.Register(name); err != nil {
		return nil, err
	}

	pid := &PID{ID: name}
	proc := newProcess(e, pid, props)

	// Visible to Stop before Initialize, which may hand the context to
	// goroutines that terminate the actor early.
	e.mu.Lock()
	e.actors[name] = proc
	e.mu.Unlock()

	if err := proc.initialize(); err != nil {
		e.mu.Lock()
		delete(e.actors, name)
		e.mu.Unlock()
		_ = e.bus.Unregister(name)
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	e.wg.Add(1)
	go proc.run() // Start the actor's run loop

	proc.log.Debug("actor started")
	return pid, nil
}

// Stop terminates the actor identified by pid. Its mailbox is released at
// once, so pending events resolve with no answer and a blocked loop wakes.
func (e *Engine) Stop(pid *PID) {
	if pid == nil {
		return
	}
	e.mu.RLock()
	proc, ok := e.actors[pid.ID]
	e.mu.RUnlock()

	if ok && proc != nil {
		proc.terminated.Store(true)
	}
	_ = e.bus.Unregister(pid.ID)
}

// remove drops a finished process. Called by process.run on exit.
func (e *Engine) remove(proc *process) {
	_ = e.bus.Unregister(proc.pid.ID)

	e.mu.Lock()
	delete(e.actors, proc.pid.ID)
	e.mu.Unlock()

	proc.log.Debug("actor stopped")
	e.wg.Done()
}

// Running returns the names of the actors whose loop is still running.
func (e *Engine) Running() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.actors))
	for name := range e.actors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wait blocks until every spawned actor has stopped.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// WaitTimeout is Wait bounded by timeout. It reports whether all actors
// stopped in time.
func (e *Engine) WaitTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Shutdown stops all actors and waits for them to terminate.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		e.log.Debug("engine already shutting down")
		return
	}

	running := e.Running()
	e.log.Debug("engine shutdown initiated", "actors", len(running))
	for _, name := range running {
		e.Stop(&PID{ID: name})
	}

	if !e.WaitTimeout(timeout) {
		e.log.Warn("engine shutdown timeout, actors did not stop",
			"actors", strings.Join(e.Running(), ", "))
		return
	}
	e.log.Debug("engine shutdown complete")
}
