package slamwood

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lguibr/slamwood/internal/log"
)

// Bus is the in-process message broker. It owns one mailbox per registered
// actor, a round-robin roster per event kind, a subscriber set per broadcast
// kind, and the futures of events still in flight.
//
// Every method is safe for concurrent use. Only AwaitMessage blocks.
type Bus struct {
	mu         sync.Mutex
	mailboxes  map[string]*mailbox
	events     map[Kind][]string
	broadcasts map[Kind]map[string]struct{}
	futures    map[Event]inflight
	log        *slog.Logger
}

// inflight is an event whose reply has not arrived yet.
type inflight struct {
	future *Future[bool]
	target string
}

// NewBus creates an empty bus. A nil logger uses the global one.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = log.L()
	}
	return &Bus{
		mailboxes:  make(map[string]*mailbox),
		events:     make(map[Kind][]string),
		broadcasts: make(map[Kind]map[string]struct{}),
		futures:    make(map[Event]inflight),
		log:        logger.With("component", "bus"),
	}
}

// Register allocates an empty mailbox for name.
func (b *Bus) Register(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRegistered)
	}
	b.mailboxes[name] = newMailbox()
	return nil
}

// IsRegistered reports whether name currently owns a mailbox.
func (b *Bus) IsRegistered(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.mailboxes[name]
	return ok
}

// SubscribeEvent appends name to the round-robin roster of kind.
// Subscribing twice has no further effect.
func (b *Bus) SubscribeEvent(kind Kind, name string) error {
	if !kind.IsEvent() {
		return fmt.Errorf("subscribe event %s: %w", kind, ErrWrongKind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[name]; !ok {
		return fmt.Errorf("subscribe %q to %s: %w", name, kind, ErrNotRegistered)
	}
	for _, n := range b.events[kind] {
		if n == name {
			return nil
		}
	}
	b.events[kind] = append(b.events[kind], name)
	return nil
}

// SubscribeBroadcast adds name to the subscriber set of kind.
func (b *Bus) SubscribeBroadcast(kind Kind, name string) error {
	if kind.IsEvent() {
		return fmt.Errorf("subscribe broadcast %s: %w", kind, ErrWrongKind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[name]; !ok {
		return fmt.Errorf("subscribe %q to %s: %w", name, kind, ErrNotRegistered)
	}
	set, ok := b.broadcasts[kind]
	if !ok {
		set = make(map[string]struct{})
		b.broadcasts[kind] = set
	}
	set[name] = struct{}{}
	return nil
}

// SendEvent hands e to the next subscriber of its kind in round-robin order
// and returns the future its reply will resolve. With no subscriber it
// returns nil (the "no result" future) and delivers nothing. It never blocks.
func (b *Bus) SendEvent(e Event) *Future[bool] {
	b.mu.Lock()
	defer b.mu.Unlock()

	roster := b.events[e.Kind()]
	if len(roster) == 0 {
		b.log.Debug("event dropped, no subscriber", "kind", e.Kind())
		return nil
	}
	target := roster[0]
	copy(roster, roster[1:])
	roster[len(roster)-1] = target

	mb := b.mailboxes[target]
	if mb == nil || !mb.put(e) {
		return nil
	}
	f := NewFuture[bool]()
	b.futures[e] = inflight{future: f, target: target}
	return f
}

// SendBroadcast enqueues m on every current subscriber of its kind.
func (b *Bus) SendBroadcast(m Message) {
	if m.Kind().IsEvent() {
		b.log.Warn("event sent as broadcast, dropped", "kind", m.Kind())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for name := range b.broadcasts[m.Kind()] {
		if mb := b.mailboxes[name]; mb != nil {
			mb.put(m)
		}
	}
}

// Complete resolves the future recorded for e and forgets it. Completing an
// unknown or already completed event is a no-op.
func (b *Bus) Complete(e Event, result bool) {
	b.mu.Lock()
	in, ok := b.futures[e]
	delete(b.futures, e)
	b.mu.Unlock()
	if !ok {
		b.log.Debug("complete for unknown event ignored", "kind", e.Kind())
		return
	}
	in.future.Resolve(result)
}

// AwaitMessage blocks until name's mailbox has a message. It fails with
// ErrNotRegistered if name has no mailbox, including when the mailbox is
// released while waiting.
func (b *Bus) AwaitMessage(name string) (Message, error) {
	b.mu.Lock()
	mb := b.mailboxes[name]
	b.mu.Unlock()
	if mb == nil {
		return nil, fmt.Errorf("await %q: %w", name, ErrNotRegistered)
	}
	msg, ok := mb.take()
	if !ok {
		return nil, fmt.Errorf("await %q: mailbox released: %w", name, ErrNotRegistered)
	}
	return msg, nil
}

// Unregister releases name's mailbox, removes it from every roster, and
// resolves with no answer the futures of every event addressed to it that
// was not completed: those still queued and those taken but never answered.
func (b *Bus) Unregister(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	mb, ok := b.mailboxes[name]
	if !ok {
		return fmt.Errorf("unregister %q: %w", name, ErrNotRegistered)
	}
	delete(b.mailboxes, name)

	for kind, roster := range b.events {
		kept := roster[:0]
		for _, n := range roster {
			if n != name {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(b.events, kind)
		} else {
			b.events[kind] = kept
		}
	}
	for _, set := range b.broadcasts {
		delete(set, name)
	}

	dropped := len(mb.close())
	abandoned := 0
	for e, in := range b.futures {
		if in.target != name {
			continue
		}
		delete(b.futures, e)
		in.future.abandon()
		abandoned++
	}
	if abandoned > 0 {
		b.log.Debug("abandoned in-flight events", "actor", name, "count", abandoned, "dropped", dropped)
	}
	return nil
}

// InFlight returns the number of events whose future is still unresolved.
func (b *Bus) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.futures)
}

// Queued returns the number of messages waiting in name's mailbox.
func (b *Bus) Queued(name string) int {
	b.mu.Lock()
	mb := b.mailboxes[name]
	b.mu.Unlock()
	if mb == nil {
		return 0
	}
	return mb.len()
}
