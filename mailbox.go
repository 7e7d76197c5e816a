package slamwood

import "sync"

// mailbox is an unbounded FIFO of messages with a blocking take.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Message
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// put appends msg. It returns false once the mailbox is closed.
func (m *mailbox) put(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.queue = append(m.queue, msg)
	m.cond.Signal()
	return true
}

// take blocks until a message is available or the mailbox is closed.
func (m *mailbox) take() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return nil, false
	}
	msg := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	return msg, true
}

// close wakes every taker and returns whatever was still queued.
func (m *mailbox) close() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	left := m.queue
	m.queue = nil
	m.cond.Broadcast()
	return left
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
