package protocol

import "log/slog"

// Handler reacts to a message received from a peer.
type Handler func(from PeerID, msg Message)

type registration struct {
	fn    Handler
	scope *Scope
}

// Bus routes messages to handlers by kind. It is not safe for concurrent use:
// the frame loop owns it.
type Bus struct {
	handlers map[Kind][]*registration
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{handlers: map[Kind][]*registration{}, logger: logger}
}

// Handle registers fn for kind for the lifetime of the bus.
func (b *Bus) Handle(kind Kind, fn Handler) {
	b.handlers[kind] = append(b.handlers[kind], &registration{fn: fn})
}

// Scope opens a group of handlers that can be removed at once.
func (b *Bus) Scope(name string) *Scope {
	return &Scope{bus: b, name: name}
}

// Dispatch calls every handler registered for the kind of msg, in
// registration order, and returns how many ran. Handlers whose scope is closed
// while the message is being dispatched are skipped.
func (b *Bus) Dispatch(from PeerID, msg Message) int {
	regs := append([]*registration(nil), b.handlers[msg.Kind()]...)
	n := 0
	for _, r := range regs {
		if r.scope != nil && r.scope.closed {
			continue
		}
		r.fn(from, msg)
		n++
	}
	if n == 0 {
		b.logger.Debug("message not handled", "kind", msg.Kind(), "peer", from)
	}
	return n
}

// Scope is a set of handlers tied to one phase of the game.
type Scope struct {
	bus    *Bus
	name   string
	kinds  []Kind
	closed bool
}

// Handle registers fn for kind until the scope is closed.
func (s *Scope) Handle(kind Kind, fn Handler) {
	if s.closed {
		return
	}
	s.bus.handlers[kind] = append(s.bus.handlers[kind], &registration{fn: fn, scope: s})
	s.kinds = append(s.kinds, kind)
}

// Close removes every handler of the scope. It is safe to call more than once.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, kind := range s.kinds {
		regs := s.bus.handlers[kind]
		kept := regs[:0:0]
		for _, r := range regs {
			if r.scope != s {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.bus.handlers, kind)
		} else {
			s.bus.handlers[kind] = kept
		}
	}
	s.kinds = nil
	s.bus.logger.Debug("handlers removed", "scope", s.name)
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	return s.closed
}
