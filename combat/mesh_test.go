package combat

import (
	"sort"
	"testing"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/ledger"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

type delivery struct {
	from, to protocol.PeerID
	data     []byte
}

// mesh connects controllers in memory. Messages go through the wire codec
// and are delivered in order when flush is called.
type mesh struct {
	t     *testing.T
	buses map[protocol.PeerID]*protocol.Bus
	queue []delivery
}

type endpoint struct {
	id   protocol.PeerID
	m    *mesh
	sent []protocol.Message
}

func newMesh(t *testing.T) *mesh {
	return &mesh{t: t, buses: map[protocol.PeerID]*protocol.Bus{}}
}

func (e *endpoint) Broadcast(msg protocol.Message) {
	ids := make([]protocol.PeerID, 0, len(e.m.buses))
	for id := range e.m.buses {
		if id != e.id {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	e.sent = append(e.sent, msg)
	for _, id := range ids {
		e.enqueue(msg, id)
	}
}

func (e *endpoint) Send(msg protocol.Message, to protocol.PeerID) {
	e.sent = append(e.sent, msg)
	e.enqueue(msg, to)
}

func (e *endpoint) enqueue(msg protocol.Message, to protocol.PeerID) {
	data, err := protocol.Encode(msg)
	if err != nil {
		e.m.t.Fatalf("encode %v: %v", msg.Kind(), err)
	}
	e.m.queue = append(e.m.queue, delivery{from: e.id, to: to, data: data})
}

func (e *endpoint) count(kind protocol.Kind) int {
	n := 0
	for _, m := range e.sent {
		if m.Kind() == kind {
			n++
		}
	}
	return n
}

func (m *mesh) flush() {
	for len(m.queue) > 0 {
		d := m.queue[0]
		m.queue = m.queue[1:]
		msg, err := protocol.Decode(d.data)
		if err != nil {
			m.t.Fatalf("decode: %v", err)
		}
		m.buses[d.to].Dispatch(d.from, msg)
	}
}

type peer struct {
	*Controller
	net     *endpoint
	bus     *protocol.Bus
	journal *ledger.Journal
}

func (m *mesh) join(id protocol.PeerID, opts ...Option) *peer {
	bus := protocol.NewBus(nil)
	m.buses[id] = bus
	net := &endpoint{id: id, m: m}
	j := ledger.NewJournal(id)
	opts = append([]Option{WithJournal(j)}, opts...)
	stats := Stats{Name: string(id), MaxHealth: 50, ActionPoints: 6, MovementPoints: 3}
	return &peer{Controller: NewController(id, stats, bus, net, opts...), net: net, bus: bus, journal: j}
}

func openArena() *grid.Chunk {
	return grid.NewChunk(grid.ChunkCoordinate{}, grid.Ground)
}

// smallArena has exactly ten ground tiles, so every one of them is offered
// as a placement spot.
func smallArena(t *testing.T) *grid.Chunk {
	ch, err := grid.ParseChunk(grid.ChunkCoordinate{}, []string{
		".....",
		".....",
	})
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

// duel puts a (owner) and b in preparation on arena.
func duel(t *testing.T, m *mesh, a, b *peer, arena *grid.Chunk) {
	t.Helper()
	if err := b.Enter(Engagement{Owner: a.Self(), Opponents: []protocol.PeerID{a.Self()}, Arena: arena}); err != nil {
		t.Fatal(err)
	}
	if err := a.Enter(Engagement{Owner: a.Self(), Opponents: []protocol.PeerID{b.Self()}, Arena: arena}); err != nil {
		t.Fatal(err)
	}
	m.flush()
}
