package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

const senderHeader = "Sender"

// Peer is a node of a full mesh. ID identifies the Peer and Addresses[id]
// contains the address to reach the peer id, the Peer itself included.
type Peer struct {
	ID        protocol.PeerID
	Addresses map[protocol.PeerID]string

	server    *http.Server
	client    *http.Client
	tlsConfig *tls.Config
	timeout   time.Duration
	retry     time.Duration
	backlog   int
	logger    *slog.Logger

	box    *mailbox
	links  map[protocol.PeerID]chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPeer starts serving on l and starts reaching out to every other
// address.
func NewPeer(id protocol.PeerID, addresses map[protocol.PeerID]string, l net.Listener, opts ...peerOption) *Peer {
	p := &Peer{
		ID:        id,
		Addresses: copyMap(addresses),
		client:    &http.Client{},
		timeout:   10 * time.Second,
		retry:     100 * time.Millisecond,
		backlog:   256,
		logger:    slog.Default(),
		box:       newMailbox(),
		links:     map[protocol.PeerID]chan []byte{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("peer", id)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /hello", p.handle(func(from protocol.PeerID, _ []byte) {
		p.box.markConnected(from)
	}))
	mux.HandleFunc("POST /packet", p.handle(func(from protocol.PeerID, body []byte) {
		p.box.markConnected(from)
		p.box.deliver(from, body)
	}))
	mux.HandleFunc("POST /bye", p.handle(func(from protocol.PeerID, _ []byte) {
		p.box.markDisconnected(from)
	}))
	p.server = &http.Server{Handler: mux}
	if p.tlsConfig != nil {
		l = tls.NewListener(l, p.tlsConfig)
	}
	go func() {
		err := p.server.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("server stopped", "err", err)
		}
	}()

	for other := range p.Addresses {
		if other == id {
			continue
		}
		out := make(chan []byte, p.backlog)
		p.links[other] = out
		p.wg.Add(1)
		go p.run(other, out)
	}
	return p
}

func (p *Peer) handle(accept func(from protocol.PeerID, body []byte)) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		from := protocol.PeerID(req.Header.Get(senderHeader))
		if _, ok := p.Addresses[from]; !ok || from == p.ID {
			rw.WriteHeader(http.StatusForbidden)
			return
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		accept(from, body)
		rw.WriteHeader(http.StatusAccepted)
	}
}

// run owns the link towards one peer: it greets it until it answers, then
// forwards queued packets in order.
func (p *Peer) run(to protocol.PeerID, out <-chan []byte) {
	defer p.wg.Done()
	for {
		if err := p.greet(to); err != nil {
			return
		}
		if p.box.markConnected(to) {
			p.logger.Debug("link up", "to", to)
		}
		if !p.forward(to, out) {
			return
		}
	}
}

func (p *Peer) greet(to protocol.PeerID) error {
	for {
		err := p.postOnce(p.ctx, to, "/hello", nil)
		if err == nil {
			return nil
		}
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()
		case <-time.After(p.retry):
		}
	}
}

// forward sends packets until one cannot be delivered, in which case it
// returns true so that the link is greeted again. It returns false when the
// Peer is closed.
func (p *Peer) forward(to protocol.PeerID, out <-chan []byte) bool {
	for {
		select {
		case <-p.ctx.Done():
			return false
		case data := <-out:
			if err := p.post(to, "/packet", data); err != nil {
				if p.ctx.Err() != nil {
					return false
				}
				p.logger.Warn("packet dropped", "to", to, "err", err)
				p.box.markDisconnected(to)
				return true
			}
		}
	}
}

// post retries until the packet is accepted or the timeout expires.
func (p *Peer) post(to protocol.PeerID, path string, body []byte) error {
	start := time.Now()
	for {
		err := p.postOnce(p.ctx, to, path, body)
		if err == nil {
			return nil
		}
		if p.timeout > 0 && time.Since(start) > p.timeout {
			return fmt.Errorf("delivery attempts timed out with error %w", err)
		}
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()
		case <-time.After(p.retry):
		}
	}
}

func (p *Peer) postOnce(ctx context.Context, to protocol.PeerID, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url(to)+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set(senderHeader, string(p.ID))
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%s answered %d", to, resp.StatusCode)
	}
	return nil
}

func (p *Peer) url(id protocol.PeerID) string {
	addr := p.Addresses[id]
	if strings.Contains(addr, "://") {
		return addr
	}
	if p.tlsConfig != nil {
		return "https://" + addr
	}
	return "http://" + addr
}

// Self returns the identifier of the Peer, which is always known.
func (p *Peer) Self() (protocol.PeerID, bool) {
	return p.ID, true
}

// Peers lists the peers currently connected.
func (p *Peer) Peers() []protocol.PeerID {
	return p.box.peers()
}

// Send queues data for peer to.
func (p *Peer) Send(to protocol.PeerID, data []byte) error {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	out, ok := p.links[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, to)
	}
	select {
	case out <- append([]byte(nil), data...):
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrBacklogFull, to)
	}
}

// Receive drains the packets received since the previous call.
func (p *Peer) Receive() []protocol.Packet {
	return p.box.packets()
}

// PollPeerChanges drains the connection changes since the previous call.
func (p *Peer) PollPeerChanges() []protocol.PeerChange {
	return p.box.peerChanges()
}

// Close says goodbye to the connected peers and stops the Peer.
func (p *Peer) Close() error {
	if p.ctx.Err() != nil {
		return nil
	}
	for _, id := range p.box.peers() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := p.postOnce(ctx, id, "/bye", nil); err != nil {
			p.logger.Debug("goodbye not delivered", "to", id, "err", err)
		}
		cancel()
	}
	p.cancel()
	err := p.server.Shutdown(context.Background())
	p.wg.Wait()
	return err
}

// CreateListeners opens n listeners on localhost and names their owners
// "peer-0" to "peer-(n-1)".
func CreateListeners(n int) (map[protocol.PeerID]net.Listener, map[protocol.PeerID]string) {
	listeners := make(map[protocol.PeerID]net.Listener)
	addresses := make(map[protocol.PeerID]string)
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			panic(err)
		}
		id := protocol.PeerID(fmt.Sprintf("peer-%d", i))
		listeners[id] = l
		addresses[id] = l.Addr().String()
	}
	return listeners, addresses
}

func copyMap(original map[protocol.PeerID]string) map[protocol.PeerID]string {
	copied := make(map[protocol.PeerID]string, len(original))
	for k, v := range original {
		copied[k] = v
	}
	return copied
}
