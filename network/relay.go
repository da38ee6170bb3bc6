package network

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/luca-patrignani/tactical-duel/relay"
)

// RelayClient reaches the other players through a relay server. Its own
// identifier is unknown until the relay welcomes it.
type RelayClient struct {
	conn    *websocket.Conn
	box     *mailbox
	out     chan relay.Frame
	logger  *slog.Logger
	backlog int

	mu    sync.Mutex
	self  protocol.PeerID
	known bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type relayOption func(*RelayClient)

func WithRelayLogger(l *slog.Logger) relayOption {
	return func(c *RelayClient) {
		c.logger = l
	}
}

// WithRelayBacklog sets how many packets can wait to be written.
func WithRelayBacklog(n int) relayOption {
	return func(c *RelayClient) {
		c.backlog = n
	}
}

// DialRelay connects to the websocket of a relay, for instance
// ws://host:port/ws.
func DialRelay(ctx context.Context, url string, opts ...relayOption) (*RelayClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing relay %s: %w", url, err)
	}
	c := &RelayClient{
		conn:    conn,
		box:     newMailbox(),
		logger:  slog.Default(),
		backlog: 256,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.out = make(chan relay.Frame, c.backlog)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

func (c *RelayClient) readLoop() {
	defer c.wg.Done()
	for {
		var f relay.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("relay connection lost", "err", err)
				c.cancel()
			}
			for _, id := range c.box.peers() {
				c.box.markDisconnected(id)
			}
			return
		}
		switch f.Type {
		case relay.FrameWelcome:
			c.mu.Lock()
			c.self, c.known = f.Peer, true
			c.mu.Unlock()
			c.logger.Info("joined relay", "self", f.Peer)
			for _, id := range f.Peers {
				c.box.markConnected(id)
			}
		case relay.FramePeerJoined:
			c.box.markConnected(f.Peer)
		case relay.FramePeerLeft:
			c.box.markDisconnected(f.Peer)
		case relay.FrameData:
			c.box.deliver(f.Peer, f.Data)
		default:
			c.logger.Debug("unexpected frame", "type", f.Type)
		}
	}
}

func (c *RelayClient) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(f); err != nil {
				c.logger.Warn("cannot write to relay", "err", err)
				c.cancel()
				return
			}
		}
	}
}

func (c *RelayClient) Self() (protocol.PeerID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self, c.known
}

func (c *RelayClient) Peers() []protocol.PeerID {
	return c.box.peers()
}

// Send queues data for peer to, which must be connected.
func (c *RelayClient) Send(to protocol.PeerID, data []byte) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	if !c.box.isConnected(to) {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, to)
	}
	select {
	case c.out <- relay.Frame{Type: relay.FrameData, Peer: to, Data: append([]byte(nil), data...)}:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrBacklogFull, to)
	}
}

func (c *RelayClient) Receive() []protocol.Packet {
	return c.box.packets()
}

func (c *RelayClient) PollPeerChanges() []protocol.PeerChange {
	return c.box.peerChanges()
}

// Close leaves the relay. The readers of the other clients see it as a
// disconnection.
func (c *RelayClient) Close() error {
	c.cancel()
	deadline := time.Now().Add(time.Second)
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	err := c.conn.Close()
	c.wg.Wait()
	return err
}
