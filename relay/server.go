package relay

import (
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"go.dedis.ch/kyber/v4/util/random"
)

const writeWait = 5 * time.Second

type client struct {
	id   protocol.PeerID
	conn *websocket.Conn
	out  chan Frame
}

// Server is an http.Handler serving the relay on /ws, plus /healthz and
// /peers.
type Server struct {
	mu       sync.Mutex
	clients  map[protocol.PeerID]*client
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	random   cipher.Stream
	outbox   int
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		clients: map[protocol.PeerID]*client{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
		outbox: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = random.New()
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	s.router.HandleFunc("/peers", s.servePeers).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Peers lists the connected clients.
func (s *Server) Peers() []protocol.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]protocol.PeerID, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close drops every connection.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) servePeers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Peers()); err != nil {
		s.logger.Warn("cannot write peer list", "err", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := s.register(conn)
	s.logger.Info("client joined", "peer", c.id, "remote", r.RemoteAddr)
	go s.writeLoop(c)
	s.readLoop(c)
	s.unregister(c)
	s.logger.Info("client left", "peer", c.id)
}

func (s *Server) register(conn *websocket.Conn) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &client{id: s.newID(), conn: conn, out: make(chan Frame, s.outbox)}
	others := make([]protocol.PeerID, 0, len(s.clients))
	for id, o := range s.clients {
		others = append(others, id)
		s.enqueue(o, Frame{Type: FramePeerJoined, Peer: c.id})
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	s.clients[c.id] = c
	s.enqueue(c, Frame{Type: FrameWelcome, Peer: c.id, Peers: others})
	return c
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
	close(c.out)
	for _, o := range s.clients {
		s.enqueue(o, Frame{Type: FramePeerLeft, Peer: c.id})
	}
}

// newID must be called with s.mu held.
func (s *Server) newID() protocol.PeerID {
	for {
		id := protocol.PeerID(hex.EncodeToString(random.Bits(64, false, s.random)))
		if _, taken := s.clients[id]; !taken {
			return id
		}
	}
}

// enqueue must be called with s.mu held. A client that cannot keep up is
// disconnected rather than silently losing frames.
func (s *Server) enqueue(c *client, f Frame) {
	select {
	case c.out <- f:
	default:
		s.logger.Warn("outbox full, dropping client", "peer", c.id)
		c.conn.Close()
	}
}

func (s *Server) readLoop(c *client) {
	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "peer", c.id, "err", err)
			}
			return
		}
		if f.Type != FrameData {
			s.logger.Debug("unexpected frame", "peer", c.id, "type", f.Type)
			continue
		}
		s.forward(c.id, f.Peer, f.Data)
	}
}

func (s *Server) forward(from, to protocol.PeerID, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.clients[to]
	if !ok {
		s.logger.Debug("recipient unknown", "from", from, "to", to)
		return
	}
	s.enqueue(target, Frame{Type: FrameData, Peer: from, Data: data})
}

// writeLoop is the only writer of c.conn. It drains c.out until unregister
// closes it.
func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	broken := false
	for f := range c.out {
		if broken {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(f); err != nil {
			s.logger.Debug("write failed", "peer", c.id, "err", err)
			c.conn.Close()
			broken = true
		}
	}
	if !broken {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
