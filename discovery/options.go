package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

type Discover struct {
	Entries   chan Entry
	self      Entry
	port      uint16
	startPort uint16
	endPort   uint16
	host      string
	server    *http.Server
	client    *http.Client
	attempts  uint
	interval  time.Duration
	seen      map[protocol.PeerID]bool
	logger    *slog.Logger
	done      chan struct{}
}

type option func(Discover) Discover

func NewWithOptions(self Entry, opts ...option) (*Discover, error) {
	d := Discover{
		Entries:   make(chan Entry),
		self:      self,
		startPort: 9000,
		endPort:   9010,
		host:      "localhost",
		client:    &http.Client{Timeout: time.Second},
		attempts:  1,
		interval:  time.Second,
		seen:      map[protocol.PeerID]bool{},
		logger:    slog.Default(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		d = opt(d)
	}
	if d.startPort > d.endPort {
		return nil, fmt.Errorf("empty port range %d-%d", d.startPort, d.endPort)
	}

	var l net.Listener
	err := errors.New("no port available")
	for port := int(d.startPort); port <= int(d.endPort); port++ {
		l, err = net.Listen("tcp", fmt.Sprintf("%s:%d", d.host, port))
		if err == nil {
			d.port = uint16(port)
			break
		}
	}
	if err != nil {
		return nil, err
	}
	d.server = &http.Server{Handler: handler{self: self}}
	go func() {
		if err := d.server.Serve(l); err != nil && err != http.ErrServerClosed {
			d.logger.Error("discovery server stopped", "err", err)
		}
	}()
	dp := &d
	go func() {
		for a := uint(0); a < dp.attempts; a++ {
			dp.search()
			select {
			case <-dp.done:
				return
			case <-time.After(dp.interval):
			}
		}
	}()
	return dp, nil
}

func WithPortRange(startPort, endPort uint16) option {
	return func(d Discover) Discover {
		d.startPort = startPort
		d.endPort = endPort
		return d
	}
}

func WithPort(port uint16) option {
	return WithPortRange(port, port)
}

func WithAttempts(attempts uint) option {
	return func(d Discover) Discover {
		d.attempts = attempts
		return d
	}
}

// WithInterval sets the pause between two searches.
func WithInterval(interval time.Duration) option {
	return func(d Discover) Discover {
		d.interval = interval
		return d
	}
}

// WithHost sets the host both announced on and probed.
func WithHost(host string) option {
	return func(d Discover) Discover {
		d.host = host
		return d
	}
}

func WithLogger(l *slog.Logger) option {
	return func(d Discover) Discover {
		d.logger = l
		return d
	}
}
