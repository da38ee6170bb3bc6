package relay

import (
	"crypto/cipher"
	"log/slog"
)

type ServerOption func(*Server)

func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRandom sets the stream client identifiers are drawn from.
func WithRandom(r cipher.Stream) ServerOption {
	return func(s *Server) {
		s.random = r
	}
}

// WithOutboxSize sets how many frames can wait for one client before it is
// disconnected.
func WithOutboxSize(n int) ServerOption {
	return func(s *Server) {
		s.outbox = n
	}
}
