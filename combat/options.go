package combat

import (
	"crypto/cipher"
	"log/slog"
	"time"

	"github.com/luca-patrignani/tactical-duel/consensus"
	"go.dedis.ch/kyber/v4/util/random"
)

const (
	DefaultPreparationDuration = 90 * time.Second
	DefaultTurnDuration        = 30 * time.Second
	DefaultPlacementSpots      = 10
)

// Journal records what happens during a combat.
type Journal interface {
	consensus.Ledger
	RecordTransition(from, to string) error
}

type config struct {
	preparation time.Duration
	turn        time.Duration
	spots       int
	order       TurnOrder
	logger      *slog.Logger
	journal     Journal
	random      cipher.Stream
}

type Option func(config) config

func defaultConfig() config {
	return config{
		preparation: DefaultPreparationDuration,
		turn:        DefaultTurnDuration,
		spots:       DefaultPlacementSpots,
	}
}

func WithPreparationDuration(d time.Duration) Option {
	return func(c config) config {
		c.preparation = d
		return c
	}
}

func WithTurnDuration(d time.Duration) Option {
	return func(c config) config {
		c.turn = d
		return c
	}
}

// WithPlacementSpots sets how many candidate tiles preparation offers.
func WithPlacementSpots(n int) Option {
	return func(c config) config {
		c.spots = n
		return c
	}
}

// WithTurnOrder installs the policy used when entering NextTurn. Without one
// the controller stays in NextTurn.
func WithTurnOrder(o TurnOrder) Option {
	return func(c config) config {
		c.order = o
		return c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c config) config {
		c.logger = l
		return c
	}
}

func WithJournal(j Journal) Option {
	return func(c config) config {
		c.journal = j
		return c
	}
}

// WithRandom sets the stream placement spots are drawn from. It defaults to
// a stream seeded from crypto/rand.
func WithRandom(s cipher.Stream) Option {
	return func(c config) config {
		c.random = s
		return c
	}
}

func (c config) finish() config {
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.random == nil {
		c.random = random.New()
	}
	return c
}
