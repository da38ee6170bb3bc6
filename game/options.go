package game

import (
	"log/slog"

	"github.com/luca-patrignani/tactical-duel/combat"
	"github.com/luca-patrignani/tactical-duel/domain/grid"
)

type config struct {
	logger     *slog.Logger
	combatOpts []combat.Option
	arena      ArenaFunc
	spawn      grid.Point
}

type Option func(config) config

func WithLogger(l *slog.Logger) Option {
	return func(c config) config {
		c.logger = l
		return c
	}
}

// WithCombatOptions configures every combat the player takes part in.
func WithCombatOptions(opts ...combat.Option) Option {
	return func(c config) config {
		c.combatOpts = append(c.combatOpts, opts...)
		return c
	}
}

// WithArena sets the world combats are fought in. It defaults to OpenField.
func WithArena(a ArenaFunc) Option {
	return func(c config) config {
		c.arena = a
		return c
	}
}

// WithSpawn sets the initial world position of the player.
func WithSpawn(p grid.Point) Option {
	return func(c config) config {
		c.spawn = p
		return c
	}
}
