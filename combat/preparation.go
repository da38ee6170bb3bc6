package combat

import (
	"fmt"
	"time"

	"github.com/luca-patrignani/tactical-duel/consensus"
	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/luca-patrignani/tactical-duel/timer"
)

// preparation holds everything that exists only while preparing.
type preparation struct {
	scope     *protocol.Scope
	countdown *timer.Countdown
	spots     []grid.TileCoordinate
	hovered   *grid.TileCoordinate
	readiness *consensus.Node
}

func (p *preparation) hover(t grid.TileCoordinate) bool {
	for i := range p.spots {
		if p.spots[i] == t {
			p.hovered = &p.spots[i]
			return true
		}
	}
	p.hovered = nil
	return false
}

func (c *Controller) enterPreparation() {
	var ledger consensus.Ledger
	if c.cfg.journal != nil {
		ledger = c.cfg.journal
	}
	p := &preparation{
		scope:     c.bus.Scope("preparation"),
		countdown: timer.New(c.cfg.preparation, nil),
		spots:     sampleTiles(c.session.Arena.GroundTiles(), c.cfg.spots, c.cfg.random),
		readiness: consensus.NewNode(c.self, c.session.Owner, c.session, ledger, c.network, c.logger),
	}
	c.prep = p
	p.scope.Handle(protocol.KindCombatPlayerJoined, c.onPlayerJoined)
	p.scope.Handle(protocol.KindUpdatePlayerPosition, c.onPosition)
	p.scope.Handle(protocol.KindCombatReadyStateChanged, c.onReadyStateChanged)
	p.scope.Handle(protocol.KindCombatStart, c.onCombatStart)

	if len(p.spots) == 0 {
		c.logger.Warn("arena has no ground tile to place on")
		return
	}
	c.moveTo(p.spots[0])
}

func (c *Controller) exitPreparation() {
	if c.prep == nil {
		return
	}
	c.prep.scope.Close()
	c.prep = nil
}

func (c *Controller) updatePreparation(delta time.Duration) {
	if !c.prep.countdown.Tick(delta) {
		return
	}
	c.logger.Debug("preparation countdown expired", "owner", c.IsOwner())
	if _, ok := c.prep.readiness.OnTimerExpired(); ok {
		c.transitionOrLog(NextTurn)
	}
}

// SetReady toggles the local readiness and reports it to every peer.
func (c *Controller) SetReady(ready bool) error {
	if c.prep == nil {
		return fmt.Errorf("%w: ready in %v", ErrWrongPhase, c.phase)
	}
	c.network.Broadcast(protocol.CombatReadyStateChanged{Ready: ready})
	if _, ok := c.prep.readiness.OnReadyStateChanged(c.self, ready); ok {
		c.transitionOrLog(NextTurn)
	}
	return nil
}

// Ready reports the local readiness.
func (c *Controller) Ready() bool {
	me := c.me()
	return me != nil && me.Ready
}

func (c *Controller) selectPlacement() error {
	if c.prep.hovered == nil {
		return ErrNothingSelected
	}
	c.moveTo(*c.prep.hovered)
	return nil
}

func (c *Controller) onPlayerJoined(from protocol.PeerID, msg protocol.Message) {
	m := msg.(protocol.CombatPlayerJoined)
	p := c.session.Join(from, statsFromWire(m.Stats))
	if !p.Placed {
		p.Position = grid.TileFromWorld(grid.Point{X: float64(m.Position.X), Y: float64(m.Position.Y), Z: float64(m.Position.Z)})
	}
	c.logger.Debug("participant joined", "participant", from, "name", p.Stats.Name)
}

func (c *Controller) onReadyStateChanged(from protocol.PeerID, msg protocol.Message) {
	m := msg.(protocol.CombatReadyStateChanged)
	if _, ok := c.prep.readiness.OnReadyStateChanged(from, m.Ready); ok {
		c.transitionOrLog(NextTurn)
	}
}

func (c *Controller) onCombatStart(from protocol.PeerID, _ protocol.Message) {
	if from != c.session.Owner {
		c.logger.Warn("combat start from a peer that does not own the combat ignored", "from", from, "owner", c.session.Owner)
		return
	}
	c.transitionOrLog(NextTurn)
}
