package combat

import (
	"fmt"
	"time"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/domain/reach"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/luca-patrignani/tactical-duel/timer"
)

// yourTurn holds everything that exists only during the local turn.
type yourTurn struct {
	countdown *timer.Countdown
	tiles     []reach.MovementTile
	hovered   *grid.TileCoordinate
}

func (y *yourTurn) hover(t grid.TileCoordinate) bool {
	for i := range y.tiles {
		if y.tiles[i].Tile == t {
			y.hovered = &y.tiles[i].Tile
			return true
		}
	}
	y.hovered = nil
	return false
}

func (y *yourTurn) cost(t grid.TileCoordinate) (uint8, bool) {
	for _, m := range y.tiles {
		if m.Tile == t {
			return m.Cost, true
		}
	}
	return 0, false
}

func (c *Controller) enterNextTurn() {
	c.action = NotInTurn
	if c.session.Len() <= 1 {
		c.logger.Info("no opponent left, ending the combat")
		c.transitionOrLog(End)
		return
	}
	if c.cfg.order == nil {
		c.logger.Debug("no turn order configured, waiting")
		return
	}
	id, ok := c.cfg.order.Next(c.session.IDs(), c.turn)
	if !ok {
		c.logger.Warn("turn order chose no participant", "turn", c.turn)
		return
	}
	c.turn++
	c.current = id
	if id == c.self {
		c.transitionOrLog(YourTurn)
	} else {
		c.transitionOrLog(OthersTurn)
	}
}

func (c *Controller) enterYourTurn() {
	me := c.me()
	if me == nil {
		c.logger.Error("local participant missing from its own turn")
		return
	}
	me.ActionPoints = me.Stats.ActionPoints
	me.MovementPoints = me.Stats.MovementPoints
	c.yours = &yourTurn{countdown: timer.New(c.cfg.turn, nil)}
	c.waitNextAction()
}

func (c *Controller) exitYourTurn() {
	c.yours = nil
	c.action = NotInTurn
}

func (c *Controller) updateYourTurn(delta time.Duration) {
	if c.yours.countdown.Tick(delta) {
		c.logger.Info("turn time is over")
		if err := c.EndTurn(); err != nil {
			c.logger.Error("failed to end turn", "err", err)
		}
	}
}

// waitNextAction recomputes what the local participant can do.
func (c *Controller) waitNextAction() {
	c.action = WaitingNextAction
	me := c.me()
	c.yours.hovered = nil
	if !me.Placed {
		c.yours.tiles = nil
		return
	}
	c.yours.tiles = reach.MovementTiles(c.session.Arena, me.Position, me.MovementPoints, func(t grid.TileCoordinate) bool {
		p, ok := c.session.OccupiedBy(t)
		return ok && p.ID != c.self
	})
}

func (c *Controller) selectMovement() error {
	if c.action != WaitingNextAction {
		return fmt.Errorf("%w: move during %v", ErrWrongPhase, c.action)
	}
	if c.yours.hovered == nil {
		return ErrNothingSelected
	}
	target := *c.yours.hovered
	cost, _ := c.yours.cost(target)
	c.action = Move
	me := c.me()
	me.MovementPoints -= cost
	c.moveTo(target)
	c.logger.Debug("moved", "to", target, "cost", cost, "left", me.MovementPoints)
	c.waitNextAction()
	return nil
}

// EndTurn gives the turn away.
func (c *Controller) EndTurn() error {
	if c.phase != YourTurn {
		return fmt.Errorf("%w: end turn in %v", ErrWrongPhase, c.phase)
	}
	c.action = EndTurn
	c.network.Broadcast(protocol.TurnEnded{})
	return c.Transition(NextTurn)
}

func (c *Controller) enterOthersTurn() {
	c.others = c.bus.Scope("others-turn")
	c.others.Handle(protocol.KindUpdatePlayerPosition, c.onPosition)
	c.others.Handle(protocol.KindTurnEnded, c.onTurnEnded)
}

func (c *Controller) exitOthersTurn() {
	if c.others != nil {
		c.others.Close()
		c.others = nil
	}
}

func (c *Controller) onTurnEnded(from protocol.PeerID, _ protocol.Message) {
	if from != c.current {
		c.logger.Debug("turn end from a peer not playing ignored", "from", from, "current", c.current)
		return
	}
	c.transitionOrLog(NextTurn)
}
