package combat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/domain/reach"
	"github.com/luca-patrignani/tactical-duel/protocol"
	"github.com/luca-patrignani/tactical-duel/timer"
)

// Network is the best-effort outbound side of the transport.
type Network interface {
	Broadcast(msg protocol.Message)
	Send(msg protocol.Message, to protocol.PeerID)
}

// Engagement describes a combat that is about to start.
type Engagement struct {
	// Owner is the peer that initiated the duel.
	Owner     protocol.PeerID
	Opponents []protocol.PeerID
	// Arena is the chunk the combat takes place in.
	Arena *grid.Chunk
	// Position is the world position of the local player when the duel
	// was agreed.
	Position grid.Point
}

// Controller is the combat state machine of the local peer.
type Controller struct {
	self    protocol.PeerID
	stats   Stats
	bus     *protocol.Bus
	network Network
	cfg     config
	logger  *slog.Logger

	phase   Phase
	action  TurnAction
	session *Session
	camera  grid.Point
	turn    int
	current protocol.PeerID

	prep   *preparation
	yours  *yourTurn
	others *protocol.Scope
}

// NewController creates the controller of peer self. Handlers are registered
// on bus only while the phase that needs them is active.
func NewController(self protocol.PeerID, stats Stats, bus *protocol.Bus, network Network, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	cfg = cfg.finish()
	return &Controller{
		self:    self,
		stats:   stats,
		bus:     bus,
		network: network,
		cfg:     cfg,
		logger:  cfg.logger.With("peer", self),
	}
}

// Enter starts a combat and moves to Preparation. The local stats are
// broadcast so that peers can create their view of this participant.
func (c *Controller) Enter(e Engagement) error {
	if c.phase != NotInCombat {
		return fmt.Errorf("%w: already in %v", ErrIllegalTransition, c.phase)
	}
	if e.Arena == nil {
		return fmt.Errorf("enter combat: no arena")
	}
	c.session = newSession(e.Owner, e.Arena)
	me := c.session.Join(c.self, c.stats)
	me.Position = grid.TileFromWorld(e.Position)
	for _, id := range e.Opponents {
		if id != c.self {
			c.session.Join(id, Stats{})
		}
	}
	c.camera = e.Arena.Coordinate.Center()
	c.turn = 0
	c.current = ""

	c.network.Broadcast(protocol.CombatPlayerJoined{
		Stats:    c.stats.wire(),
		Position: wirePosition(e.Position),
	})
	return c.Transition(Preparation)
}

// Transition moves to phase to, running the exit hook of the current phase
// and the enter hook of the new one.
func (c *Controller) Transition(to Phase) error {
	from := c.phase
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %v -> %v", ErrIllegalTransition, from, to)
	}
	if c.session == nil && to != NotInCombat {
		return ErrNotInCombat
	}
	c.exit(from)
	c.phase = to
	c.logger.Info("phase changed", "from", from, "to", to)
	if c.cfg.journal != nil {
		if err := c.cfg.journal.RecordTransition(from.String(), to.String()); err != nil {
			c.logger.Warn("failed to journal transition", "err", err)
		}
	}
	c.enter(to)
	return nil
}

func (c *Controller) enter(p Phase) {
	switch p {
	case NotInCombat:
		c.session = nil
		c.camera = grid.Point{}
		c.current = ""
		c.action = NotInTurn
	case Preparation:
		c.enterPreparation()
	case NextTurn:
		c.enterNextTurn()
	case YourTurn:
		c.enterYourTurn()
	case OthersTurn:
		c.enterOthersTurn()
	case End:
		if err := c.Transition(NotInCombat); err != nil {
			c.logger.Error("failed to leave combat", "err", err)
		}
	}
}

func (c *Controller) exit(p Phase) {
	switch p {
	case Preparation:
		c.exitPreparation()
	case YourTurn:
		c.exitYourTurn()
	case OthersTurn:
		c.exitOthersTurn()
	}
}

// Update advances the phase timers by the frame delta.
func (c *Controller) Update(delta time.Duration) {
	switch c.phase {
	case Preparation:
		c.updatePreparation(delta)
	case YourTurn:
		c.updateYourTurn(delta)
	}
}

// Finish ends the combat from any turn phase.
func (c *Controller) Finish() error {
	return c.Transition(End)
}

// ParticipantLeft removes a disconnected peer from the combat.
func (c *Controller) ParticipantLeft(id protocol.PeerID) {
	if c.session == nil || !c.session.Leave(id) {
		return
	}
	c.logger.Info("participant left", "participant", id, "phase", c.phase)
	switch c.phase {
	case Preparation:
		if id == c.session.Owner {
			c.logger.Warn("combat owner left during preparation", "owner", id)
			return
		}
		if _, ok := c.prep.readiness.Reevaluate(); ok {
			c.transitionOrLog(NextTurn)
		}
	case NextTurn, YourTurn, OthersTurn:
		if c.session.Len() <= 1 {
			if err := c.Finish(); err != nil {
				c.logger.Error("failed to end combat", "err", err)
			}
			return
		}
		if c.phase == OthersTurn && id == c.current {
			c.transitionOrLog(NextTurn)
		}
	}
}

// Hover highlights t when it can be selected in the current phase and
// reports whether it was highlighted.
func (c *Controller) Hover(t grid.TileCoordinate) bool {
	switch {
	case c.prep != nil:
		return c.prep.hover(t)
	case c.yours != nil:
		return c.yours.hover(t)
	}
	return false
}

// PointerAt highlights the tile under the world position p.
func (c *Controller) PointerAt(p grid.Point) bool {
	return c.Hover(grid.TileFromWorld(p))
}

// Unhover clears the highlight.
func (c *Controller) Unhover() {
	switch {
	case c.prep != nil:
		c.prep.hovered = nil
	case c.yours != nil:
		c.yours.hovered = nil
	}
}

// Select acts on the highlighted tile: during preparation it places the
// local participant there, during the local turn it moves there.
func (c *Controller) Select() error {
	switch {
	case c.prep != nil:
		return c.selectPlacement()
	case c.yours != nil:
		return c.selectMovement()
	}
	return fmt.Errorf("%w: %v", ErrWrongPhase, c.phase)
}

// Pick hovers t and selects it.
func (c *Controller) Pick(t grid.TileCoordinate) error {
	if !c.Hover(t) {
		return fmt.Errorf("%w: %v cannot be selected in %v", ErrNothingSelected, t, c.phase)
	}
	return c.Select()
}

func (c *Controller) Phase() Phase           { return c.phase }
func (c *Controller) TurnAction() TurnAction { return c.action }
func (c *Controller) Self() protocol.PeerID  { return c.self }

// Session returns the current combat, nil outside of combat.
func (c *Controller) Session() *Session { return c.session }

// Camera is the point the combat camera looks at.
func (c *Controller) Camera() grid.Point { return c.camera }

// CurrentTurn is the participant playing the current turn, if decided.
func (c *Controller) CurrentTurn() protocol.PeerID { return c.current }

// IsOwner reports whether the local peer owns the combat.
func (c *Controller) IsOwner() bool {
	return c.session != nil && c.session.Owner == c.self
}

// Timer returns the countdown of the current phase, nil if it has none.
func (c *Controller) Timer() *timer.Countdown {
	switch {
	case c.prep != nil:
		return c.prep.countdown
	case c.yours != nil:
		return c.yours.countdown
	}
	return nil
}

// Hovered returns the highlighted tile.
func (c *Controller) Hovered() (grid.TileCoordinate, bool) {
	var h *grid.TileCoordinate
	switch {
	case c.prep != nil:
		h = c.prep.hovered
	case c.yours != nil:
		h = c.yours.hovered
	}
	if h == nil {
		return grid.TileCoordinate{}, false
	}
	return *h, true
}

// PlacementSpots are the tiles offered during preparation.
func (c *Controller) PlacementSpots() []grid.TileCoordinate {
	if c.prep == nil {
		return nil
	}
	return append([]grid.TileCoordinate(nil), c.prep.spots...)
}

// MovementTiles are the destinations offered during the local turn.
func (c *Controller) MovementTiles() []reach.MovementTile {
	if c.yours == nil {
		return nil
	}
	return append([]reach.MovementTile(nil), c.yours.tiles...)
}

// ReadyControl reports whether the ready toggle is offered.
func (c *Controller) ReadyControl() bool { return c.prep != nil }

// EndTurnControl reports whether the end-turn button is offered.
func (c *Controller) EndTurnControl() bool { return c.yours != nil }

func (c *Controller) transitionOrLog(to Phase) {
	if err := c.Transition(to); err != nil {
		c.logger.Error("transition failed", "to", to, "err", err)
	}
}

func (c *Controller) me() *Participant {
	if c.session == nil {
		return nil
	}
	p, _ := c.session.Participant(c.self)
	return p
}

// moveTo relocates the local participant and tells the peers.
func (c *Controller) moveTo(t grid.TileCoordinate) {
	me := c.me()
	if me == nil {
		return
	}
	me.Position = t
	me.Placed = true
	w := t.World()
	c.network.Broadcast(protocol.UpdatePlayerPosition{X: float32(w.X), Z: float32(w.Z)})
}

func (c *Controller) onPosition(from protocol.PeerID, msg protocol.Message) {
	m := msg.(protocol.UpdatePlayerPosition)
	p, ok := c.session.Participant(from)
	if !ok {
		c.logger.Debug("position of unknown participant ignored", "participant", from)
		return
	}
	p.Position = grid.TileFromWorld(grid.Point{X: float64(m.X), Z: float64(m.Z)})
	p.Placed = c.session.Arena.Contains(p.Position)
}

func wirePosition(p grid.Point) protocol.Position {
	return protocol.Position{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}
