package combat

import (
	"errors"
	"testing"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/ledger"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

// startRotation brings a and b to their first turn, a standing on (0,0) and
// b on (4,1) of the small arena.
func startRotation(t *testing.T) (*mesh, *peer, *peer) {
	t.Helper()
	m := newMesh(t)
	a := m.join("a", WithTurnOrder(SortedRotation))
	b := m.join("b", WithTurnOrder(SortedRotation))
	duel(t, m, a, b, smallArena(t))
	if err := a.Pick(grid.TileCoordinate{X: 0, Z: 0}); err != nil {
		t.Fatal(err)
	}
	if err := b.Pick(grid.TileCoordinate{X: 4, Z: 1}); err != nil {
		t.Fatal(err)
	}
	a.SetReady(true)
	b.SetReady(true)
	m.flush()
	return m, a, b
}

func tileSet(tiles []grid.TileCoordinate) map[grid.TileCoordinate]bool {
	out := map[grid.TileCoordinate]bool{}
	for _, t := range tiles {
		out[t] = true
	}
	return out
}

func TestRotationGivesFirstTurnToLowestID(t *testing.T) {
	_, a, b := startRotation(t)
	if a.Phase() != YourTurn || b.Phase() != OthersTurn {
		t.Fatalf("phases %v %v", a.Phase(), b.Phase())
	}
	if a.CurrentTurn() != "a" || b.CurrentTurn() != "a" {
		t.Fatalf("current turn %q %q", a.CurrentTurn(), b.CurrentTurn())
	}
	if a.TurnAction() != WaitingNextAction || b.TurnAction() != NotInTurn {
		t.Fatalf("turn actions %v %v", a.TurnAction(), b.TurnAction())
	}
	if !a.EndTurnControl() || b.EndTurnControl() {
		t.Fatal("end turn control offered to the wrong peer")
	}
	if a.Timer() == nil || a.Timer().Duration() != DefaultTurnDuration {
		t.Fatal("turn countdown missing")
	}
}

func TestMoveSpendsMovementPoints(t *testing.T) {
	m, a, b := startRotation(t)

	got := map[grid.TileCoordinate]uint8{}
	for _, mt := range a.MovementTiles() {
		got[mt.Tile] = mt.Cost
	}
	want := map[grid.TileCoordinate]uint8{
		{1, 0}: 1, {0, 1}: 1,
		{2, 0}: 2, {1, 1}: 2,
		{3, 0}: 3, {2, 1}: 3,
	}
	if len(got) != len(want) {
		t.Fatalf("movement tiles %v", got)
	}
	for tile, cost := range want {
		if got[tile] != cost {
			t.Fatalf("%v costs %d, want %d", tile, got[tile], cost)
		}
	}

	if err := a.Pick(grid.TileCoordinate{X: 2, Z: 1}); err != nil {
		t.Fatal(err)
	}
	me, _ := a.Session().Participant("a")
	if me.MovementPoints != 0 || me.Position != (grid.TileCoordinate{X: 2, Z: 1}) {
		t.Fatalf("after move: %+v", me)
	}
	if a.TurnAction() != WaitingNextAction {
		t.Fatalf("turn action %v", a.TurnAction())
	}
	if len(a.MovementTiles()) != 0 {
		t.Fatalf("tiles offered without movement points: %v", a.MovementTiles())
	}
	if err := a.Pick(grid.TileCoordinate{X: 3, Z: 1}); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	m.flush()
	if p, _ := b.Session().Participant("a"); p.Position != (grid.TileCoordinate{X: 2, Z: 1}) {
		t.Fatalf("b sees a on %v", p.Position)
	}
}

func TestEndTurnPassesTheTurn(t *testing.T) {
	m, a, b := startRotation(t)
	a.Pick(grid.TileCoordinate{X: 2, Z: 1})
	if err := a.EndTurn(); err != nil {
		t.Fatal(err)
	}
	if a.Phase() != OthersTurn || a.CurrentTurn() != "b" {
		t.Fatalf("a in %v, current %q", a.Phase(), a.CurrentTurn())
	}
	if a.Timer() != nil || a.MovementTiles() != nil {
		t.Fatal("turn state survived the end of the turn")
	}
	m.flush()
	if b.Phase() != YourTurn {
		t.Fatalf("b in %v", b.Phase())
	}
	me, _ := b.Session().Participant("b")
	if me.MovementPoints != 3 || me.ActionPoints != 6 {
		t.Fatalf("points not reset: %+v", me)
	}
	var tiles []grid.TileCoordinate
	for _, mt := range b.MovementTiles() {
		tiles = append(tiles, mt.Tile)
	}
	set := tileSet(tiles)
	if set[grid.TileCoordinate{X: 2, Z: 1}] {
		t.Fatal("tile occupied by a offered to b")
	}
	for _, want := range []grid.TileCoordinate{{3, 1}, {4, 0}, {3, 0}, {2, 0}} {
		if !set[want] {
			t.Fatalf("%v missing from %v", want, tiles)
		}
	}
	if len(set) != 4 {
		t.Fatalf("unexpected tiles %v", tiles)
	}
}

func TestTurnTimeoutEndsTurn(t *testing.T) {
	m, a, b := startRotation(t)
	a.EndTurn()
	m.flush()

	b.Update(DefaultTurnDuration)
	if b.Phase() != OthersTurn {
		t.Fatalf("b in %v", b.Phase())
	}
	if n := b.net.count(protocol.KindTurnEnded); n != 1 {
		t.Fatalf("TurnEnded broadcast %d times", n)
	}
	m.flush()
	if a.Phase() != YourTurn {
		t.Fatalf("a in %v", a.Phase())
	}
	if me, _ := a.Session().Participant("a"); me.MovementPoints != 3 {
		t.Fatalf("points not reset: %+v", me)
	}
}

func TestTurnEndedFromIdlePeerIgnored(t *testing.T) {
	_, _, b := startRotation(t)
	b.bus.Dispatch("b", protocol.TurnEnded{})
	b.bus.Dispatch("mallory", protocol.TurnEnded{})
	if b.Phase() != OthersTurn {
		t.Fatalf("b in %v", b.Phase())
	}
}

func TestEndTurnOutsideTurn(t *testing.T) {
	_, _, b := startRotation(t)
	if err := b.EndTurn(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestFinishLeavesCombat(t *testing.T) {
	_, a, b := startRotation(t)
	if err := a.Finish(); err != nil {
		t.Fatal(err)
	}
	if a.Phase() != NotInCombat || a.Session() != nil || a.Timer() != nil {
		t.Fatalf("a still in combat: %v", a.Phase())
	}
	if a.Camera() != (grid.Point{}) {
		t.Fatalf("camera not reset: %v", a.Camera())
	}

	b.ParticipantLeft("a")
	if b.Phase() != NotInCombat {
		t.Fatalf("b in %v after its only opponent left", b.Phase())
	}

	var path []string
	for _, blk := range a.journal.Blocks() {
		if blk.Event.Kind == ledger.EventTransition {
			path = append(path, blk.Event.To)
		}
	}
	want := []string{"Preparation", "NextTurn", "YourTurn", "End", "NotInCombat"}
	if len(path) != len(want) {
		t.Fatalf("journal path %v", path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("journal path %v", path)
		}
	}
}

func TestNoTurnOrderWaitsInNextTurn(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())
	a.SetReady(true)
	b.SetReady(true)
	m.flush()
	if a.Phase() != NextTurn || b.Phase() != NextTurn {
		t.Fatalf("phases %v %v", a.Phase(), b.Phase())
	}
	if err := a.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestLoneFighterLeavesCombat(t *testing.T) {
	cases := []struct {
		name string
		// leave removes b from a's combat and lets a decide.
		leave func(a *peer)
	}{
		{"owner ready", func(a *peer) {
			a.SetReady(true)
			a.ParticipantLeft("b")
		}},
		{"deadline", func(a *peer) {
			a.ParticipantLeft("b")
			a.Update(DefaultPreparationDuration)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMesh(t)
			a := m.join("a", WithTurnOrder(SortedRotation))
			b := m.join("b", WithTurnOrder(SortedRotation))
			duel(t, m, a, b, openArena())

			tc.leave(a)
			if a.Phase() != NotInCombat || a.Session() != nil {
				t.Fatalf("a in %v without opponents", a.Phase())
			}
			for _, blk := range a.journal.Blocks() {
				if blk.Event.Kind == ledger.EventTransition && blk.Event.To == YourTurn.String() {
					t.Fatal("a lone fighter was given a turn")
				}
			}
		})
	}
}
