package combat

import (
	"errors"
	"testing"
	"time"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"github.com/luca-patrignani/tactical-duel/ledger"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

func TestEnterPreparation(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	arena := openArena()
	duel(t, m, a, b, arena)

	if a.Phase() != Preparation || b.Phase() != Preparation {
		t.Fatalf("phases %v %v", a.Phase(), b.Phase())
	}
	if !a.IsOwner() || b.IsOwner() {
		t.Fatal("the duel initiator must own the combat")
	}
	spots := a.PlacementSpots()
	if len(spots) != DefaultPlacementSpots {
		t.Fatalf("expected %d spots, got %d", DefaultPlacementSpots, len(spots))
	}
	seen := map[grid.TileCoordinate]bool{}
	for _, s := range spots {
		if seen[s] {
			t.Fatalf("spot %v offered twice", s)
		}
		seen[s] = true
		if tile, ok := arena.At(s); !ok || tile != grid.Ground {
			t.Fatalf("spot %v is not a ground tile of the arena", s)
		}
	}
	me, _ := a.Session().Participant("a")
	if !me.Placed || me.Position != spots[0] {
		t.Fatalf("expected placement on %v, got %+v", spots[0], me)
	}
	if len(a.net.sent) < 2 {
		t.Fatalf("expected join and position broadcasts, got %v", a.net.sent)
	}
	if _, ok := a.net.sent[0].(protocol.CombatPlayerJoined); !ok {
		t.Fatalf("first broadcast is %v", a.net.sent[0].Kind())
	}
	w := spots[0].World()
	if pos, ok := a.net.sent[1].(protocol.UpdatePlayerPosition); !ok || pos.X != float32(w.X) || pos.Z != float32(w.Z) {
		t.Fatalf("second broadcast is %#v", a.net.sent[1])
	}
	if a.Camera() != (grid.Point{X: 14, Z: 20}) {
		t.Fatalf("camera at %v", a.Camera())
	}
	if a.Timer() == nil || a.Timer().Duration() != DefaultPreparationDuration {
		t.Fatal("preparation countdown missing")
	}
	if !a.ReadyControl() {
		t.Fatal("ready control not offered")
	}

	remote, ok := b.Session().Participant("a")
	if !ok || !remote.Placed || remote.Position != spots[0] {
		t.Fatalf("b does not see a on its spot: %+v", remote)
	}
	if remote.Stats.Name != "a" || remote.Stats.MovementPoints != 3 || remote.Stats.MaxHealth != 50 {
		t.Fatalf("b has wrong stats for a: %+v", remote.Stats)
	}
}

func TestAllReadyStartsCombat(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	if err := a.SetReady(true); err != nil {
		t.Fatal(err)
	}
	m.flush()
	if a.Phase() != Preparation {
		t.Fatal("owner started with an opponent not ready")
	}
	if p, _ := b.Session().Participant("a"); !p.Ready {
		t.Fatal("b did not mirror a's readiness")
	}

	if err := b.SetReady(true); err != nil {
		t.Fatal(err)
	}
	if b.Phase() != Preparation {
		t.Fatal("non-owner left preparation on its own")
	}
	m.flush()

	if a.Phase() != NextTurn || b.Phase() != NextTurn {
		t.Fatalf("phases %v %v", a.Phase(), b.Phase())
	}
	if n := a.net.count(protocol.KindCombatStart); n != 1 {
		t.Fatalf("owner broadcast CombatStart %d times", n)
	}
	if n := b.net.count(protocol.KindCombatStart); n != 0 {
		t.Fatalf("non-owner broadcast CombatStart %d times", n)
	}
	assertDecisions(t, a.journal, 1)
	assertDecisions(t, b.journal, 0)
}

func TestReadinessCanBeWithdrawn(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	b.SetReady(true)
	b.SetReady(false)
	m.flush()
	a.SetReady(true)
	m.flush()
	if a.Phase() != Preparation {
		t.Fatal("combat started although b withdrew")
	}
}

func TestTimerStartsCombat(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	b.Update(DefaultPreparationDuration)
	m.flush()
	if b.Phase() != Preparation || a.Phase() != Preparation {
		t.Fatal("non-owner timer must not start the combat")
	}

	a.Update(DefaultPreparationDuration - time.Second)
	if a.Phase() != Preparation {
		t.Fatal("started before the deadline")
	}
	a.Update(time.Second)
	m.flush()
	if a.Phase() != NextTurn || b.Phase() != NextTurn {
		t.Fatalf("phases %v %v", a.Phase(), b.Phase())
	}
	if n := a.net.count(protocol.KindCombatStart); n != 1 {
		t.Fatalf("CombatStart broadcast %d times", n)
	}
}

func TestReadinessAndTimerDecideOnce(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	a.SetReady(true)
	b.SetReady(true)
	// The deadline passes before b's readiness is delivered.
	a.Update(DefaultPreparationDuration)
	m.flush()
	a.Update(time.Second)
	m.flush()

	if n := a.net.count(protocol.KindCombatStart); n != 1 {
		t.Fatalf("CombatStart broadcast %d times", n)
	}
	if b.Phase() != NextTurn {
		t.Fatalf("b in %v", b.Phase())
	}
	assertDecisions(t, a.journal, 1)
}

func TestPreparationTeardown(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())
	a.Hover(a.PlacementSpots()[1])

	a.Update(DefaultPreparationDuration)
	m.flush()

	for _, p := range []*peer{a, b} {
		if p.Timer() != nil || p.PlacementSpots() != nil || p.ReadyControl() {
			t.Fatalf("%s kept preparation state", p.Self())
		}
		if _, ok := p.Hovered(); ok {
			t.Fatalf("%s kept a highlight", p.Self())
		}
		if err := p.SetReady(true); !errors.Is(err, ErrWrongPhase) {
			t.Fatalf("%s: expected ErrWrongPhase, got %v", p.Self(), err)
		}
		for _, kind := range []protocol.Kind{protocol.KindCombatReadyStateChanged, protocol.KindCombatStart, protocol.KindCombatPlayerJoined} {
			if n := p.bus.Dispatch("a", mustZero(t, kind)); n != 0 {
				t.Fatalf("%s still handles %v", p.Self(), kind)
			}
		}
	}
}

func mustZero(t *testing.T, kind protocol.Kind) protocol.Message {
	for _, m := range protocol.Catalogue() {
		if m.Kind() == kind {
			return m
		}
	}
	t.Fatalf("no message of kind %v", kind)
	return nil
}

func TestCombatStartFromNonOwnerIgnored(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	b.bus.Dispatch("mallory", protocol.CombatStart{})
	if b.Phase() != Preparation {
		t.Fatal("CombatStart from a stranger was accepted")
	}
}

func TestReadinessFromStrangerIgnored(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	a.SetReady(true)
	b.SetReady(true)
	a.bus.Dispatch("mallory", protocol.CombatReadyStateChanged{Ready: false})
	m.flush()
	if a.Phase() != NextTurn {
		t.Fatalf("owner in %v", a.Phase())
	}
	if _, ok := a.Session().Participant("mallory"); ok {
		t.Fatal("stranger became a participant")
	}
}

func TestPickPlacementSpot(t *testing.T) {
	m := newMesh(t)
	a, b := m.join("a"), m.join("b")
	duel(t, m, a, b, openArena())

	spots := a.PlacementSpots()
	if !a.Hover(spots[3]) {
		t.Fatal("spot not highlighted")
	}
	if h, ok := a.Hovered(); !ok || h != spots[3] {
		t.Fatalf("hovered %v %v", h, ok)
	}
	if err := a.Select(); err != nil {
		t.Fatal(err)
	}
	m.flush()
	if p, _ := b.Session().Participant("a"); p.Position != spots[3] {
		t.Fatalf("b sees a on %v", p.Position)
	}

	notSpot := grid.TileCoordinate{X: -5, Z: -5}
	if a.Hover(notSpot) {
		t.Fatal("tile outside the spots highlighted")
	}
	if err := a.Select(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	if err := a.Pick(spots[5]); err != nil {
		t.Fatal(err)
	}
	if me, _ := a.Session().Participant("a"); me.Position != spots[5] {
		t.Fatalf("a on %v", me.Position)
	}
	if !a.PointerAt(spots[2].World()) {
		t.Fatal("pointer over a spot did not highlight it")
	}
}

func TestSampleTiles(t *testing.T) {
	stream := defaultConfig().finish().random
	few := []grid.TileCoordinate{{0, 0}, {1, 0}, {2, 0}}
	got := sampleTiles(few, 10, stream)
	if len(got) != 3 {
		t.Fatalf("expected every candidate, got %v", got)
	}
	many := openArena().GroundTiles()
	got = sampleTiles(many, 10, stream)
	seen := map[grid.TileCoordinate]bool{}
	for _, tile := range got {
		if seen[tile] {
			t.Fatalf("%v drawn twice", tile)
		}
		seen[tile] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 tiles, got %d", len(seen))
	}
	if got := sampleTiles(nil, 10, stream); len(got) != 0 {
		t.Fatalf("drew %v from nothing", got)
	}
}

func TestSampleTilesIsUniform(t *testing.T) {
	stream := defaultConfig().finish().random
	const draws = 4000
	candidates := []grid.TileCoordinate{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	first := map[grid.TileCoordinate]int{}
	for i := 0; i < draws; i++ {
		got := sampleTiles(append([]grid.TileCoordinate(nil), candidates...), 1, stream)
		first[got[0]]++
	}
	for _, c := range candidates {
		if n := first[c]; n < draws/4-200 || n > draws/4+200 {
			t.Fatalf("%v drawn first %d times out of %d: %v", c, n, draws, first)
		}
	}

	pair := map[grid.TileCoordinate]int{}
	for i := 0; i < 200; i++ {
		got := sampleTiles([]grid.TileCoordinate{{0, 0}, {1, 0}}, 1, stream)
		pair[got[0]]++
	}
	if len(pair) != 2 {
		t.Fatalf("only %v ever drawn out of two tiles", pair)
	}
}

func TestRandomIndexCoversRange(t *testing.T) {
	stream := defaultConfig().finish().random
	if i := randomIndex(1, stream); i != 0 {
		t.Fatalf("index %d out of [0, 1)", i)
	}
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		j := randomIndex(5, stream)
		if j < 0 || j >= 5 {
			t.Fatalf("index %d out of [0, 5)", j)
		}
		seen[j] = true
	}
	if len(seen) != 5 {
		t.Fatalf("indexes drawn %v", seen)
	}
}

func TestPreparationOnSmallArenas(t *testing.T) {
	few, err := grid.ParseChunk(grid.ChunkCoordinate{}, []string{"..#", "#.."})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name  string
		arena *grid.Chunk
		spots int
	}{
		{"exactly ten ground tiles", smallArena(t), 10},
		{"four ground tiles", few, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMesh(t)
			a, b := m.join("a"), m.join("b")
			duel(t, m, a, b, tc.arena)
			if a.Phase() != Preparation || b.Phase() != Preparation {
				t.Fatalf("phases %v %v", a.Phase(), b.Phase())
			}
			if n := len(a.PlacementSpots()); n != tc.spots {
				t.Fatalf("expected %d spots, got %d", tc.spots, n)
			}
		})
	}
}

func assertDecisions(t *testing.T, j *ledger.Journal, want int) {
	t.Helper()
	n := 0
	for _, b := range j.Blocks() {
		if b.Event.Kind == ledger.EventDecision {
			n++
		}
	}
	if n != want {
		t.Fatalf("expected %d decisions in the journal, got %d", want, n)
	}
	if err := j.Verify(); err != nil {
		t.Fatal(err)
	}
}
