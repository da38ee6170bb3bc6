package consensus

import (
	"errors"
	"testing"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

type flags map[protocol.PeerID]bool

func (f flags) SetReady(peer protocol.PeerID, ready bool) bool {
	if _, ok := f[peer]; !ok {
		return false
	}
	f[peer] = ready
	return true
}

func (f flags) Readiness() (int, int) {
	n := 0
	for _, r := range f {
		if r {
			n++
		}
	}
	return n, len(f)
}

type recorder struct {
	sent      []protocol.Message
	decisions []Decision
	fail      bool
}

func (r *recorder) Broadcast(msg protocol.Message) { r.sent = append(r.sent, msg) }

func (r *recorder) Record(d Decision) error {
	if r.fail {
		return errors.New("disk full")
	}
	r.decisions = append(r.decisions, d)
	return nil
}

func TestOwnerCommitsWhenAllReady(t *testing.T) {
	state := flags{"a": false, "b": false}
	rec := &recorder{}
	node := NewNode("a", "a", state, rec, rec, nil)

	if _, ok := node.OnReadyStateChanged("a", true); ok {
		t.Fatal("committed with one participant not ready")
	}
	d, ok := node.OnReadyStateChanged("b", true)
	if !ok {
		t.Fatal("expected a decision")
	}
	if d.Trigger != AllReady || d.Ready != 2 || d.Total != 2 || d.Owner != "a" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if len(rec.sent) != 1 || rec.sent[0] != (protocol.CombatStart{}) {
		t.Fatalf("expected one CombatStart, got %v", rec.sent)
	}
	if len(rec.decisions) != 1 {
		t.Fatalf("expected one recorded decision, got %d", len(rec.decisions))
	}
}

func TestDecisionIsCommittedOnce(t *testing.T) {
	state := flags{"a": true, "b": false}
	rec := &recorder{}
	node := NewNode("a", "a", state, rec, rec, nil)

	if _, ok := node.OnReadyStateChanged("b", true); !ok {
		t.Fatal("expected a decision")
	}
	if _, ok := node.OnTimerExpired(); ok {
		t.Fatal("timer committed a second time")
	}
	node.OnReadyStateChanged("b", false)
	if _, ok := node.OnReadyStateChanged("b", true); ok {
		t.Fatal("readiness committed a second time")
	}
	if len(rec.sent) != 1 {
		t.Fatalf("expected a single broadcast, got %d", len(rec.sent))
	}
	if !node.Decided() {
		t.Fatal("node does not report the decision")
	}
}

func TestTimerCommitsWithoutReadiness(t *testing.T) {
	state := flags{"a": false, "b": false}
	rec := &recorder{}
	node := NewNode("a", "a", state, rec, rec, nil)
	d, ok := node.OnTimerExpired()
	if !ok || d.Trigger != TimerExpired || d.Ready != 0 {
		t.Fatalf("unexpected decision %+v %v", d, ok)
	}
}

func TestNonOwnerOnlyMirrorsFlags(t *testing.T) {
	state := flags{"a": false, "b": false}
	rec := &recorder{}
	node := NewNode("b", "a", state, rec, rec, nil)

	node.OnReadyStateChanged("a", true)
	if _, ok := node.OnReadyStateChanged("b", true); ok {
		t.Fatal("non-owner committed")
	}
	if _, ok := node.OnTimerExpired(); ok {
		t.Fatal("non-owner committed on timer")
	}
	if !state["a"] || !state["b"] {
		t.Fatal("flags not mirrored")
	}
	if len(rec.sent) != 0 {
		t.Fatalf("non-owner broadcast %v", rec.sent)
	}
}

func TestUnknownParticipantIsIgnored(t *testing.T) {
	state := flags{"a": true}
	rec := &recorder{}
	node := NewNode("a", "a", state, rec, rec, nil)
	if _, ok := node.OnReadyStateChanged("intruder", true); ok {
		t.Fatal("unknown participant triggered a decision")
	}
	if _, ok := state["intruder"]; ok {
		t.Fatal("unknown participant was added")
	}
}

func TestLedgerFailureDoesNotBlockDecision(t *testing.T) {
	state := flags{"a": false}
	rec := &recorder{fail: true}
	node := NewNode("a", "a", state, rec, rec, nil)
	if _, ok := node.OnReadyStateChanged("a", true); !ok {
		t.Fatal("expected a decision")
	}
	if len(rec.sent) != 1 {
		t.Fatal("start not broadcast")
	}
}
