package consensus

import "github.com/luca-patrignani/tactical-duel/protocol"

// OnReadyStateChanged records the readiness reported by peer and, on the
// owner, commits once every participant is ready.
//
// Reports about peers that are not participants are ignored. The returned
// bool is true only on the call that commits.
func (n *Node) OnReadyStateChanged(peer protocol.PeerID, ready bool) (Decision, bool) {
	if !n.state.SetReady(peer, ready) {
		n.logger.Debug("readiness from unknown participant ignored", "peer", peer)
		return Decision{}, false
	}
	return n.Reevaluate()
}

// OnTimerExpired commits on the owner when the preparation deadline passes
// and no decision has been taken yet.
func (n *Node) OnTimerExpired() (Decision, bool) {
	if !n.IsOwner() || n.decided {
		return Decision{}, false
	}
	return n.commit(TimerExpired)
}

func (n *Node) commit(trigger Trigger) (Decision, bool) {
	n.decided = true
	r, total := n.state.Readiness()
	d := Decision{Owner: n.owner, Trigger: trigger, Ready: r, Total: total}
	n.network.Broadcast(protocol.CombatStart{})
	if n.ledger != nil {
		if err := n.ledger.Record(d); err != nil {
			n.logger.Warn("failed to record decision", "err", err)
		}
	}
	n.logger.Info("combat start committed", "reason", trigger, "ready", r, "total", total)
	return d, true
}

// Reevaluate checks the readiness flags again, typically after a participant
// left, and commits on the owner if everyone left is ready.
func (n *Node) Reevaluate() (Decision, bool) {
	if !n.IsOwner() || n.decided {
		return Decision{}, false
	}
	r, total := n.state.Readiness()
	if total == 0 || r < total {
		return Decision{}, false
	}
	return n.commit(AllReady)
}
