package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/luca-patrignani/tactical-duel/consensus"
	"github.com/luca-patrignani/tactical-duel/protocol"
)

// ErrEmpty is returned when the journal has no blocks.
var ErrEmpty = errors.New("journal is empty")

// Journal is a hash-chained, append-only event log. It is safe for concurrent
// use so that the client can render it while the game appends.
type Journal struct {
	mu     sync.RWMutex
	blocks []Block
	owner  protocol.PeerID
	now    func() time.Time
}

// NewJournal creates a journal for the local peer, starting with a genesis
// block whose previous hash is "0".
func NewJournal(owner protocol.PeerID) *Journal {
	j := &Journal{owner: owner, now: time.Now}
	genesis := Block{
		Index:     0,
		Timestamp: j.now().Unix(),
		PrevHash:  "0",
		Event:     Event{Kind: EventGenesis, Actor: owner},
	}
	genesis.Hash = calculateHash(genesis)
	j.blocks = append(j.blocks, genesis)
	return j
}

// Append adds an event at the end of the chain.
func (j *Journal) Append(e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.blocks) == 0 {
		return ErrEmpty
	}
	latest := j.blocks[len(j.blocks)-1]
	b := Block{
		Index:     latest.Index + 1,
		Timestamp: j.now().Unix(),
		PrevHash:  latest.Hash,
		Event:     e,
	}
	b.Hash = calculateHash(b)
	if err := validateBlock(b, latest); err != nil {
		return fmt.Errorf("invalid block: %w", err)
	}
	j.blocks = append(j.blocks, b)
	return nil
}

// RecordTransition appends a phase transition of the local peer.
func (j *Journal) RecordTransition(from, to string) error {
	return j.Append(Event{Kind: EventTransition, Actor: j.owner, From: from, To: to})
}

// Record appends a readiness consensus decision.
func (j *Journal) Record(d consensus.Decision) error {
	return j.Append(Event{
		Kind:   EventDecision,
		Actor:  d.Owner,
		Reason: d.Trigger.String(),
		Extra: map[string]string{
			"ready": strconv.Itoa(d.Ready),
			"total": strconv.Itoa(d.Total),
		},
	})
}

// Latest returns the most recent block.
func (j *Journal) Latest() (Block, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.blocks) == 0 {
		return Block{}, ErrEmpty
	}
	return j.blocks[len(j.blocks)-1], nil
}

// Blocks returns a copy of the chain.
func (j *Journal) Blocks() []Block {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Block(nil), j.blocks...)
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.blocks)
}

// Verify checks the genesis block and every link of the chain.
func (j *Journal) Verify() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.blocks) == 0 {
		return ErrEmpty
	}
	if j.blocks[0].PrevHash != "0" || j.blocks[0].Hash != calculateHash(j.blocks[0]) {
		return fmt.Errorf("invalid genesis block")
	}
	for i := 1; i < len(j.blocks); i++ {
		if err := validateBlock(j.blocks[i], j.blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}
	return nil
}

func validateBlock(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	if expected := calculateHash(current); current.Hash != expected {
		return fmt.Errorf("invalid hash: expected %s, got %s", expected, current.Hash)
	}
	return nil
}

// calculateHash is the SHA256 of the index, timestamp, previous hash and the
// JSON form of the event.
func calculateHash(b Block) string {
	event, _ := json.Marshal(b.Event)
	data := fmt.Sprintf("%d%d%s%s", b.Index, b.Timestamp, b.PrevHash, event)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
