// Package discovery finds the other players running on the same host by
// probing a range of ports. Each player announces the identifier and the
// mesh address it listens on.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

type Entry struct {
	ID      protocol.PeerID `json:"id"`
	Address string          `json:"address"`
}

func New(self Entry, port uint16) (*Discover, error) {
	return NewWithPortRange(self, port, port, 2)
}

type handler struct {
	self Entry
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.self); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func NewWithPortRange(self Entry, startPort, endPort uint16, attempts uint) (*Discover, error) {
	return NewWithOptions(self,
		WithPortRange(startPort, endPort),
		WithAttempts(attempts),
	)
}

// search probes every port of the range once. Each identifier is reported
// only the first time it is found.
func (d *Discover) search() {
	for p := int(d.startPort); p <= int(d.endPort); p++ {
		port := uint16(p)
		if port == d.port {
			continue
		}
		entry, err := d.probe(port)
		if err != nil {
			continue
		}
		if entry.ID == d.self.ID || d.seen[entry.ID] {
			continue
		}
		d.seen[entry.ID] = true
		d.logger.Debug("found player", "id", entry.ID, "address", entry.Address)
		select {
		case d.Entries <- entry:
		case <-d.done:
			return
		}
	}
}

func (d *Discover) probe(port uint16) (Entry, error) {
	resp, err := d.client.Get(fmt.Sprintf("http://%s:%d", d.host, port))
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()
	var e Entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		d.logger.Debug("not a player", "port", port, "err", err)
		return Entry{}, err
	}
	if e.ID == "" || e.Address == "" {
		return Entry{}, errors.New("incomplete entry")
	}
	return e, nil
}

// Collect waits for n entries or for ctx to be done, whichever comes first,
// and returns what it found.
func (d *Discover) Collect(ctx context.Context, n int) ([]Entry, error) {
	var entries []Entry
	for len(entries) < n {
		select {
		case e := <-d.Entries:
			entries = append(entries, e)
		case <-ctx.Done():
			return entries, ctx.Err()
		}
	}
	return entries, nil
}

// Port is the port this player announces itself on.
func (d *Discover) Port() uint16 {
	return d.port
}

func (d *Discover) Close() error {
	close(d.done)
	return d.server.Shutdown(context.Background())
}
