package network

import (
	"crypto/tls"
	"crypto/x509"
	"testing"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

func TestHttpsMesh(t *testing.T) {
	listeners, addresses := CreateListeners(2)
	pool := x509.NewCertPool()
	certs := map[protocol.PeerID]tls.Certificate{}
	for id, addr := range addresses {
		cert, pem, err := GenerateSelfSignedCert(addr)
		if err != nil {
			t.Fatal(err)
		}
		pool.AppendCertsFromPEM(pem)
		certs[id] = cert
	}
	peers := map[protocol.PeerID]*Peer{}
	for id, l := range listeners {
		peers[id] = NewPeer(id, addresses, l, WithCertificate(certs[id]), WithLimitedCAs(pool))
	}
	defer func() {
		for _, p := range peers {
			p.Close()
		}
	}()

	a, b := peers["peer-0"], peers["peer-1"]
	if err := a.Send("peer-1", []byte("hello over tls")); err != nil {
		t.Fatal(err)
	}
	var got []protocol.Packet
	waitFor(t, "tls packet", func() bool {
		got = append(got, b.Receive()...)
		return len(got) == 1
	})
	if string(got[0].Data) != "hello over tls" || got[0].From != "peer-0" {
		t.Fatalf("unexpected packet %+v", got[0])
	}
}

func TestGenerateSelfSignedCertRejectsBadAddress(t *testing.T) {
	if _, _, err := GenerateSelfSignedCert("no-port"); err == nil {
		t.Fatal("expected error for an address without port")
	}
}
