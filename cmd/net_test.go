package main

import (
	"net"
	"testing"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

func TestGuessIpAddress24(t *testing.T) {
	addr := net.IP{192, 168, 0, 1}
	actual, err := guessIpAddress(addr, "42")
	if err != nil {
		t.Fatal(err)
	}
	expected := net.IP{192, 168, 0, 42}
	if !actual.Equal(expected) {
		t.Fatalf("expected %v, actual %v", expected, actual)
	}
}

func TestGuessIpAddress16(t *testing.T) {
	addr := net.IP{192, 168, 0, 1}
	actual, err := guessIpAddress(addr, "15.42")
	if err != nil {
		t.Fatal(err)
	}
	expected := net.IP{192, 168, 15, 42}
	if !actual.Equal(expected) {
		t.Fatalf("expected %v, actual %v", expected, actual)
	}
}

func TestGuessIpAddress0(t *testing.T) {
	addr := net.IP{192, 168, 0, 1}
	actual, err := guessIpAddress(addr, "10.100.15.42")
	if err != nil {
		t.Fatal(err)
	}
	expected := net.IP{10, 100, 15, 42}
	if !actual.Equal(expected) {
		t.Fatalf("expected %v, actual %v", expected, actual)
	}
}

func TestGuessIpAddressRejectsBadOctets(t *testing.T) {
	addr := net.IP{192, 168, 0, 1}
	for _, partial := range []string{"300", "a.b", "1.2.3.4.5"} {
		if _, err := guessIpAddress(addr, partial); err == nil {
			t.Errorf("%q: expected an error", partial)
		}
	}
}

func TestGuessIpAddress32(t *testing.T) {
	addr := net.IP{192, 168, 0, 1}
	actual, err := guessIpAddress(addr, "")
	if err != nil {
		t.Fatal(err)
	}
	if !actual.Equal(addr) {
		t.Fatalf("expected %v, actual %v", addr, actual)
	}
}

func TestSubnetOf(t *testing.T) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ipnet, err := subnetOf(l.Addr().(*net.TCPAddr).IP)
	if err != nil {
		t.Fatalf("subnetOf error: %v", err)
	}
	t.Logf("listener local addr: %v, subnet: %s", l.Addr(), ipnet.String())

	if !ipnet.Contains(net.ParseIP("127.0.0.1")) {
		t.Fatalf("expected subnet %s to contain 127.0.0.1", ipnet.String())
	}
	if _, err := subnetOf(net.IPv4zero); err == nil {
		t.Fatal("expected an error for the unspecified address")
	}
}

func TestParsePeers(t *testing.T) {
	local := net.IP{192, 168, 0, 1}
	peers, err := parsePeers("bob@42:9001, carol@10.0.0.7, ", local, 9000)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[protocol.PeerID]string{
		"bob":   "192.168.0.42:9001",
		"carol": "10.0.0.7:9000",
	}
	if len(peers) != len(expected) {
		t.Fatalf("expected %v, actual %v", expected, peers)
	}
	for id, addr := range expected {
		if peers[id] != addr {
			t.Fatalf("%s: expected %s, actual %s", id, addr, peers[id])
		}
	}
	if _, err := parsePeers("nobody", local, 9000); err == nil {
		t.Fatal("expected an error without @")
	}
}

func TestParsePortRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end uint16
		fails      bool
	}{
		{in: "9000-9010", start: 9000, end: 9010},
		{in: "9005", start: 9005, end: 9005},
		{in: "9010-9000", fails: true},
		{in: "abc", fails: true},
		{in: "1-70000", fails: true},
	}
	for _, c := range cases {
		start, end, err := parsePortRange(c.in)
		if c.fails {
			if err == nil {
				t.Errorf("%s: expected an error", c.in)
			}
			continue
		}
		if err != nil || start != c.start || end != c.end {
			t.Errorf("%s: got %d-%d %v", c.in, start, end, err)
		}
	}
}
