package main

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/luca-patrignani/tactical-duel/protocol"
)

// guessIpAddress completes partialAddr, the trailing octets of an IPv4
// address, with the leading octets of base. An empty partialAddr is base.
func guessIpAddress(base net.IP, partialAddr string) (net.IP, error) {
	ip := slices.Clone(base)
	if partialAddr == "" {
		return ip, nil
	}
	octets := strings.Split(partialAddr, ".")
	if len(octets) > len(ip) {
		return nil, fmt.Errorf("%q has more octets than %v", partialAddr, base)
	}
	offset := len(ip) - len(octets)
	for i, o := range octets {
		v, err := strconv.ParseUint(o, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("octet %q: %w", o, err)
		}
		ip[offset+i] = byte(v)
	}
	return ip, nil
}

// subnetOf returns the network of the local interface carrying ip.
func subnetOf(ip net.IP) (*net.IPNet, error) {
	if ip == nil || ip.IsUnspecified() {
		return nil, fmt.Errorf("no subnet for unspecified address %v", ip)
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if n, ok := a.(*net.IPNet); ok && n.Contains(ip) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no interface found for ip %v", ip)
}

// splitHostPort is net.SplitHostPort with defaultPort used when addr has
// no port.
func splitHostPort(addr string, defaultPort int) (host, port string, err error) {
	if host, port, err = net.SplitHostPort(addr); err == nil {
		return host, port, nil
	}
	return net.SplitHostPort(net.JoinHostPort(addr, strconv.Itoa(defaultPort)))
}

// parsePeers reads a comma separated list of id@address. Addresses may omit
// the leading octets, taken from local, and the port, defaulting to
// defaultPort.
func parsePeers(list string, local net.IP, defaultPort int) (map[protocol.PeerID]string, error) {
	peers := make(map[protocol.PeerID]string)
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, addr, ok := strings.Cut(item, "@")
		if !ok || id == "" {
			return nil, fmt.Errorf("peer %q is not in id@address form", item)
		}
		host, port, err := splitHostPort(addr, defaultPort)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", id, err)
		}
		ip, err := guessIpAddress(local, host)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", id, err)
		}
		peers[protocol.PeerID(id)] = net.JoinHostPort(ip.String(), port)
	}
	return peers, nil
}

// parsePortRange reads "start-end" or a single port.
func parsePortRange(r string) (uint16, uint16, error) {
	first, last, found := strings.Cut(r, "-")
	start, err := strconv.ParseUint(strings.TrimSpace(first), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("port range %q: %w", r, err)
	}
	if !found {
		return uint16(start), uint16(start), nil
	}
	end, err := strconv.ParseUint(strings.TrimSpace(last), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("port range %q: %w", r, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("port range %q is empty", r)
	}
	return uint16(start), uint16(end), nil
}
