package network

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net/http"
	"time"
)

type peerOption func(*Peer)

// WithTimeout bounds how long a packet is retried before being dropped.
func WithTimeout(timeout time.Duration) peerOption {
	return func(p *Peer) {
		p.timeout = timeout
		p.client.Timeout = timeout
	}
}

// WithRetryInterval sets the pause between two delivery attempts.
func WithRetryInterval(d time.Duration) peerOption {
	return func(p *Peer) {
		p.retry = d
	}
}

// WithBacklog sets how many packets can wait for delivery to one peer.
func WithBacklog(n int) peerOption {
	return func(p *Peer) {
		p.backlog = n
	}
}

func WithLogger(l *slog.Logger) peerOption {
	return func(p *Peer) {
		p.logger = l
	}
}

// WithCertificate serves over TLS with cert and reaches the other peers over
// https.
func WithCertificate(cert tls.Certificate) peerOption {
	return func(p *Peer) {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.Certificates = append(p.tlsConfig.Certificates, cert)
		p.client.Transport = &http.Transport{TLSClientConfig: p.tlsConfig}
	}
}

// WithLimitedCAs only trusts, as servers and as clients, certificates
// signed by certPool.
func WithLimitedCAs(certPool *x509.CertPool) peerOption {
	return func(p *Peer) {
		if p.tlsConfig == nil {
			p.tlsConfig = &tls.Config{}
		}
		p.tlsConfig.RootCAs = certPool
		p.tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		p.tlsConfig.ClientCAs = certPool
		p.client.Transport = &http.Transport{TLSClientConfig: p.tlsConfig}
	}
}
