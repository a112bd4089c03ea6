// Package certs keeps a self-signed certificate for serving the API over
// HTTPS on a workstation.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	// Validity is the lifetime of a generated certificate.
	Validity = 365 * 24 * time.Hour
	// RenewBefore regenerates certificates this close to expiry.
	RenewBefore = 30 * 24 * time.Hour

	certName = "hourglass.crt"
	keyName  = "hourglass.key"
)

// DefaultHosts are the names a generated certificate covers.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Manager loads or creates the server certificate.
type Manager struct {
	now   func() time.Time
	dir   string
	hosts []string
}

// NewManager stores certificates in dir. Empty hosts means DefaultHosts.
func NewManager(dir string, hosts ...string) *Manager {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &Manager{dir: dir, hosts: hosts, now: time.Now}
}

// CertFile is the PEM certificate path, useful for trusting it in a browser.
func (m *Manager) CertFile() string { return filepath.Join(m.dir, certName) }

func (m *Manager) keyFile() string { return filepath.Join(m.dir, keyName) }

// Certificate returns the stored certificate, generating a new one when none
// exists or the stored one is unreadable, expiring or missing a host.
func (m *Manager) Certificate() (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(m.CertFile(), m.keyFile())
	if err == nil && m.usable(cert) == nil {
		return cert, nil
	}
	return m.generate()
}

// TLSConfig returns a server TLS config using Certificate.
func (m *Manager) TLSConfig() (*tls.Config, error) {
	cert, err := m.Certificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (m *Manager) usable(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificate in pair")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.now()
	if now.Before(leaf.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.Add(RenewBefore).After(leaf.NotAfter) {
		return errors.New("certificate expires soon")
	}
	for _, h := range m.hosts {
		if err := leaf.VerifyHostname(h); err != nil {
			return fmt.Errorf("certificate does not cover %s: %w", h, err)
		}
	}
	return nil
}

func (m *Manager) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial: %w", err)
	}

	now := m.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"hourglass"}, CommonName: m.hosts[0]},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range m.hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to encode key: %w", err)
	}

	if err := writePEM(m.CertFile(), "CERTIFICATE", der); err != nil {
		return tls.Certificate{}, err
	}
	if err := writePEM(m.keyFile(), "EC PRIVATE KEY", keyDER); err != nil {
		return tls.Certificate{}, err
	}

	return tls.LoadX509KeyPair(m.CertFile(), m.keyFile())
}

func writePEM(path, blockType string, der []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
