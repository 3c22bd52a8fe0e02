// Package tls builds the HTTPS configuration for starry-server, either from
// certificate files or from a self-signed pair kept under the data directory.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds TLS configuration options
type Config struct {
	Enabled  bool
	CertFile string
	KeyFile  string

	// AutoGenerate creates a self-signed pair in Dir when no files are given.
	AutoGenerate bool
	Dir          string
	Hosts        []string
	ValidFor     time.Duration
}

const (
	// DefaultValidFor is the lifetime of generated certificates.
	DefaultValidFor = 365 * 24 * time.Hour

	generatedCert = "cert.pem"
	generatedKey  = "key.pem"
)

// DefaultHosts are the names a generated certificate covers when none are set.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

var ErrNoCertificate = errors.New("TLS enabled but no certificate provided and auto-generation disabled")

// CertificateInfo holds certificate metadata
type CertificateInfo struct {
	Subject      string
	SerialNumber string
	NotBefore    time.Time
	NotAfter     time.Time
	DNSNames     []string
	IPAddresses  []string
}

// ExpiresIn returns the time until expiry as seen at now.
func (ci *CertificateInfo) ExpiresIn(now time.Time) time.Duration {
	return ci.NotAfter.Sub(now)
}

// SecureCipherSuites lists the TLS 1.2 suites the server accepts. TLS 1.3
// suites are not configurable.
func SecureCipherSuites() []uint16 {
	return []uint16{
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	}
}

// LoadTLSConfig returns nil when TLS is disabled. With AutoGenerate, a
// previously generated pair is reused until it expires.
func LoadTLSConfig(cfg Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
	case cfg.AutoGenerate:
		cert, err = ensureSelfSigned(cfg, time.Now())
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoCertificate
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		CipherSuites: SecureCipherSuites(),
	}, nil
}

func ensureSelfSigned(cfg Config, now time.Time) (tls.Certificate, error) {
	if cfg.Dir == "" {
		return tls.Certificate{}, errors.New("auto-generated certificates need a directory")
	}
	certFile := filepath.Join(cfg.Dir, generatedCert)
	keyFile := filepath.Join(cfg.Dir, generatedKey)

	if VerifyCertificate(certFile, now) == nil {
		if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
			return cert, nil
		}
	}

	hosts := cfg.Hosts
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	validFor := cfg.ValidFor
	if validFor <= 0 {
		validFor = DefaultValidFor
	}
	certPEM, keyPEM, err := GenerateSelfSigned(hosts, now, validFor)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}
	if err := writePair(certFile, keyFile, certPEM, keyPEM); err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func writePair(certFile, keyFile string, certPEM, keyPEM []byte) error {
	if err := os.MkdirAll(filepath.Dir(certFile), 0700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate file: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// VerifyCertificate checks that the PEM certificate in certFile is valid at now.
func VerifyCertificate(certFile string, now time.Time) error {
	cert, err := readCertificate(certFile)
	if err != nil {
		return err
	}
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid")
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate has expired")
	}
	return nil
}

// GetCertificateInfo returns information about a certificate
func GetCertificateInfo(certFile string) (*CertificateInfo, error) {
	cert, err := readCertificate(certFile)
	if err != nil {
		return nil, err
	}
	info := &CertificateInfo{
		Subject:      cert.Subject.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		DNSNames:     cert.DNSNames,
	}
	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}
	return info, nil
}

func readCertificate(certFile string) (*x509.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to parse certificate PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return cert, nil
}
