package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when a PEM source holds no certificate.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found")
)

// LoadPool builds a pool from PEM files and directories. Directory entries
// are read when they end in .pem, .crt or .cer.
func LoadPool(paths ...string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	added := 0
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: %w", err)
		}
		if !fi.IsDir() {
			n, err := addFile(pool, path)
			if err != nil {
				return nil, err
			}
			added += n
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: read dir %s: %w", path, err)
		}
		for _, e := range entries {
			if e.IsDir() || !isCertFile(e.Name()) {
				continue
			}
			n, err := addFile(pool, filepath.Join(path, e.Name()))
			if err != nil {
				return nil, err
			}
			added += n
		}
	}
	if added == 0 {
		return nil, ErrNoCertsFound
	}
	return pool, nil
}

func isCertFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pem", ".crt", ".cer":
		return true
	}
	return false
}

func addFile(pool *x509.CertPool, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	n, err := addPEM(pool, data)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: %s: %w", path, err)
	}
	return n, nil
}

// addPEM adds every CERTIFICATE block of data and returns how many were
// added. Other block types are skipped.
func addPEM(pool *x509.CertPool, data []byte) (int, error) {
	n := 0
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return n, fmt.Errorf("parse certificate: %w", err)
		}
		pool.AddCert(cert)
		n++
	}
	if n == 0 {
		return 0, ErrNoCertsFound
	}
	return n, nil
}

// ServerConfig returns a listener configuration serving the certificate of
// r. A non-nil clientCAs requires clients to present a certificate signed
// by one of them.
func ServerConfig(r *CertReloader, clientCAs *x509.CertPool) *tls.Config {
	cfg := &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
	if clientCAs != nil {
		cfg.ClientCAs = clientCAs
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg
}
