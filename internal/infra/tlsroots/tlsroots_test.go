package tlsroots

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/hashguard/internal/telemetry/logger"
)

// writePair writes a self-signed certificate with the given serial and its
// key, and returns the certificate PEM.
func writePair(t *testing.T, certFile, keyFile string, serial int64) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: "hashguard-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if keyFile != "" {
		if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
			t.Fatalf("write key: %v", err)
		}
	}
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	return certPEM
}

func serialOf(t *testing.T, r *CertReloader) int64 {
	t.Helper()
	cert, err := r.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("parse leaf: %v", err)
	}
	return leaf.SerialNumber.Int64()
}

func TestLoadPool(t *testing.T) {
	dir := t.TempDir()
	writePair(t, filepath.Join(dir, "a.pem"), "", 1)
	writePair(t, filepath.Join(dir, "b.crt"), "", 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPool(dir); err != nil {
		t.Errorf("LoadPool(dir) error = %v", err)
	}
	if _, err := LoadPool(filepath.Join(dir, "a.pem")); err != nil {
		t.Errorf("LoadPool(file) error = %v", err)
	}
}

func TestLoadPool_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, []byte("no pem here"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.pem")
	badPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")})
	if err := os.WriteFile(bad, badPEM, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing", filepath.Join(dir, "nope.pem"), nil},
		{"no certificates", empty, ErrNoCertsFound},
		{"unparsable", bad, nil},
		{"empty dir", t.TempDir(), ErrNoCertsFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPool(tt.path)
			if err == nil {
				t.Fatal("LoadPool() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadPool() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := filepath.Join(dir, "tls.crt"), filepath.Join(dir, "tls.key")
	writePair(t, certFile, keyFile, 1)
	r, err := NewCertReloader(certFile, keyFile, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewCertReloader() error = %v", err)
	}

	cfg := ServerConfig(r, nil)
	if cfg.ClientAuth != tls.NoClientCert || cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("ServerConfig(nil) = %+v", cfg)
	}

	pool, err := LoadPool(certFile)
	if err != nil {
		t.Fatalf("LoadPool() error = %v", err)
	}
	cfg = ServerConfig(r, pool)
	if cfg.ClientAuth != tls.RequireAndVerifyClientCert || cfg.ClientCAs != pool {
		t.Errorf("ServerConfig(pool) ClientAuth = %v", cfg.ClientAuth)
	}
}

func TestCertReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := filepath.Join(dir, "tls.crt"), filepath.Join(dir, "tls.key")
	writePair(t, certFile, keyFile, 1)

	r, err := NewCertReloader(certFile, keyFile, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewCertReloader() error = %v", err)
	}
	if got := serialOf(t, r); got != 1 {
		t.Fatalf("serial = %d, want 1", got)
	}

	writePair(t, certFile, keyFile, 2)
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := serialOf(t, r); got != 2 {
		t.Errorf("serial = %d, want 2", got)
	}

	if err := os.WriteFile(certFile, []byte("broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(); err == nil {
		t.Error("Reload() error = nil for broken certificate")
	}
	if got := serialOf(t, r); got != 2 {
		t.Errorf("serial after failed reload = %d, want 2", got)
	}
}

func TestNewCertReloader_Missing(t *testing.T) {
	if _, err := NewCertReloader("/nonexistent/tls.crt", "/nonexistent/tls.key"); err == nil {
		t.Error("NewCertReloader() error = nil for missing files")
	}
}

func TestCertReloader_Run(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := filepath.Join(dir, "tls.crt"), filepath.Join(dir, "tls.key")
	writePair(t, certFile, keyFile, 1)

	r, err := NewCertReloader(certFile, keyFile,
		WithLogger(logger.Nop()),
		WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewCertReloader() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writePair(t, certFile, keyFile, 7)

	deadline := time.Now().Add(3 * time.Second)
	for serialOf(t, r) != 7 {
		if time.Now().After(deadline) {
			t.Fatal("certificate was not reloaded")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestAddPEM_SkipsOtherBlocks(t *testing.T) {
	dir := t.TempDir()
	certPEM := writePair(t, filepath.Join(dir, "c.pem"), "", 3)
	data := append(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("x")}), certPEM...)

	n, err := addPEM(x509.NewCertPool(), bytes.Clone(data))
	if err != nil || n != 1 {
		t.Errorf("addPEM() = %d, %v; want 1, nil", n, err)
	}
}
