package ipg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const certFilePrefix = "ipg-client-"

// ProvisionedCertificate points at the temporary files holding one call's
// client certificate and private key
type ProvisionedCertificate struct {
	CertPath string
	KeyPath  string
}

// Cleanup removes both files. Safe to call more than once.
func (p *ProvisionedCertificate) Cleanup() error {
	var errs []error
	for _, path := range []string{p.CertPath, p.KeyPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CertificateProvisioner materializes in-memory PEM material as files for the
// TLS layer. PEM structure is not checked here; malformed input fails the
// TLS handshake later.
type CertificateProvisioner struct {
	dir string
}

// NewCertificateProvisioner writes into dir, or the OS temp dir when empty
func NewCertificateProvisioner(dir string) *CertificateProvisioner {
	return &CertificateProvisioner{dir: dir}
}

// Provision writes the certificate and key to two new 0600 files whose names
// carry a per-call UUID
func (p *CertificateProvisioner) Provision(certPEM, keyPEM string) (*ProvisionedCertificate, error) {
	id := uuid.NewString()

	certPath, err := p.writeTemp(certFilePrefix+id+"-*.crt", certPEM)
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}

	keyPath, err := p.writeTemp(certFilePrefix+id+"-*.key", keyPEM)
	if err != nil {
		os.Remove(certPath)
		return nil, &ProvisioningError{Err: err}
	}

	return &ProvisionedCertificate{CertPath: certPath, KeyPath: keyPath}, nil
}

func (p *CertificateProvisioner) writeTemp(pattern, content string) (string, error) {
	f, err := os.CreateTemp(p.dir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", f.Name(), err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", f.Name(), err)
	}

	return f.Name(), nil
}

// SweepStale removes certificate files older than maxAge. Files are only
// left behind when the process dies mid-call.
func (p *CertificateProvisioner) SweepStale(maxAge time.Duration) (int, error) {
	dir := p.dir
	if dir == "" {
		dir = os.TempDir()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, certFilePrefix) {
			continue
		}
		if !strings.HasSuffix(name, ".crt") && !strings.HasSuffix(name, ".key") {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
