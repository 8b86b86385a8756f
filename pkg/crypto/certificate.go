package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// ClientCertificate is a PEM-encoded certificate and private key pair.
type ClientCertificate struct {
	CertificatePEM string
	PrivateKeyPEM  string
	Fingerprint    string // SHA-256 of the certificate DER, lowercase hex
	NotAfter       time.Time
}

// GenerateClientCertificate creates a self-signed 2048-bit RSA certificate
// usable for TLS client authentication against a sandbox.
func GenerateClientCertificate(commonName string, validFor time.Duration) (*ClientCertificate, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	hash := sha256.Sum256(der)

	return &ClientCertificate{
		CertificatePEM: string(certPEM),
		PrivateKeyPEM:  string(keyPEM),
		Fingerprint:    hex.EncodeToString(hash[:]),
		NotAfter:       template.NotAfter,
	}, nil
}

// ParseCertificate parses a PEM-encoded X.509 certificate.
func ParseCertificate(certificatePEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(certificatePEM))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block")
	}
	if block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return cert, nil
}

// VerifyKeyPair checks that the certificate and private key parse and belong together.
func VerifyKeyPair(certificatePEM, privateKeyPEM string) error {
	if _, err := tls.X509KeyPair([]byte(certificatePEM), []byte(privateKeyPEM)); err != nil {
		return fmt.Errorf("invalid client certificate: %w", err)
	}
	return nil
}

// ComputeFingerprint computes the SHA-256 fingerprint of a PEM certificate.
func ComputeFingerprint(certificatePEM string) (string, error) {
	block, _ := pem.Decode([]byte(certificatePEM))
	if block == nil {
		return "", fmt.Errorf("failed to parse PEM block")
	}

	hash := sha256.Sum256(block.Bytes)
	return hex.EncodeToString(hash[:]), nil
}
