package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kevin07696/ipg-gateway/internal/adapters/secrets"
	"github.com/kevin07696/ipg-gateway/internal/domain"
	"github.com/kevin07696/ipg-gateway/pkg/crypto"
	"go.uber.org/zap"
)

// Generates a self-signed client certificate and seeds the local config
// store with an active sandbox plugin configuration that uses it.
func main() {
	storePath := flag.String("store", "./secrets", "local config store directory (CONFIG_STORE_PATH)")
	secretPath := flag.String("path", "ipg/plugin", "plugin configuration secret path (CONFIG_SECRET_PATH)")
	userID := flag.String("user", "WS0000000._.1", "IPG web service user id")
	password := flag.String("password", "sandbox-password", "IPG web service password")
	validFor := flag.Duration("valid-for", 365*24*time.Hour, "certificate lifetime")
	flag.Parse()

	fmt.Println("Generating client certificate...")

	cert, err := crypto.GenerateClientCertificate(*userID, *validFor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate certificate: %v\n", err)
		os.Exit(1)
	}

	pemDir := filepath.Join(*storePath, "certs")
	if err := os.MkdirAll(pemDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	certPath := filepath.Join(pemDir, "client.crt")
	if err := os.WriteFile(certPath, []byte(cert.CertificatePEM), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write certificate: %v\n", err)
		os.Exit(1)
	}

	keyPath := filepath.Join(pemDir, "client.key")
	if err := os.WriteFile(keyPath, []byte(cert.PrivateKeyPEM), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write private key: %v\n", err)
		os.Exit(1)
	}

	cfg := domain.DefaultPluginConfiguration()
	cfg.Active = true
	cfg.Merge([]domain.ConfigurationItem{
		{Name: domain.ConfigClientCertificate, Value: cert.CertificatePEM},
		{Name: domain.ConfigClientKey, Value: cert.PrivateKeyPEM},
		{Name: domain.ConfigUserID, Value: *userID},
		{Name: domain.ConfigUserPassword, Value: *password},
		{Name: domain.ConfigUseSandbox, Value: true},
	})

	logger := zap.NewNop()
	store := secrets.NewConfigStore(secrets.NewLocalSecretStore(*storePath, logger), *secretPath, logger)
	if err := store.Save(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save plugin configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated sandbox client certificate\n")
	fmt.Printf("   Fingerprint: %s\n", cert.Fingerprint)
	fmt.Printf("   Expires: %s\n", cert.NotAfter.Format(time.RFC3339))
	fmt.Printf("   Certificate: %s\n", certPath)
	fmt.Printf("   Private key: %s\n", keyPath)
	fmt.Printf("   Plugin configuration: %s\n", filepath.Join(*storePath, *secretPath))
}
