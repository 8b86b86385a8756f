package ipg

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	pkghttp "github.com/kevin07696/ipg-gateway/pkg/http"
	"github.com/kevin07696/ipg-gateway/pkg/observability"
	"github.com/kevin07696/ipg-gateway/pkg/resilience"
	"go.uber.org/zap"
)

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 1 << 20

var errNotSOAP = errors.New("response is not a SOAP envelope")

// Config contains configuration for the IPG order service client
type Config struct {
	// Base URL of the order service; the WSDL lives at {base}/order.wsdl
	// Sandbox: https://test.ipg-online.com/ipgapi/services
	// Production: https://www.ipg-online.com/ipgapi/services
	SandboxURL    string
	ProductionURL string

	// Timeout bounds one invocation: WSDL fetch plus order POST
	Timeout time.Duration

	// CertDir receives the temporary client certificate files.
	// Empty uses the OS temp dir.
	CertDir string

	HTTP *pkghttp.HTTPClientConfig
}

// DefaultConfig returns the public IPG endpoints
func DefaultConfig() *Config {
	return &Config{
		SandboxURL:    "https://test.ipg-online.com/ipgapi/services",
		ProductionURL: "https://www.ipg-online.com/ipgapi/services",
		Timeout:       45 * time.Second,
		HTTP:          pkghttp.IPGClientConfig(),
	}
}

// client implements the IPGClient port
type client struct {
	config      *Config
	timeouts    *resilience.TimeoutConfig
	provisioner *CertificateProvisioner
	logger      *zap.Logger
}

// NewClient creates a new IPG order service client
func NewClient(config *Config, logger *zap.Logger) ports.IPGClient {
	if config.HTTP == nil {
		config.HTTP = pkghttp.IPGClientConfig()
	}

	return &client{
		config:      config,
		timeouts:    resilience.DefaultTimeoutConfig().WithExternalAPI(config.Timeout),
		provisioner: NewCertificateProvisioner(config.CertDir),
		logger:      logger,
	}
}

// Invoke submits one transaction to the order service. It never retries.
func (c *client) Invoke(ctx context.Context, cfg ports.APIConfig, tx *ports.Transaction) (*ports.OrderResult, error) {
	start := time.Now()

	c.logger.Info("Submitting IPG order",
		zap.String("transaction_type", string(tx.Type)),
		zap.String("merchant_transaction_id", tx.Details.MerchantTransactionID),
		zap.String("order_id", tx.Details.OrderID),
		zap.String("charge_total", tx.Payment.ChargeTotal.String()),
		zap.String("currency", tx.Payment.Currency),
		zap.Bool("sandbox", cfg.UseSandbox),
	)

	result, err := c.invoke(ctx, cfg, tx)

	outcome, code := outcomeOf(err)
	observability.RecordGatewayCall(string(tx.Type), outcome, code, time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("IPG order failed",
			zap.String("transaction_type", string(tx.Type)),
			zap.String("outcome", outcome),
			zap.String("processor_code", code),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("IPG order completed",
		zap.String("transaction_type", string(tx.Type)),
		zap.String("order_id", result.OrderID()),
		zap.String("transaction_result", result.TransactionResult()),
		zap.String("approval_code", result.ApprovalCode()),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (c *client) invoke(ctx context.Context, cfg ports.APIConfig, tx *ports.Transaction) (*ports.OrderResult, error) {
	body, err := marshalOrderRequest(tx)
	if err != nil {
		return nil, err
	}

	if ce := c.logger.Check(zap.DebugLevel, "IPG order document"); ce != nil {
		if doc, err := marshalOrderRequest(redacted(tx)); err == nil {
			ce.Write(zap.ByteString("document", doc))
		}
	}

	ctx, cancel := c.timeouts.ExternalAPIContext(ctx)
	defer cancel()

	return c.withSession(cfg, func(httpClient *http.Client) (*ports.OrderResult, error) {
		baseURL := c.baseURL(cfg.UseSandbox)

		desc, err := c.loadServiceDescription(ctx, httpClient, cfg, baseURL)
		if err != nil {
			return nil, err
		}

		endpoint := desc.Location
		if endpoint == "" {
			endpoint = baseURL
		}

		return c.postOrder(ctx, httpClient, cfg, endpoint, body)
	})
}

// TestConnection loads the service description with the given credentials
func (c *client) TestConnection(ctx context.Context, cfg ports.APIConfig) error {
	ctx, cancel := c.timeouts.ExternalAPIContext(ctx)
	defer cancel()

	_, err := c.withSession(cfg, func(httpClient *http.Client) (*ports.OrderResult, error) {
		_, err := c.loadServiceDescription(ctx, httpClient, cfg, c.baseURL(cfg.UseSandbox))
		return nil, err
	})
	if err != nil {
		c.logger.Warn("IPG connection test failed",
			zap.Bool("sandbox", cfg.UseSandbox),
			zap.Error(err),
		)
	}
	return err
}

// withSession provisions the client certificate, builds a mutual TLS client
// for fn and releases both afterwards
func (c *client) withSession(cfg ports.APIConfig, fn func(*http.Client) (*ports.OrderResult, error)) (*ports.OrderResult, error) {
	cert, err := c.provisioner.Provision(cfg.ClientCertificate, cfg.ClientKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cert.Cleanup(); err != nil {
			c.logger.Warn("Failed to remove client certificate files", zap.Error(err))
		}
	}()

	httpClient := pkghttp.NewMutualTLSClient(c.config.HTTP, c.timeouts.ExternalAPI, loadClientCertificate(cert))
	defer httpClient.CloseIdleConnections()

	return fn(httpClient)
}

func (c *client) baseURL(sandbox bool) string {
	if sandbox {
		return strings.TrimRight(c.config.SandboxURL, "/")
	}
	return strings.TrimRight(c.config.ProductionURL, "/")
}

func (c *client) loadServiceDescription(ctx context.Context, httpClient *http.Client, cfg ports.APIConfig, baseURL string) (*ServiceDescription, error) {
	const op = "load service description"

	ctx, cancel := c.timeouts.ServiceDescriptionContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/order.wsdl", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(cfg.UserID, cfg.Password)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, newConnectivityError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newConnectivityError(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ConnectivityError{Op: op, StatusCode: resp.StatusCode}
	}

	desc, err := parseServiceDescription(data)
	if err != nil {
		return nil, &ConnectivityError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if len(desc.Operations) > 0 && !desc.HasOperation(orderOperation) {
		return nil, &ConnectivityError{
			Op:  op,
			Err: fmt.Errorf("operation %s not declared by %s", orderOperation, desc.TargetNamespace),
		}
	}

	return desc, nil
}

func (c *client) postOrder(ctx context.Context, httpClient *http.Client, cfg ports.APIConfig, endpoint string, body []byte) (*ports.OrderResult, error) {
	const op = "submit order"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(cfg.UserID, cfg.Password)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `""`)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, newConnectivityError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newConnectivityError(op, err)
	}

	// Faults arrive with HTTP 500; they are decoded before the status is checked
	result, err := decodeOrderResponse(data)
	if err != nil {
		if errors.Is(err, errNotSOAP) {
			return nil, &ConnectivityError{Op: op, StatusCode: resp.StatusCode, Err: err}
		}
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ConnectivityError{Op: op, StatusCode: resp.StatusCode}
	}

	return result, nil
}

// loadClientCertificate reads the provisioned pair during the handshake
func loadClientCertificate(cert *ProvisionedCertificate) pkghttp.ClientCertificateFunc {
	return func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
		pair, err := tls.LoadX509KeyPair(cert.CertPath, cert.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		return &pair, nil
	}
}

// redacted returns a copy of tx safe for logging
func redacted(tx *ports.Transaction) *ports.Transaction {
	out := *tx
	if cd := tx.CreditCardData; cd != nil {
		masked := ports.CreditCardData{
			CardNumber: maskPAN(cd.CardNumber),
			ExpMonth:   "XX",
			ExpYear:    "XX",
		}
		out.CreditCardData = &masked
	}
	return &out
}

func maskPAN(pan string) string {
	if len(pan) <= 4 {
		return strings.Repeat("*", len(pan))
	}
	return strings.Repeat("*", len(pan)-4) + pan[len(pan)-4:]
}

// outcomeOf maps an Invoke error to a metrics outcome and processor code
func outcomeOf(err error) (string, string) {
	if err == nil {
		return observability.OutcomeApproved, ""
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return observability.OutcomeFault, fault.Code
	}

	var perr *ProvisioningError
	if errors.As(err, &perr) {
		return observability.OutcomeProvisioning, ""
	}

	var cerr *ConnectivityError
	if errors.As(err, &cerr) && cerr.Timeout {
		return observability.OutcomeTimeout, ""
	}

	return observability.OutcomeConnectivity, ""
}
