package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransactionType selects the IPG credit card transaction variant
type TransactionType string

const (
	TransactionTypePreAuth  TransactionType = "preAuth"  // Authorization only
	TransactionTypePostAuth TransactionType = "postAuth" // Capture a previous preAuth
	TransactionTypeSale     TransactionType = "sale"     // Authorization + capture
	TransactionTypeVoid     TransactionType = "void"     // Cancel a previous transaction
	TransactionTypeReturn   TransactionType = "return"   // Refund a captured transaction
)

// RequiresOrderID reports whether the type refers to an order created earlier
func (t TransactionType) RequiresOrderID() bool {
	return t == TransactionTypePostAuth || t == TransactionTypeVoid || t == TransactionTypeReturn
}

// CardFunction tells the processor which card product to charge
type CardFunction string

const (
	CardFunctionCredit CardFunction = "credit"
	CardFunctionDebit  CardFunction = "debit"
)

// APIConfig holds the credentials for one gateway call.
// It is built from plugin configuration on every call and never cached.
type APIConfig struct {
	ClientCertificate string // PEM
	ClientKey         string // PEM
	UserID            string
	Password          string
	UseSandbox        bool
}

// Payment is the amount block of an IPG transaction
type Payment struct {
	Currency             string // ISO 4217 numeric, e.g. "986"
	ChargeTotal          decimal.Decimal
	DeliveryAmount       decimal.Decimal
	SubTotal             *decimal.Decimal
	NumberOfInstallments int
	InstallmentsInterest bool
	HostedDataID         string
}

// TransactionDetails identifies the transaction on the merchant and gateway side
type TransactionDetails struct {
	MerchantTransactionID string
	IP                    string
	OrderID               string // Gateway order id, follow-up operations only
}

// Address is used for both billing and shipping; Email is only sent for billing
type Address struct {
	Name     string
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Country  string // ISO 3166-1 alpha-3
	Phone    string
	Email    string
}

// CreditCardData is raw card data for non-tokenized flows
type CreditCardData struct {
	CardNumber    string
	ExpMonth      string
	ExpYear       string
	CardCodeValue string
}

// Transaction is the outbound IPG order document
type Transaction struct {
	Type           TransactionType
	CardFunction   CardFunction
	CreditCardData *CreditCardData
	Payment        Payment
	Details        TransactionDetails
	Billing        *Address
	Shipping       *Address
}

// NewPayment returns a payment block with the gateway defaults applied
func NewPayment(currency string, chargeTotal decimal.Decimal) Payment {
	return Payment{
		Currency:             currency,
		ChargeTotal:          chargeTotal,
		DeliveryAmount:       decimal.Zero,
		NumberOfInstallments: 1,
	}
}

// OrderResult is a successful IPGApiOrderResponse.
// Fields holds every element of the response keyed by local name.
type OrderResult struct {
	Fields map[string]string
}

// Get returns a response field, empty when absent
func (r *OrderResult) Get(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Brand is the card brand reported by the processor (e.g. "VISA")
func (r *OrderResult) Brand() string { return r.Get("Brand") }

// OrderID is the gateway order id used by follow-up operations
func (r *OrderResult) OrderID() string { return r.Get("OrderId") }

// ApprovalCode is the processor approval code
func (r *OrderResult) ApprovalCode() string { return r.Get("ApprovalCode") }

// TransactionResult is APPROVED, DECLINED, FAILED, ...
func (r *OrderResult) TransactionResult() string { return r.Get("TransactionResult") }

// IPGClient is the port for the IPG SOAP order service
type IPGClient interface {
	// Invoke submits one transaction document exactly once.
	// Returns *ipg.Fault for processor rejections, *ipg.ConnectivityError for
	// transport failures and *ipg.ProvisioningError when certificates could
	// not be materialized.
	Invoke(ctx context.Context, cfg APIConfig, tx *Transaction) (*OrderResult, error)

	// TestConnection loads the service description with the given credentials
	TestConnection(ctx context.Context, cfg APIConfig) error
}

// CountryCodes converts ISO 3166-1 alpha-2 codes to alpha-3
type CountryCodes interface {
	Alpha3(alpha2 string) (string, error)
}

// CurrencyCodes converts ISO 4217 alpha codes to numeric codes
type CurrencyCodes interface {
	Numeric(alpha3 string) (string, error)
}
