package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionKind is the platform-facing kind of a gateway operation
type TransactionKind string

const (
	KindAuth    TransactionKind = "auth"
	KindCapture TransactionKind = "capture"
	KindVoid    TransactionKind = "void"
	KindRefund  TransactionKind = "refund"
)

// AddressData is a buyer address as the platform normalizes it.
// Country is an ISO 3166-1 alpha-2 code.
type AddressData struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CompanyName    string `json:"company_name,omitempty"`
	StreetAddress1 string `json:"street_address_1"`
	StreetAddress2 string `json:"street_address_2,omitempty"`
	City           string `json:"city"`
	CityArea       string `json:"city_area,omitempty"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
	CountryArea    string `json:"country_area,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// FullName joins first and last name the way the gateway expects a cardholder name
func (a *AddressData) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CardData carries raw card details for flows where the card is not tokenized yet
type CardData struct {
	Number     string `json:"number"`
	ExpMonth   string `json:"exp_month"`
	ExpYear    string `json:"exp_year"`
	CVC        string `json:"cvc"`
	HolderName string `json:"holder_name,omitempty"`
}

// PaymentData is the normalized payment request handed over by the platform
type PaymentData struct {
	Gateway           string           `json:"gateway"`
	Amount            decimal.Decimal  `json:"amount"`
	SubTotal          *decimal.Decimal `json:"sub_total,omitempty"`
	DeliveryAmount    decimal.Decimal  `json:"delivery_amount"`
	Currency          string           `json:"currency"` // ISO 4217 alpha-3
	Token             string           `json:"token,omitempty"`
	PaymentID         int64            `json:"payment_id"`
	CustomerIPAddress string           `json:"customer_ip_address,omitempty"`
	CustomerEmail     string           `json:"customer_email"`
	Billing           *AddressData     `json:"billing,omitempty"`
	Shipping          *AddressData     `json:"shipping,omitempty"`
	Card              *CardData        `json:"card,omitempty"`
}

// PaymentMethodInfo is card metadata extracted from a gateway result
type PaymentMethodInfo struct {
	Last4    string `json:"last_4,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
}

// GatewayResponse is the normalized result every operation returns to the platform
type GatewayResponse struct {
	IsSuccess         bool               `json:"is_success"`
	ActionRequired    bool               `json:"action_required"`
	Kind              TransactionKind    `json:"kind"`
	Amount            decimal.Decimal    `json:"amount"`
	Currency          string             `json:"currency"`
	TransactionID     string             `json:"transaction_id"`
	Error             *string            `json:"error"`
	PaymentMethodInfo *PaymentMethodInfo `json:"payment_method_info,omitempty"`
	RawResponse       map[string]string  `json:"raw_response,omitempty"`
}

// ConnectionParams are the gateway credentials held in plugin configuration
type ConnectionParams struct {
	ClientCertificate string
	ClientKey         string
	UserID            string
	UserPassword      string
	UseSandbox        bool
	RefundViaGateway  bool
}

// GatewayConfig is the per-plugin configuration resolved from stored items
type GatewayConfig struct {
	GatewayName         string
	AutoCapture         bool
	SupportedCurrencies string
	StoreCustomer       bool
	ConnectionParams    ConnectionParams
}

// Currencies splits the comma separated supported-currency list
func (c *GatewayConfig) Currencies() []string {
	var out []string
	for _, code := range strings.Split(c.SupportedCurrencies, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			out = append(out, code)
		}
	}
	return out
}

// ConfigurationItem is one stored plugin setting
type ConfigurationItem struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// PluginConfiguration is the stored configuration of a plugin instance
type PluginConfiguration struct {
	Active        bool                `json:"active"`
	Configuration []ConfigurationItem `json:"configuration"`
}

// Values flattens the item list into a lookup map
func (p *PluginConfiguration) Values() map[string]interface{} {
	values := make(map[string]interface{}, len(p.Configuration))
	for _, item := range p.Configuration {
		values[item.Name] = item.Value
	}
	return values
}

// PaymentConfigField is one entry of the client-facing payment configuration
type PaymentConfigField struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}
