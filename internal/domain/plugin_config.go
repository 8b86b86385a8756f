package domain

import (
	"strconv"
	"strings"
)

// GatewayName is the display name of the gateway
const GatewayName = "Sipag"

// Configuration item names
const (
	ConfigClientCertificate   = "client_certificate"
	ConfigClientKey           = "client_key"
	ConfigUserID              = "user_id"
	ConfigUserPassword        = "user_password"
	ConfigUseSandbox          = "use_sandbox"
	ConfigAutoCapture         = "automatic_payment_capture"
	ConfigSupportedCurrencies = "supported_currencies"
	ConfigStoreCustomerCard   = "store_customer_card"
	ConfigRefundViaGateway    = "refund_via_gateway"
)

// RequiredConfigFields must all be set before an active plugin can be saved
var RequiredConfigFields = []string{
	ConfigClientCertificate,
	ConfigClientKey,
	ConfigUserID,
	ConfigUserPassword,
}

// DefaultPluginConfiguration returns the configuration a new plugin instance starts with
func DefaultPluginConfiguration() *PluginConfiguration {
	return &PluginConfiguration{
		Active: false,
		Configuration: []ConfigurationItem{
			{Name: ConfigClientCertificate, Value: nil},
			{Name: ConfigClientKey, Value: nil},
			{Name: ConfigUserID, Value: nil},
			{Name: ConfigUserPassword, Value: nil},
			{Name: ConfigUseSandbox, Value: true},
			{Name: ConfigAutoCapture, Value: true},
			{Name: ConfigSupportedCurrencies, Value: "BRL"},
		},
	}
}

// GatewayConfig resolves the stored items, falling back to the defaults
func (p *PluginConfiguration) GatewayConfig() GatewayConfig {
	values := p.Values()

	return GatewayConfig{
		GatewayName:         GatewayName,
		AutoCapture:         boolValue(values[ConfigAutoCapture], true),
		SupportedCurrencies: stringValue(values[ConfigSupportedCurrencies], "BRL"),
		StoreCustomer:       boolValue(values[ConfigStoreCustomerCard], false),
		ConnectionParams: ConnectionParams{
			ClientCertificate: stringValue(values[ConfigClientCertificate], ""),
			ClientKey:         stringValue(values[ConfigClientKey], ""),
			UserID:            stringValue(values[ConfigUserID], ""),
			UserPassword:      rawStringValue(values[ConfigUserPassword]),
			UseSandbox:        boolValue(values[ConfigUseSandbox], true),
			RefundViaGateway:  boolValue(values[ConfigRefundViaGateway], false),
		},
	}
}

// MissingFields lists the required items that are unset or blank
func (p *PluginConfiguration) MissingFields() []string {
	values := p.Values()

	var missing []string
	for _, field := range RequiredConfigFields {
		if stringValue(values[field], "") == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Merge overlays items onto p, keeping items absent from update
func (p *PluginConfiguration) Merge(update []ConfigurationItem) {
	index := make(map[string]int, len(p.Configuration))
	for i, item := range p.Configuration {
		index[item.Name] = i
	}

	for _, item := range update {
		if i, ok := index[item.Name]; ok {
			p.Configuration[i].Value = item.Value
			continue
		}
		index[item.Name] = len(p.Configuration)
		p.Configuration = append(p.Configuration, item)
	}
}

func stringValue(v interface{}, def string) string {
	switch val := v.(type) {
	case nil:
		return def
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return def
	}
}

// rawStringValue keeps surrounding whitespace; passwords are sent as stored
func rawStringValue(v interface{}) string {
	if val, ok := v.(string); ok {
		return val
	}
	return ""
}

func boolValue(v interface{}, def bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}
