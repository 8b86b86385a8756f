package lookup

import (
	"fmt"
	"strings"

	"github.com/bojanz/currency"
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
)

// currencyCodes resolves ISO 4217 codes from the CLDR data bundled with bojanz/currency
type currencyCodes struct{}

// NewCurrencyCodes creates a CurrencyCodes backed by github.com/bojanz/currency
func NewCurrencyCodes() ports.CurrencyCodes {
	return currencyCodes{}
}

// Numeric converts an alpha code ("BRL") to its numeric code ("986")
func (currencyCodes) Numeric(alpha3 string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(alpha3))
	if !currency.IsValid(code) {
		return "", fmt.Errorf("unknown currency code %q", alpha3)
	}

	numeric, ok := currency.GetNumericCode(code)
	if !ok || numeric == "" || numeric == "000" {
		return "", fmt.Errorf("currency %q has no numeric code", alpha3)
	}

	return numeric, nil
}
