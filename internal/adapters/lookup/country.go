package lookup

import (
	"fmt"
	"strings"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"golang.org/x/text/language"
)

// countryCodes resolves countries from the CLDR region data bundled with x/text
type countryCodes struct{}

// NewCountryCodes creates a CountryCodes backed by golang.org/x/text/language
func NewCountryCodes() ports.CountryCodes {
	return countryCodes{}
}

// Alpha3 converts an ISO 3166-1 alpha-2 code ("BR") to alpha-3 ("BRA")
func (countryCodes) Alpha3(alpha2 string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(alpha2))
	if len(code) != 2 {
		return "", fmt.Errorf("invalid country code %q: expected ISO 3166-1 alpha-2", alpha2)
	}

	region, err := language.ParseRegion(code)
	if err != nil {
		return "", fmt.Errorf("unknown country code %q: %w", alpha2, err)
	}
	if !region.IsCountry() {
		return "", fmt.Errorf("unknown country code %q: not a country", alpha2)
	}

	return region.ISO3(), nil
}
