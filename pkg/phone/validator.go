package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid             bool   `json:"is_valid"`
	E164Format          string `json:"e164_format"`
	InternationalFormat string `json:"international_format"`
	NationalFormat      string `json:"national_format"`
	CountryCode         string `json:"country_code"`
}

// ValidatePhone validates a phone number and returns detailed information.
func ValidatePhone(phone, countryCode string) (*ValidationResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}

	if countryCode == "" {
		countryCode = "US"
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &ValidationResult{
		IsValid:             phonenumbers.IsValidNumber(parsed),
		E164Format:          phonenumbers.Format(parsed, phonenumbers.E164),
		InternationalFormat: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		NationalFormat:      phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		CountryCode:         phonenumbers.GetRegionCodeForNumber(parsed),
	}, nil
}

// NormalizePhone normalizes a phone number to E.164 format. Lead
// create and import flows call this best-effort: numbers that fail to
// parse are kept as entered.
func NormalizePhone(phone, countryCode string) (string, error) {
	result, err := ValidatePhone(phone, countryCode)
	if err != nil {
		return "", err
	}
	if !result.IsValid {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}
	return result.E164Format, nil
}

// NormalizeOrKeep normalizes to E.164 when possible and returns the
// raw input otherwise.
func NormalizeOrKeep(phone, countryCode string) string {
	if phone == "" {
		return ""
	}
	if e164, err := NormalizePhone(phone, countryCode); err == nil {
		return e164
	}
	return phone
}
