package locale

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// InferTimezoneFromPhone returns the default timezone of the phone's country,
// or "" when the country is unknown. Callers must not guess a zone for an
// unknown country.
func InferTimezoneFromPhone(phone string) string {
	country := InferCountryFromPhone(phone)
	if country == nil {
		return ""
	}
	return country.DefaultTimezone
}

func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}

	parsed, err := phonenumbers.Parse(normalized, "")
	if err != nil {
		return nil
	}

	country, ok := Countries[phonenumbers.GetRegionCodeForNumber(parsed)]
	if !ok {
		return nil
	}
	return &country
}
