package locale

type Country struct {
	Code            string // ISO 3166-1 alpha-2 country code (e.g., "IL", "US")
	Name            string
	DefaultTimezone string // IANA timezone identifier (e.g., "Asia/Jerusalem")
}

var Countries = map[string]Country{
	"IL": {
		Code:            "IL",
		Name:            "Israel",
		DefaultTimezone: "Asia/Jerusalem",
	},
	"US": {
		Code:            "US",
		Name:            "United States",
		DefaultTimezone: "America/New_York",
	},
	"GB": {
		Code:            "GB",
		Name:            "United Kingdom",
		DefaultTimezone: "Europe/London",
	},
	"DE": {
		Code:            "DE",
		Name:            "Germany",
		DefaultTimezone: "Europe/Berlin",
	},
}
