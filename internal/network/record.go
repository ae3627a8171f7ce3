// Package network resolves a visitor's apparent network and geographic
// identity by trying an ordered list of lookup providers, falling back to a
// local timezone-based guess when every provider fails.
package network

// Status is the trust tier of a Record.
type Status string

const (
	// StatusVerified is a validated JSON provider answer with location data.
	StatusVerified Status = "Verified"
	// StatusPartialFallback is a lower fidelity answer without a schema.
	StatusPartialFallback Status = "Partial (Fallback)"
	// StatusRestricted is the local inference used when every provider failed.
	StatusRestricted Status = "Restricted"
)

// Placeholders used when a field could not be resolved.
const (
	Unknown = "Unknown"
)

// Record is the resolved network identity of a visitor.
type Record struct {
	IP          string `json:"ip"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	ISP         string `json:"isp"`
	Status      Status `json:"status"`
	Source      string `json:"source"`
	CountryCode string `json:"countryCode,omitempty"`
}

// IsRestricted reports whether the record came from local inference, which
// consumers use to de-emphasise the displayed address.
func (r Record) IsRestricted() bool {
	return r.Status == StatusRestricted
}

// geographicallyEmpty is the quality gate: the exact placeholder values a
// provider yields when it knows nothing about the address.
func (r Record) geographicallyEmpty() bool {
	return r.City == Unknown && r.Region == "" && r.Country == Unknown && r.ISP == Unknown
}
