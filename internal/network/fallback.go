package network

import (
	"os"
	"strings"
	"time"
)

// Fixed fields of the local inference record.
const (
	FallbackIP     = "Blocked / Hidden"
	FallbackCity   = "Localhost"
	FallbackRegion = "System"
	FallbackISP    = "Firewall Detected"
	FallbackSource = "Local Inference"
)

// LocalFallback infers a record from an IANA timezone name such as
// "America/Sao_Paulo": the first segment becomes the region, the second the
// city with underscores turned into spaces.
func LocalFallback(timezone string) Record {
	parts := strings.Split(timezone, "/")

	region := parts[0]
	if region == "" {
		region = FallbackRegion
	}
	city := FallbackCity
	if len(parts) > 1 && parts[1] != "" {
		city = strings.ReplaceAll(parts[1], "_", " ")
	}

	return Record{
		IP:      FallbackIP,
		City:    city,
		Region:  region,
		Country: Unknown,
		ISP:     FallbackISP,
		Status:  StatusRestricted,
		Source:  FallbackSource,
	}
}

// SystemTimezone returns the host's IANA timezone name, or "" when it cannot
// be determined.
func SystemTimezone() string {
	if tz := zoneName(strings.TrimPrefix(os.Getenv("TZ"), ":")); tz != "" {
		return tz
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if tz := zoneName(target); tz != "" {
			return tz
		}
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return ""
}

// zoneName strips a zoneinfo directory prefix from a timezone path.
func zoneName(s string) string {
	if _, name, ok := strings.Cut(s, "zoneinfo/"); ok {
		return name
	}
	return s
}
