package network

import (
	"context"
	"fmt"
	"net"

	"devicescan/internal/pkg/geoip"
)

// GeoSource names the local database in records it produces.
const GeoSource = "GeoLite2"

// GeoLookup resolves an address against a local database.
type GeoLookup interface {
	Lookup(ip net.IP) (geoip.Location, error)
}

// geoCandidate answers from the local database. It needs a target IP from
// the context, since the database cannot discover the caller's own address.
type geoCandidate struct {
	geo GeoLookup
}

func (c geoCandidate) attempt(ctx context.Context) (Record, error) {
	if c.geo == nil {
		return Record{}, fmt.Errorf("%w: no geoip database configured", ErrTransport)
	}

	target := TargetIPFromContext(ctx)
	ip := net.ParseIP(target)
	if ip == nil {
		return Record{}, ErrNoTarget
	}

	loc, err := c.geo.Lookup(ip)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	rec := Record{
		IP:          ip.String(),
		City:        orUnknown(loc.City),
		Region:      loc.Region,
		Country:     orUnknown(loc.Country),
		ISP:         Unknown,
		Status:      StatusPartialFallback,
		Source:      GeoSource,
		CountryCode: loc.CountryCode,
	}
	if rec.geographicallyEmpty() {
		return Record{}, ErrQualityGate
	}
	return rec, nil
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
