package network

import (
	"context"
	"strings"

	"devicescan/internal/pkg/pattern"
)

const (
	traceIPPattern       = `(?m)^ip=(.+)$`
	traceLocationPattern = `(?m)^loc=(.+)$`
)

// Fixed fields of a trace record.
const (
	TraceCity   = "Cloudflare Node"
	TraceISP    = "Cloudflare"
	TraceSource = "cloudflare.com"
)

// ParseTrace reads the ip= and loc= lines of a Cloudflare trace body. The
// location code fills both region and country. Other lines are ignored; a
// missing or blank value becomes Unknown.
func ParseTrace(body string) Record {
	loc := traceLine(traceLocationPattern, body)
	return Record{
		IP:      traceLine(traceIPPattern, body),
		City:    TraceCity,
		Region:  loc,
		Country: loc,
		ISP:     TraceISP,
		Status:  StatusPartialFallback,
		Source:  TraceSource,
	}
}

func traceLine(expr, body string) string {
	value, ok := pattern.Submatch(expr, body)
	if !ok {
		return Unknown
	}
	if value = strings.TrimSpace(strings.TrimRight(value, "\r")); value == "" {
		return Unknown
	}
	return value
}

// textCandidate skips schema validation and the quality gate: any 2xx
// response is accepted.
type textCandidate struct {
	resolver *Resolver
	spec     Spec
}

func (c textCandidate) attempt(ctx context.Context) (Record, error) {
	rawURL, err := requestURL(ctx, c.spec)
	if err != nil {
		return Record{}, err
	}
	body, err := c.resolver.fetch(ctx, rawURL, "text/plain")
	if err != nil {
		return Record{}, err
	}
	return ParseTrace(string(body)), nil
}
