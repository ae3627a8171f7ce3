package network

// DefaultProviders returns the built-in provider list in precedence order.
// Providers with an {ip} placeholder can resolve an explicit target; the
// others only report on the caller.
func DefaultProviders() []Spec {
	return []Spec{
		{
			Name: "ip-api",
			URL:  "http://ip-api.com/json/{ip}?fields=status,query,country,regionName,city,isp",
			Type: TypeJSON,
			Fields: &Fields{
				IP:      "query",
				City:    "city",
				Region:  "regionName",
				Country: "country",
				ISP:     "isp",
			},
			Schema: []FieldRule{
				{Path: "status", Kind: KindString, Required: true},
				{Path: "query", Kind: KindString},
				{Path: "country", Kind: KindString},
				{Path: "regionName", Kind: KindString},
				{Path: "city", Kind: KindString},
				{Path: "isp", Kind: KindString},
			},
			Failure: []FailureRule{{Path: "status", Equals: "fail"}},
		},
		{
			Name: "ipwho",
			URL:  "https://ipwho.is/{ip}",
			Type: TypeJSON,
			Fields: &Fields{
				IP:      "ip",
				City:    "city",
				Region:  "region",
				Country: "country",
				ISP:     "connection.isp",
			},
			Schema: []FieldRule{
				{Path: "success", Kind: KindBool},
				{Path: "ip", Kind: KindString, Required: true},
				{Path: "city", Kind: KindString},
				{Path: "region", Kind: KindString},
				{Path: "country", Kind: KindString},
				{Path: "connection", Kind: KindObject},
				{Path: "connection.isp", Kind: KindString},
			},
			Failure: []FailureRule{{Path: "success", Equals: false}},
		},
		{
			Name: "db-ip",
			URL:  "https://api.db-ip.com/v2/free/self",
			Type: TypeJSON,
			Fields: &Fields{
				IP:      "ipAddress",
				City:    "city",
				Region:  "regionName",
				Country: "countryName",
				ISP:     "isp",
			},
			Schema: []FieldRule{
				{Path: "ipAddress", Kind: KindString},
				{Path: "city", Kind: KindString},
				{Path: "regionName", Kind: KindString},
				{Path: "countryName", Kind: KindString},
				{Path: "isp", Kind: KindString},
			},
		},
		{
			Name: "cloudflare-trace",
			URL:  "https://www.cloudflare.com/cdn-cgi/trace",
			Type: TypeText,
		},
	}
}

// GeoIPProvider returns the spec for the local GeoLite2 lookup.
func GeoIPProvider() Spec {
	return Spec{Name: "geolite2", Type: TypeMMDB}
}

// WithGeoIP inserts the GeoLite2 provider immediately before a trailing text
// provider, or appends it when there is none.
func WithGeoIP(specs []Spec) []Spec {
	out := make([]Spec, 0, len(specs)+1)
	if n := len(specs); n > 0 && specs[n-1].Type == TypeText {
		out = append(out, specs[:n-1]...)
		out = append(out, GeoIPProvider(), specs[n-1])
		return out
	}
	out = append(out, specs...)
	return append(out, GeoIPProvider())
}
