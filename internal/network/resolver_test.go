package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicescan/internal/pkg/geoip"
)

func ipwhoSpec(name, url string) Spec {
	spec := DefaultProviders()[1]
	spec.Name = name
	spec.URL = url
	return spec
}

func ipAPISpec(name, url string) Spec {
	spec := DefaultProviders()[0]
	spec.Name = name
	spec.URL = url
	return spec
}

func textSpec(url string) Spec {
	return Spec{Name: "trace", URL: url, Type: TypeText}
}

func serveJSON(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestResolver(opts ...Option) *Resolver {
	base := []Option{
		WithTimeout(time.Second),
		WithTimezoneFunc(func() string { return "America/Sao_Paulo" }),
	}
	return NewResolver(append(base, opts...)...)
}

const ipwhoBody = `{"success":true,"ip":"198.51.100.7","city":"Lisbon","region":"Lisbon","country":"Portugal","connection":{"isp":"MEO"}}`

func TestResolvePrecedence(t *testing.T) {
	t.Run("falls through a schema failure to the next provider", func(t *testing.T) {
		// status is required by the ip-api schema
		broken := serveJSON(t, http.StatusOK, `{"query":"203.0.113.1","city":"Paris"}`)
		good := serveJSON(t, http.StatusOK, ipwhoBody)

		rec := newTestResolver().Resolve(context.Background(), []Spec{
			ipAPISpec("first", broken.URL),
			ipwhoSpec("second", good.URL),
		})

		assert.Equal(t, StatusVerified, rec.Status)
		assert.Equal(t, "127.0.0.1", rec.Source)
		assert.Equal(t, "198.51.100.7", rec.IP)
		assert.Equal(t, "Lisbon", rec.City)
		assert.Equal(t, "Lisbon", rec.Region)
		assert.Equal(t, "Portugal", rec.Country)
		assert.Equal(t, "MEO", rec.ISP)
		assert.Equal(t, "PT", rec.CountryCode)
	})

	t.Run("first accepted provider wins", func(t *testing.T) {
		var secondHits atomic.Int32
		first := serveJSON(t, http.StatusOK, ipwhoBody)
		second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secondHits.Add(1)
			_, _ = w.Write([]byte(ipwhoBody))
		}))
		defer second.Close()

		rec := newTestResolver().Resolve(context.Background(), []Spec{
			ipwhoSpec("first", first.URL),
			ipwhoSpec("second", second.URL),
		})

		assert.Equal(t, StatusVerified, rec.Status)
		assert.Zero(t, secondHits.Load())
	})

	t.Run("sends the json accept header", func(t *testing.T) {
		var accept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			_, _ = w.Write([]byte(ipwhoBody))
		}))
		defer server.Close()

		newTestResolver().Resolve(context.Background(), []Spec{ipwhoSpec("only", server.URL)})
		assert.Equal(t, "application/json", accept)
	})
}

func TestResolveRejections(t *testing.T) {
	good := serveJSON(t, http.StatusOK, ipwhoBody)

	cases := []struct {
		name  string
		first Spec
	}{
		{
			name:  "geographically empty response fails the quality gate",
			first: ipwhoSpec("empty", serveJSON(t, http.StatusOK, `{"success":true,"ip":"203.0.113.1","city":"  ","country":"","connection":{}}`).URL),
		},
		{
			name:  "success false is skipped",
			first: ipwhoSpec("marker", serveJSON(t, http.StatusOK, `{"success":false,"ip":"203.0.113.1","city":"Oslo","country":"Norway"}`).URL),
		},
		{
			name:  "status fail is skipped",
			first: ipAPISpec("marker", serveJSON(t, http.StatusOK, `{"status":"fail","query":"203.0.113.1","city":"Oslo"}`).URL),
		},
		{
			name:  "non 2xx with a valid body is skipped",
			first: ipwhoSpec("status", serveJSON(t, http.StatusServiceUnavailable, ipwhoBody).URL),
		},
		{
			name:  "undecodable json is skipped",
			first: ipwhoSpec("garbage", serveJSON(t, http.StatusOK, `<html>blocked</html>`).URL),
		},
		{
			name:  "wrong field kind is skipped",
			first: ipwhoSpec("kind", serveJSON(t, http.StatusOK, `{"success":true,"ip":"203.0.113.1","city":42}`).URL),
		},
		{
			name:  "null optional field is skipped",
			first: ipAPISpec("null", serveJSON(t, http.StatusOK, `{"status":"success","query":"203.0.113.1","city":null,"regionName":"Ile-de-France","country":"France","isp":"Orange"}`).URL),
		},
		{
			name:  "unreachable provider is skipped",
			first: ipwhoSpec("down", "http://127.0.0.1:1/"),
		},
		{
			name:  "invalid spec is skipped",
			first: Spec{Name: "broken", Type: TypeJSON, URL: "ftp://example.com"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := newTestResolver().Resolve(context.Background(), []Spec{tc.first, ipwhoSpec("good", good.URL)})
			assert.Equal(t, StatusVerified, rec.Status)
			assert.Equal(t, "Lisbon", rec.City)
		})
	}
}

func TestResolveExhaustion(t *testing.T) {
	t.Run("every provider failing yields the local inference record", func(t *testing.T) {
		down := serveJSON(t, http.StatusInternalServerError, `{}`)

		rec := newTestResolver().Resolve(context.Background(), []Spec{
			ipAPISpec("a", down.URL),
			ipwhoSpec("b", down.URL),
			textSpec(down.URL),
		})

		assert.Equal(t, LocalFallback("America/Sao_Paulo"), rec)
		assert.True(t, rec.IsRestricted())
	})

	t.Run("an empty list yields the local inference record", func(t *testing.T) {
		rec := newTestResolver().Resolve(context.Background(), nil)
		assert.Equal(t, StatusRestricted, rec.Status)
	})

	t.Run("context timezone overrides the host timezone", func(t *testing.T) {
		ctx := WithTimezone(context.Background(), "Europe/Isle_of_Man")
		rec := newTestResolver().Resolve(ctx, nil)

		assert.Equal(t, "Isle of Man", rec.City)
		assert.Equal(t, "Europe", rec.Region)
	})

	t.Run("cancelled context falls back without error", func(t *testing.T) {
		server := serveJSON(t, http.StatusOK, ipwhoBody)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := newTestResolver().Resolve(ctx, []Spec{ipwhoSpec("a", server.URL)})
		assert.Equal(t, StatusRestricted, rec.Status)
	})
}

func TestResolveTransport(t *testing.T) {
	t.Run("slow provider times out and the next is tried", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer slow.Close()
		good := serveJSON(t, http.StatusOK, ipwhoBody)

		start := time.Now()
		rec := newTestResolver(WithTimeout(50*time.Millisecond)).Resolve(context.Background(), []Spec{
			ipwhoSpec("slow", slow.URL),
			ipwhoSpec("good", good.URL),
		})

		assert.Equal(t, StatusVerified, rec.Status)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("providers are attempted one at a time", func(t *testing.T) {
		var inflight, peak atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				current := peak.Load()
				if n <= current || peak.CompareAndSwap(current, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		specs := []Spec{ipwhoSpec("a", server.URL), ipwhoSpec("b", server.URL), ipwhoSpec("c", server.URL)}
		newTestResolver().Resolve(context.Background(), specs)

		assert.Equal(t, int32(1), peak.Load())
	})

	t.Run("target ip is substituted into the url", func(t *testing.T) {
		var path string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_, _ = w.Write([]byte(ipwhoBody))
		}))
		defer server.Close()

		ctx := WithTargetIP(context.Background(), "203.0.113.9")
		newTestResolver().Resolve(ctx, []Spec{ipwhoSpec("a", server.URL+"/json/{ip}")})
		assert.Equal(t, "/json/203.0.113.9", path)
	})

	t.Run("self only providers are skipped for an explicit target", func(t *testing.T) {
		var hits atomic.Int32
		self := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("ip=192.0.2.1\nloc=NL\n"))
		}))
		defer self.Close()

		ctx := WithTargetIP(context.Background(), "203.0.113.9")
		rec := newTestResolver().Resolve(ctx, []Spec{ipwhoSpec("self", self.URL), textSpec(self.URL)})

		assert.Zero(t, hits.Load())
		assert.Equal(t, StatusRestricted, rec.Status)
	})

	t.Run("user agent is sent when configured", func(t *testing.T) {
		var ua string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(ipwhoBody))
		}))
		defer server.Close()

		newTestResolver(WithUserAgent("devicescan/test")).Resolve(context.Background(), []Spec{ipwhoSpec("a", server.URL)})
		assert.Equal(t, "devicescan/test", ua)
	})
}

func TestResolveText(t *testing.T) {
	t.Run("trace body is parsed into a partial record", func(t *testing.T) {
		var accept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			_, _ = w.Write([]byte("ip=203.0.113.5\nloc=US\n"))
		}))
		defer server.Close()

		rec := newTestResolver().Resolve(context.Background(), []Spec{textSpec(server.URL)})

		assert.Equal(t, "203.0.113.5", rec.IP)
		assert.Equal(t, "US", rec.Region)
		assert.Equal(t, "US", rec.Country)
		assert.Equal(t, "Cloudflare Node", rec.City)
		assert.Equal(t, "Cloudflare", rec.ISP)
		assert.Equal(t, StatusPartialFallback, rec.Status)
		assert.Equal(t, "cloudflare.com", rec.Source)
		assert.Equal(t, "US", rec.CountryCode)
		assert.Equal(t, "text/plain", accept)
	})

	t.Run("empty trace body is still accepted", func(t *testing.T) {
		server := serveJSON(t, http.StatusOK, "")
		rec := newTestResolver().Resolve(context.Background(), []Spec{textSpec(server.URL)})

		assert.Equal(t, StatusPartialFallback, rec.Status)
		assert.Equal(t, Unknown, rec.IP)
		assert.Equal(t, Unknown, rec.Country)
	})
}

type fakeGeo struct {
	loc geoip.Location
	err error
	got net.IP
}

func (f *fakeGeo) Lookup(ip net.IP) (geoip.Location, error) {
	f.got = ip
	return f.loc, f.err
}

func TestResolveGeoIP(t *testing.T) {
	geo := &fakeGeo{loc: geoip.Location{City: "Berlin", Region: "Land Berlin", Country: "Germany", CountryCode: "DE"}}

	t.Run("target ip is looked up in the database", func(t *testing.T) {
		ctx := WithTargetIP(context.Background(), "198.51.100.20")
		rec := newTestResolver(WithGeoLookup(geo)).Resolve(ctx, []Spec{GeoIPProvider()})

		assert.Equal(t, "198.51.100.20", geo.got.String())
		assert.Equal(t, Record{
			IP:          "198.51.100.20",
			City:        "Berlin",
			Region:      "Land Berlin",
			Country:     "Germany",
			ISP:         Unknown,
			Status:      StatusPartialFallback,
			Source:      GeoSource,
			CountryCode: "DE",
		}, rec)
	})

	t.Run("missing target ip skips the database", func(t *testing.T) {
		rec := newTestResolver(WithGeoLookup(geo)).Resolve(context.Background(), []Spec{GeoIPProvider()})
		assert.Equal(t, StatusRestricted, rec.Status)
	})

	t.Run("missing database skips the provider", func(t *testing.T) {
		ctx := WithTargetIP(context.Background(), "198.51.100.20")
		rec := newTestResolver().Resolve(ctx, []Spec{GeoIPProvider()})
		assert.Equal(t, StatusRestricted, rec.Status)
	})

	t.Run("lookup error skips the provider", func(t *testing.T) {
		ctx := WithTargetIP(context.Background(), "198.51.100.20")
		failing := &fakeGeo{err: errors.New("corrupt")}
		rec := newTestResolver(WithGeoLookup(failing)).Resolve(ctx, []Spec{GeoIPProvider()})
		assert.Equal(t, StatusRestricted, rec.Status)
	})
}

func TestCandidateErrors(t *testing.T) {
	r := newTestResolver()

	t.Run("quality gate rejection is reported", func(t *testing.T) {
		server := serveJSON(t, http.StatusOK, `{"success":true,"ip":"203.0.113.1"}`)
		_, err := r.candidate(ipwhoSpec("a", server.URL)).attempt(context.Background())
		assert.ErrorIs(t, err, ErrQualityGate)
	})

	t.Run("failure marker is reported before schema errors", func(t *testing.T) {
		// ip is required but the marker wins
		server := serveJSON(t, http.StatusOK, `{"success":false}`)
		_, err := r.candidate(ipwhoSpec("a", server.URL)).attempt(context.Background())
		assert.ErrorIs(t, err, ErrProviderFailure)
	})

	t.Run("non 2xx is a transport failure", func(t *testing.T) {
		server := serveJSON(t, http.StatusNotFound, ipwhoBody)
		_, err := r.candidate(ipwhoSpec("a", server.URL)).attempt(context.Background())
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("unknown type is an invalid provider", func(t *testing.T) {
		_, err := r.candidate(Spec{Name: "x", Type: "xml"}).attempt(context.Background())
		assert.ErrorIs(t, err, ErrInvalidProvider)
	})

	t.Run("missing target is reported", func(t *testing.T) {
		_, err := geoCandidate{geo: &fakeGeo{}}.attempt(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoTarget)
	})
}

func TestExpandURL(t *testing.T) {
	t.Run("without placeholder the url is unchanged", func(t *testing.T) {
		assert.Equal(t, "https://ipwho.is/", expandURL("https://ipwho.is/", "1.2.3.4"))
	})

	t.Run("without target the placeholder is dropped", func(t *testing.T) {
		assert.Equal(t, "https://ipwho.is/", expandURL("https://ipwho.is/{ip}", ""))
	})

	t.Run("ipv6 targets are kept path safe", func(t *testing.T) {
		assert.Equal(t, "https://ipwho.is/2001:db8::1", expandURL("https://ipwho.is/{ip}", "2001:db8::1"))
	})
}
