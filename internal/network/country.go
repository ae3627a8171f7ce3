package network

import (
	"strings"
	"sync"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	countries     *gountries.Query
	countriesOnce sync.Once
)

func countryQuery() *gountries.Query {
	countriesOnce.Do(func() {
		countries = gountries.New()
	})
	return countries
}

// CountryCode returns the ISO 3166-1 alpha-2 code for a country given as a
// name ("Brazil") or an alpha-2/alpha-3 code ("br", "BRA"). Unknown input
// yields "".
func CountryCode(country string) string {
	country = strings.TrimSpace(country)
	if country == "" || country == Unknown {
		return ""
	}

	query := countryQuery()
	if n := len(country); n == 2 || n == 3 {
		caser := cases.Upper(language.AmericanEnglish)
		if c, err := query.FindCountryByAlpha(caser.String(country)); err == nil {
			return c.Alpha2
		}
	}
	if c, err := query.FindCountryByName(country); err == nil {
		return c.Alpha2
	}
	return ""
}

// enrich fills the country code of an accepted record.
func enrich(rec Record) Record {
	if rec.CountryCode == "" {
		rec.CountryCode = CountryCode(rec.Country)
	}
	return rec
}
