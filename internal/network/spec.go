package network

import (
	"fmt"
	"net/url"
	"strings"
)

// ResponseType selects how a provider's response is interpreted.
type ResponseType string

const (
	// TypeJSON providers return a JSON object validated against a schema.
	TypeJSON ResponseType = "json"
	// TypeText providers return key=value lines; at most one, and it comes last.
	TypeText ResponseType = "text"
	// TypeMMDB providers look the target IP up in a local GeoLite2 database.
	TypeMMDB ResponseType = "mmdb"
)

// Fields maps each record field to a dot path in the provider's response.
type Fields struct {
	IP      string `yaml:"ip" json:"ip"`
	City    string `yaml:"city" json:"city"`
	Region  string `yaml:"region" json:"region"`
	Country string `yaml:"country" json:"country"`
	ISP     string `yaml:"isp" json:"isp"`
}

// FieldRule is one entry of a provider schema.
type FieldRule struct {
	Path     string    `yaml:"path" json:"path"`
	Kind     ValueKind `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
}

// FailureRule matches a provider's in-band failure marker, such as
// success == false or status == "fail".
type FailureRule struct {
	Path   string `yaml:"path" json:"path"`
	Equals any    `yaml:"equals" json:"equals"`
}

// Spec describes one lookup provider.
type Spec struct {
	Name    string        `yaml:"name" json:"name"`
	URL     string        `yaml:"url" json:"url,omitempty"`
	Type    ResponseType  `yaml:"type" json:"type"`
	Fields  *Fields       `yaml:"fields" json:"fields,omitempty"`
	Schema  []FieldRule   `yaml:"schema" json:"schema,omitempty"`
	Failure []FailureRule `yaml:"failure" json:"failure,omitempty"`
}

// Hostname returns the host part of the provider URL.
func (s Spec) Hostname() string {
	u, err := url.Parse(strings.ReplaceAll(s.URL, targetPlaceholder, ""))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Targeted reports whether the provider can resolve an explicit target IP.
func (s Spec) Targeted() bool {
	return s.Type == TypeMMDB || strings.Contains(s.URL, targetPlaceholder)
}

// Validate checks a single spec for internal consistency.
func (s Spec) Validate() error {
	switch s.Type {
	case TypeJSON:
		if s.Fields == nil {
			return fmt.Errorf("%w %q: json provider needs field paths", ErrInvalidProvider, s.Name)
		}
		if err := checkURL(s.URL); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidProvider, s.Name, err)
		}
	case TypeText:
		if err := checkURL(s.URL); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidProvider, s.Name, err)
		}
	case TypeMMDB:
	default:
		return fmt.Errorf("%w %q: unknown type %q", ErrInvalidProvider, s.Name, s.Type)
	}

	for _, rule := range s.Schema {
		if rule.Path == "" {
			return fmt.Errorf("%w %q: schema rule without path", ErrInvalidProvider, s.Name)
		}
	}
	for _, rule := range s.Failure {
		if rule.Path == "" {
			return fmt.Errorf("%w %q: failure rule without path", ErrInvalidProvider, s.Name)
		}
	}
	return nil
}

// ValidateList checks an ordered provider list: it must not be empty and
// may hold one text provider, which has to be the last entry.
func ValidateList(specs []Spec) error {
	if len(specs) == 0 {
		return ErrNoProviders
	}
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return err
		}
		if specs[i].Type == TypeText && i != len(specs)-1 {
			return fmt.Errorf("%w %q: text provider must be last", ErrInvalidProvider, specs[i].Name)
		}
	}
	return nil
}

func checkURL(raw string) error {
	// The {ip} placeholder is not valid in a URL until it is expanded.
	u, err := url.Parse(strings.ReplaceAll(raw, targetPlaceholder, ""))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
