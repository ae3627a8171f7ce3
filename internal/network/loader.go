package network

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// providerFile is the on-disk layout of a provider list.
type providerFile struct {
	Providers []Spec `yaml:"providers"`
}

// LoadProviders reads an ordered provider list from a YAML file and
// validates it.
func LoadProviders(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provider list: %w", err)
	}
	return ParseProviders(data)
}

// ParseProviders decodes and validates a YAML provider list.
func ParseProviders(data []byte) ([]Spec, error) {
	var file providerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode provider list: %w", err)
	}
	if err := ValidateList(file.Providers); err != nil {
		return nil, err
	}
	return file.Providers, nil
}
