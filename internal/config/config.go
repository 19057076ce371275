// Package config loads the optional YAML filter file accepted by the
// bbreplay CLI's --filter-file flag.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FilterFile is the --filter-file schema: a flat list of API names whose
// resolved addresses should be tracked for call-dump output, merged with
// any --filter flags on the command line.
type FilterFile struct {
	Filters []string `yaml:"filters,omitempty"`
}

// LoadFilterFile reads and parses path. A missing or unreadable file is
// returned as an error; the flag is optional, and callers only invoke
// this when path is non-empty.
func LoadFilterFile(path string) (FilterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FilterFile{}, fmt.Errorf("read filter file %q: %w", path, err)
	}
	var f FilterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return FilterFile{}, fmt.Errorf("parse filter file %q: %w", path, err)
	}
	return f, nil
}
