package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Sources []Source `yaml:"sources"`
}

// LoadFile reads a YAML source file. The file's sources replace the
// built-in ones.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML source definitions.
func Parse(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return New(f.Sources...)
}

// Marshal encodes sources in the format LoadFile reads.
func Marshal(list []Source) ([]byte, error) {
	return yaml.Marshal(fileFormat{Sources: list})
}
