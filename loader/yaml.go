package loader

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/clinicquest/engine/world"
)

// LoadYAML reads a single YAML world file. Unknown fields are errors.
func LoadYAML(path string, opts ...Option) (*world.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	c, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return Build(c, opts...)
}

// DecodeYAML decodes YAML world content without building it.
func DecodeYAML(data []byte) (*Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
