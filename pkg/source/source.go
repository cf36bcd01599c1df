// Package source reads sponsor lists from JSON, YAML or TOML files.
//
// All three formats share one shape: a top-level "sponsors" list whose
// entries carry name, profile_url, avatar_url and weight. Records are
// returned as read; validation is left to sponsors.Classify.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"gopkg.in/yaml.v3"
)

// Format identifies a sponsor file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type sponsorFile struct {
	Sponsors []sponsors.Record `json:"sponsors" yaml:"sponsors" toml:"sponsors"`
}

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported sponsor file extension %q", filepath.Ext(path))
}

// LoadFile reads the sponsor list at path, choosing the decoder by extension.
func LoadFile(path string) ([]sponsors.Record, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sponsor file: %w", err)
	}
	records, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode reads a sponsor list in the given format.
func Decode(r io.Reader, format Format) ([]sponsors.Record, error) {
	var file sponsorFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON sponsors: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to parse YAML sponsors: %w", err)
		}
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(&file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML sponsors: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse TOML sponsors: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported sponsor format %q", format)
	}
	return file.Sponsors, nil
}
