package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// Write encodes g in format f to w. JSON is indented by two spaces.
func Write(g chunk.Elements, w io.Writer, f Format) error {
	g = normalize(g.Clone())
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unknown graph format %q", f)
	}
	return nil
}

// WriteJSON encodes g as JSON to w.
func WriteJSON(g chunk.Elements, w io.Writer) error { return Write(g, w, FormatJSON) }

// WriteYAML encodes g as YAML to w.
func WriteYAML(g chunk.Elements, w io.Writer) error { return Write(g, w, FormatYAML) }

// Export writes g to path in the format given by its extension.
func Export(g chunk.Elements, path string) error {
	var buf bytes.Buffer
	if err := Write(g, &buf, FormatFromPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Marshal encodes g in format f.
func Marshal(g chunk.Elements, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
