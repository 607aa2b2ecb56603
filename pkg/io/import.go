package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// Read decodes a graph in format f from r and validates it.
// Read does not close r.
func Read(r io.Reader, f Format) (chunk.Elements, error) {
	var g chunk.Elements
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&g); err != nil {
			return chunk.Elements{}, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&g); err != nil {
			return chunk.Elements{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return chunk.Elements{}, fmt.Errorf("unknown graph format %q", f)
	}

	g = normalize(g)
	if err := chunk.Validate(g).Err(); err != nil {
		return chunk.Elements{}, err
	}
	return g, nil
}

// ReadJSON decodes a JSON graph from r.
func ReadJSON(r io.Reader) (chunk.Elements, error) { return Read(r, FormatJSON) }

// ReadYAML decodes a YAML graph from r.
func ReadYAML(r io.Reader) (chunk.Elements, error) { return Read(r, FormatYAML) }

// Import reads the graph file at path. The format follows the extension.
func Import(path string) (chunk.Elements, error) {
	f, err := os.Open(path)
	if err != nil {
		return chunk.Elements{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Read(f, FormatFromPath(path))
	if err != nil {
		return chunk.Elements{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// normalize fills optional fields so decoded graphs look like built ones.
func normalize(g chunk.Elements) chunk.Elements {
	for i := range g.Nodes {
		if g.Nodes[i].Inputs == nil {
			g.Nodes[i].Inputs = []string{}
		}
		if g.Nodes[i].Outputs == nil {
			g.Nodes[i].Outputs = []string{}
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i].Roles) == 0 {
			g.Edges[i].Roles = []chunk.EdgeRole{chunk.EdgeConnection}
		}
	}
	if g.Nodes == nil {
		g.Nodes = []chunk.Node{}
	}
	if g.Edges == nil {
		g.Edges = []chunk.Edge{}
	}
	return g
}
