package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

func TestToDOT(t *testing.T) {
	g := chunk.Seed()
	g.Nodes[0].Name = "speakers"

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "plain",
			opts: Options{},
			want: []string{"rankdir=TB;", `"1" [label="speakers", shape=doubleoctagon`, `"2" [label="2", shape=ellipse`, `"1" -> "1";`},
		},
		{
			name: "detailed LR",
			opts: Options{Detailed: true, Direction: layout.LeftRight},
			want: []string{"rankdir=LR;", `label="speakers\n[output]\nin: 2, 3"`, `label="2\n[generator]\nout: 1"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(g, tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q:\n%s", w, dot)
				}
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(chunk.Seed(), Options{}))
	if err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 44.00" width="62" height="44"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
