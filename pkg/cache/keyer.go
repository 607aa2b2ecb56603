package cache

// LayoutKeyOpts are the solver settings that change a layout result.
type LayoutKeyOpts struct {
	Solver  string  `json:"solver"`
	NodeSep float64 `json:"node_sep,omitempty"`
	RankSep float64 `json:"rank_sep,omitempty"`
}

// ArtifactKeyOpts are the render settings that change an exported artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style,omitempty"`
}

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// LayoutKey keys solver output for a graph content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact (DOT, SVG) for a graph content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the graph hash together with the solver options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey hashes the graph hash together with the render options.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
