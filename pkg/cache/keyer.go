package cache

// Key prefixes, one per cached stage.
const (
	prefixDiagram  = "diagram"
	prefixArtifact = "artifact"
)

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// DiagramKey keys a built diagram by the hash of its instrument document.
	DiagramKey(instrumentHash string, opts DiagramKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its diagram JSON.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// DiagramKeyOpts lists the build inputs besides the instrument itself.
type DiagramKeyOpts struct {
	StyleHash string `json:"style,omitempty"`
	Analysis  bool   `json:"analysis,omitempty"`
	// Measurer names the phase-2 measurer ("estimate" or a font name).
	Measurer string `json:"measurer,omitempty"`
	// IntensityHash is the hash of an analysis dataset given on top of the
	// document; empty when the document's own data is used.
	IntensityHash string `json:"intensity,omitempty"`
}

// ArtifactKeyOpts lists the render inputs besides the diagram.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Font   string  `json:"font,omitempty"`
	Popups bool    `json:"popups,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DiagramKey implements Keyer.
func (DefaultKeyer) DiagramKey(instrumentHash string, opts DiagramKeyOpts) string {
	return hashKey(prefixDiagram, instrumentHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, diagramHash, opts)
}

var _ Keyer = DefaultKeyer{}
