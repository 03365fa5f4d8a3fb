package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "instrumap:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey implements Keyer.
func (k *ScopedKeyer) DiagramKey(instrumentHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(instrumentHash, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(diagramHash, opts)
}
