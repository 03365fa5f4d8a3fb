package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/cache"
	"github.com/matzehuels/instrumap/pkg/diagram/layout"
	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/instrument"
	"github.com/matzehuels/instrumap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, source []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	buildStart := time.Now()
	d, hit, err := r.BuildWithCacheInfo(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Boxes = len(d.Boxes)
	result.Stats.Arrows = len(d.Arrows)
	result.CacheInfo.BuildHit = hit

	r.Logger.Info("built diagram",
		"boxes", len(d.Boxes),
		"arrows", len(d.Arrows),
		"cached", hit,
		"duration", result.Stats.BuildTime)
	for _, w := range d.Warnings {
		r.Logger.Warn("relationship kind dropped", "reason", w)
	}

	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.renderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.DiagramHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo loads source and builds its diagram, consulting the
// cache first. The bool reports a cache hit.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, source []byte, opts Options) (*layout.Diagram, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.DiagramKey(cache.Hash(source), opts.DiagramKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if d, err := sink.ReadJSON(data); err == nil {
				return d, true, nil
			}
		}
	}

	in, err := Load(source)
	if err != nil {
		return nil, false, fmt.Errorf("load: %w", err)
	}
	d, err := r.build(ctx, in, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := sink.RenderJSON(d); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLDiagram); err != nil {
			r.Logger.Debug("cache write failed", "err", err)
		}
	}
	return d, false, nil
}

// Build is BuildWithCacheInfo without the cache hit flag.
func (r *Runner) Build(ctx context.Context, source []byte, opts Options) (*layout.Diagram, error) {
	d, _, err := r.BuildWithCacheInfo(ctx, source, opts)
	return d, err
}

// BuildInstrument builds an already loaded instrument. It bypasses the
// cache, which is keyed by document bytes.
func (r *Runner) BuildInstrument(ctx context.Context, in *instrument.Instrument, opts Options) (*layout.Diagram, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	return r.build(ctx, in, opts)
}

func (r *Runner) build(ctx context.Context, in *instrument.Instrument, opts Options) (*layout.Diagram, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, in.Name, len(in.Components))
	start := time.Now()

	d, err := Build(in, opts)

	var stats observability.BuildStats
	if d != nil {
		stats = observability.BuildStats{Boxes: len(d.Boxes), Arrows: len(d.Arrows), Warnings: len(d.Warnings)}
	}
	hooks.OnBuildComplete(ctx, in.Name, stats, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return d, nil
}

// RenderWithCacheInfo renders d in every requested format, consulting the
// cache per format. The bool reports that every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *layout.Diagram, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, d, opts)
	return artifacts, hit, err
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, d *layout.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, d *layout.Diagram, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	data, err := sink.RenderJSON(d)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	hash := cache.Hash(data)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		data, err := RenderFormat(ctx, d, format, opts)
		if err != nil {
			err = fmt.Errorf("render %s: %w", format, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, "", false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "err", err)
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, hash, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
