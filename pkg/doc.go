// Package pkg provides the libraries behind instrumap relationship diagrams.
//
// # Overview
//
// Instrumap draws an instrument as a vertical column of component boxes and
// routes the relationships between components as arrows in lanes beside the
// column. The pkg directory is organized into these areas:
//
//  1. [instrument] - Document loading and component accessors
//  2. [diagram] - Relationship extraction, lane allocation, layout and sinks
//  3. [pipeline] - Orchestration (load → build → render) with caching
//  4. [cache], [store] - Artifact cache and diagram store backends
//  5. [config], [errors], [observability], [fonts], [buildinfo] - Shared infrastructure
//
// # Architecture
//
//	Instrument document (YAML/JSON)
//	         ↓
//	    [instrument] package (components, categories, intensity)
//	         ↓
//	    [diagram/extract] package (one connection list per kind)
//	         ↓
//	    [diagram/connect] package (greedy lane allocation)
//	         ↓
//	    [diagram/layout] package (boxes, canvas, arrow routes)
//	         ↓
//	    [diagram/sink] package (SVG/PNG/PDF/JSON/DOT)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, source, pipeline.Options{
//	    Formats: []string{"svg"},
//	    Popups:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("instrument.svg", result.Artifacts["svg"], 0o644)
package pkg
