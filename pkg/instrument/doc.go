// Package instrument defines the read-only component model consumed by the
// diagram builder.
//
// An instrument is an ordered sequence of components. The order is fixed
// before any layout happens and is the only ordering the diagram uses: boxes
// are stacked in declaration order, and "previous" references resolve by
// index arithmetic against it.
//
// # Components
//
// [Component] is a closed interface. Every concrete kind ([Standard],
// [Process], [Material], [Geometry], [Logger], [Conditional], [Master])
// embeds [Base] for the fields shared by all components and adds only the
// material/process fields its role needs, exposed uniformly via
// [Component.Union].
//
// # Loading
//
// [Load] and [LoadFile] decode YAML (or JSON, which is valid YAML) instrument
// documents:
//
//	name: powder_diffractometer
//	categories:
//	  sources: Sources
//	  optics: Neutron optics
//	components:
//	  - name: source
//	    type: Source_simple
//	    category: sources
//	  - name: guide
//	    type: Guide_gravity
//	    category: optics
//	    at: PREVIOUS
//	    group: beamline
//	intensity:
//	  - {component: guide, value: 1.2e6}
package instrument
