// Package outstream defines the contract for output-producing entities: a
// named, typed object built from an XML configuration node, initialized
// against the run's data sources, and asked to produce one artifact per
// AddOutput call. Concrete implementations (file printers, plots, database
// writers) live in subpackages and embed Base for the default surface.
package outstream

import (
	"context"

	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/source"
)

// Entity is the polymorphic surface every outstream implements.
//
// The lifecycle is construct, HandleInput (consume the validated
// configuration), Initialize (bind against the run-time sources), then
// AddOutput once per artifact. InitParams exposes the immutable
// configuration for diagnostic display and must not include anything that
// changes during a run.
type Entity interface {
	Name() string
	Type() string
	InputSpec() *inputspec.Spec
	HandleInput(in *inputspec.Input) error
	Initialize(ctx context.Context, sources *source.Registry) error
	AddOutput(ctx context.Context) error
	InitParams() map[string]string
}
