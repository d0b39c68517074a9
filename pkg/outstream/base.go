package outstream

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/source"
)

// Base carries the state every entity shares and implements the contract
// with defaults: Initialize and AddOutput do nothing, InitParams is empty.
// Embedders override what they need and call up for the rest.
type Base struct {
	name     string
	typ      string
	printTag string
	logger   kitlog.Logger
}

func NewBase(logger kitlog.Logger, typ string) Base {
	return Base{typ: typ, printTag: "OutStream", logger: logger}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Type() string {
	return b.typ
}

// PrintTag is the label used when logging on behalf of the entity.
func (b *Base) PrintTag() string {
	return b.printTag
}

// Logger returns the entity's logger, decorated with its identity once the
// name is known.
func (b *Base) Logger() kitlog.Logger {
	return b.logger
}

// InputSpec returns the configuration surface shared by all outstreams:
// a mandatory name attribute and an optional verbosity. Embedders extend
// the returned spec with their own children.
func (b *Base) InputSpec() *inputspec.Spec {
	return inputspec.New(b.typ, "an output-producing entity").
		AddParam(inputspec.Param{Name: "name", Description: "unique entity name", Required: true}).
		AddParam(inputspec.Param{Name: "verbosity", Description: "logging verbosity for this entity", Default: "all"})
}

// HandleInput consumes the fields the base owns. Embedders call this before
// reading their own.
func (b *Base) HandleInput(in *inputspec.Input) error {
	name, _ := in.Param("name")
	b.name = name
	b.logger = kitlog.With(b.logger, "outstream", b.name, "type", b.typ)

	return nil
}

func (b *Base) Initialize(ctx context.Context, sources *source.Registry) error {
	return nil
}

func (b *Base) AddOutput(ctx context.Context) error {
	return nil
}

func (b *Base) InitParams() map[string]string {
	return map[string]string{}
}
