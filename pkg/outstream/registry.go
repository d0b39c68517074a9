package outstream

import (
	kitlog "github.com/go-kit/kit/log"
	"github.com/outflux/outflux/pkg/xmltree"
	"github.com/pkg/errors"
)

// Builder constructs an unconfigured entity. Configuration happens in Build,
// via the entity's own input spec.
type Builder func(logger kitlog.Logger) Entity

// Registry maps configuration node tags to entity builders.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

func (r *Registry) Register(tag string, builder Builder) *Registry {
	r.builders[tag] = builder
	return r
}

// Build constructs the entity for a configuration node: look up the builder
// by tag, validate the node against the entity's input spec, and hand the
// parsed input to the entity.
func (r *Registry) Build(logger kitlog.Logger, node *xmltree.Node) (Entity, error) {
	builder, ok := r.builders[node.Tag]
	if !ok {
		return nil, errors.Errorf("unsupported outstream type: %s", node.Tag)
	}

	entity := builder(logger)

	in, err := entity.InputSpec().Parse(node)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s configuration", node.Tag)
	}

	if err := entity.HandleInput(in); err != nil {
		return nil, errors.Wrapf(err, "failed to configure %s", node.Tag)
	}

	return entity, nil
}

// BuildAll constructs an entity per element of the parent node, in document
// order. Comments are skipped, unknown tags are errors.
func (r *Registry) BuildAll(logger kitlog.Logger, parent *xmltree.Node) ([]Entity, error) {
	entities := []Entity{}
	for _, node := range parent.Elements() {
		entity, err := r.Build(logger, node)
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, nil
}
