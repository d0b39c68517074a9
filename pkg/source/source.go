// Package source provides the named data sources outstreams read from. A
// Registry of sources is handed to every outstream at initialization; the
// outstream resolves the ones it was configured with and streams their
// records when producing an output.
package source

import (
	"context"
	"sort"

	"github.com/outflux/outflux/pkg/record"
	"github.com/pkg/errors"
)

// DataSet is a named producer of records. Stream yields a header entry
// followed by record entries and closes the channel when the data runs out;
// the context cancels a consumer that stops early.
type DataSet interface {
	Name() string
	Header() record.Header
	Stream(ctx context.Context) (record.Stream, error)
}

// Registry holds the run-time entities available to outstreams, keyed by
// name.
type Registry struct {
	sets map[string]DataSet
}

func NewRegistry(sets ...DataSet) (*Registry, error) {
	registry := &Registry{sets: map[string]DataSet{}}
	for _, set := range sets {
		if err := registry.Add(set); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Add registers a source, rejecting duplicate names.
func (r *Registry) Add(set DataSet) error {
	if _, ok := r.sets[set.Name()]; ok {
		return errors.Errorf("duplicate source name: %s", set.Name())
	}

	r.sets[set.Name()] = set
	return nil
}

// Get resolves a source by name. Absence is an explicit error, as it means an
// outstream references a source the configuration never declared.
func (r *Registry) Get(name string) (DataSet, error) {
	set, ok := r.sets[name]
	if !ok {
		return nil, errors.Errorf("no such source: %s (have: %v)", name, r.Names())
	}

	return set, nil
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	names := []string{}
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// stream fans a header and records out over a fresh channel, respecting
// cancellation.
func stream(ctx context.Context, header record.Header, records []record.Record) record.Stream {
	out := make(record.Stream)

	go func() {
		defer close(out)

		entries := []record.Entry{{Header: &header}}
		for idx := range records {
			entries = append(entries, record.Entry{Record: &records[idx]})
		}

		for _, entry := range entries {
			select {
			case out <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
