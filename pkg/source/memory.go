package source

import (
	"context"
	"time"

	"github.com/outflux/outflux/pkg/record"
)

var _ DataSet = &Memory{}

// Memory is an in-memory data set, built programmatically. It backs dry runs
// and tests, and anything else that produces realizations without a file.
type Memory struct {
	name      string
	variables []string
	records   []record.Record
}

func NewMemory(name string, variables []string) *Memory {
	return &Memory{name: name, variables: append([]string{}, variables...)}
}

// Add appends one realization, stamping it with the current time and the
// next sequence number.
func (m *Memory) Add(values map[string]interface{}) *Memory {
	m.records = append(m.records, record.Record{
		Timestamp: time.Now(),
		Source:    m.name,
		Seq:       len(m.records),
		Values:    values,
	})

	return m
}

func (m *Memory) Name() string {
	return m.name
}

func (m *Memory) Header() record.Header {
	return record.Header{Source: m.name, Variables: append([]string{}, m.variables...)}
}

func (m *Memory) Stream(ctx context.Context) (record.Stream, error) {
	return stream(ctx, m.Header(), m.records), nil
}
