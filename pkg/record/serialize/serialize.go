// Serializers turn headers and records into the line-oriented formats the
// file printer writes. Register fixes the column order for everything that
// follows, so a serializer is good for exactly one stream.
package serialize

import (
	"github.com/outflux/outflux/pkg/record"
)

// Serializer defines the required interface for all record serializers.
type Serializer interface {
	Register(*record.Header) []byte
	Marshal(*record.Record) ([]byte, error)
}

// New returns the serializer for a format name. The caller validates format
// names up front, so an unknown one is a programming error.
func New(format string) Serializer {
	switch format {
	case "csv":
		return &CSV{}
	case "json":
		return &JSON{Pretty: false}
	}

	panic("unknown serializer format: " + format)
}

// Known reports whether a format name has a serializer.
func Known(format string) bool {
	return format == "csv" || format == "json"
}
