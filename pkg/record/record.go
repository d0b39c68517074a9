// Package record defines the entries flowing from data sources into
// outstreams: a Header announcing the source and its variable order, followed
// by Records carrying one realization each. Serializers for on-disk formats
// live in record/serialize.
package record

import "time"

// Stream is a channel of entries. A well-formed stream carries exactly one
// header entry before any records, and is closed by the producer when the
// source is exhausted.
type Stream chan Entry

// Entry is a poor-mans sum type for stream entries.
type Entry struct {
	*Header
	*Record
}

func (e Entry) Unwrap() interface{} {
	if e.Header != nil {
		return e.Header
	} else if e.Record != nil {
		return e.Record
	}

	panic("entry has no content")
}

// Header announces the variables a source produces, in column order.
type Header struct {
	Source    string   `json:"source"`
	Variables []string `json:"variables"`
}

// Record is a single realization: one value per variable. Values hold Golang
// native types (float64 for anything numeric, string otherwise); a variable
// absent from the map is serialized as empty.
type Record struct {
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Seq       int                    `json:"seq"`
	Values    map[string]interface{} `json:"values"`
}
