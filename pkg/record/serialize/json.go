package serialize

import (
	"encoding/json"

	"github.com/outflux/outflux/pkg/record"
)

var _ Serializer = &JSON{}

type JSON struct {
	Pretty bool // whether to pretty-print the output
}

func (s *JSON) Register(header *record.Header) []byte {
	bytes, err := json.Marshal(header)
	if err != nil {
		panic("could not marshal json header, this should never happen")
	}

	return bytes
}

func (s *JSON) Marshal(r *record.Record) ([]byte, error) {
	if s.Pretty {
		return json.MarshalIndent(r, "", "  ")
	}

	return json.Marshal(r)
}
