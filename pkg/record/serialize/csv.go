package serialize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/outflux/outflux/pkg/record"
	"github.com/pkg/errors"
)

var _ Serializer = &CSV{}

// CSV writes one record per line, with the column order fixed by the
// registered header.
type CSV struct {
	variables []string
}

func (s *CSV) Register(header *record.Header) []byte {
	s.variables = append([]string{}, header.Variables...)

	return writeRow(s.variables)
}

func (s *CSV) Marshal(r *record.Record) ([]byte, error) {
	if s.variables == nil {
		return nil, errors.New("no header registered")
	}

	fields := make([]string, len(s.variables))
	for idx, variable := range s.variables {
		fields[idx] = formatValue(r.Values[variable])
	}

	return writeRow(fields), nil
}

func writeRow(fields []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(fields)
	w.Flush()

	return bytes.TrimRight(buf.Bytes(), "\n")
}

func formatValue(value interface{}) string {
	switch value := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
