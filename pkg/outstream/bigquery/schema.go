package bigquery

import (
	"regexp"
	"sort"
	"strings"

	bq "cloud.google.com/go/bigquery"

	"github.com/outflux/outflux/pkg/record"
)

// buildSchema generates the table schema for a source header. Every variable
// becomes a nullable FLOAT column alongside the bookkeeping fields:
//
//	{
//	   produced_at: "2020-02-15 19:33:32+00:00",
//	   source: "samples",
//	   seq: 12,
//	   time: 0.5,
//	   ...,
//	}
//
// Variables are sorted so that repeated runs against the same source always
// produce the same schema. The returned slice holds the original variable
// names in column order, for pairing rows against sanitized field names.
func buildSchema(variables []string) (bq.Schema, []string) {
	sorted := make([]string, len(variables))
	copy(sorted, variables)
	sort.Strings(sorted)

	schema := bq.Schema{
		&bq.FieldSchema{
			Name:        "produced_at",
			Type:        bq.TimestampFieldType,
			Description: "Timestamp at which the record was produced",
			Required:    true,
		},
		&bq.FieldSchema{
			Name:        "source",
			Type:        bq.StringFieldType,
			Description: "Name of the data source that produced the record",
			Required:    true,
		},
		&bq.FieldSchema{
			Name:        "seq",
			Type:        bq.IntegerFieldType,
			Description: "Position of the record within its stream",
			Required:    true,
		},
	}

	for _, variable := range sorted {
		schema = append(schema, &bq.FieldSchema{
			Name:        fieldName(variable),
			Type:        bq.FloatFieldType,
			Description: "Sampled value of " + variable,
			Required:    false,
		})
	}

	return schema, sorted
}

// buildRow pairs a record against the column order produced by buildSchema.
// Non-numeric values insert as NULL, matching the FLOAT column type.
func buildRow(entry *record.Record, variables []string) []bq.Value {
	row := []bq.Value{entry.Timestamp, entry.Source, entry.Seq}
	for _, variable := range variables {
		if value, ok := entry.Values[variable].(float64); ok {
			row = append(row, value)
		} else {
			row = append(row, nil)
		}
	}

	return row
}

var fieldIllegal = regexp.MustCompile(`[^A-Za-z0-9_]`)

// fieldName coerces a variable name into a legal BigQuery column name.
func fieldName(variable string) string {
	name := fieldIllegal.ReplaceAllString(variable, "_")
	if name == "" || !strings.ContainsAny(name[0:1], "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_") {
		name = "_" + name
	}

	return name
}
