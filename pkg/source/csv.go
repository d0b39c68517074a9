package source

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/outflux/outflux/pkg/record"
	"github.com/pkg/errors"
)

var _ DataSet = &CSV{}

type CSVOptions struct {
	Name     string
	Filename string
}

// CSV is a data set backed by a CSV file: header row names the variables,
// each following row is one realization. The file is re-read on every Stream
// call, so a re-run picks up changes without rebuilding the source.
type CSV struct {
	logger kitlog.Logger
	opts   CSVOptions
	header record.Header
}

// NewCSV builds the source and reads the file once to validate it and fix
// the header.
func NewCSV(logger kitlog.Logger, opts CSVOptions) (*CSV, error) {
	source := &CSV{
		logger: kitlog.With(logger, "source", opts.Name, "filename", opts.Filename),
		opts:   opts,
	}

	header, _, err := source.read()
	if err != nil {
		return nil, err
	}

	source.header = header
	return source, nil
}

func (c *CSV) Name() string {
	return c.opts.Name
}

// Filename exposes the backing file, for watch mode.
func (c *CSV) Filename() string {
	return c.opts.Filename
}

func (c *CSV) Header() record.Header {
	return c.header
}

func (c *CSV) Stream(ctx context.Context) (record.Stream, error) {
	header, records, err := c.read()
	if err != nil {
		return nil, err
	}

	c.header = header
	c.logger.Log("event", "stream", "records", len(records))

	return stream(ctx, header, records), nil
}

func (c *CSV) read() (record.Header, []record.Record, error) {
	file, err := os.Open(c.opts.Filename)
	if err != nil {
		return record.Header{}, nil, errors.Wrap(err, "failed to open source file")
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return record.Header{}, nil, errors.Wrapf(err, "failed to parse %s", c.opts.Filename)
	}
	if len(rows) == 0 {
		return record.Header{}, nil, errors.Errorf("%s has no header row", c.opts.Filename)
	}

	header := record.Header{Source: c.opts.Name, Variables: rows[0]}

	loaded := time.Now()
	records := make([]record.Record, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		values := map[string]interface{}{}
		for col, variable := range header.Variables {
			values[variable] = parseCell(row[col])
		}

		records = append(records, record.Record{
			Timestamp: loaded,
			Source:    c.opts.Name,
			Seq:       idx,
			Values:    values,
		})
	}

	return header, records, nil
}

// parseCell keeps numbers numeric and everything else as text.
func parseCell(cell string) interface{} {
	if value, err := strconv.ParseFloat(cell, 64); err == nil {
		return value
	}

	return cell
}
