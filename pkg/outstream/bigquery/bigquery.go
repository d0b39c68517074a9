// Package bigquery implements the BigQuery outstream: realizations are
// streamed into a table inside a managed dataset, one row per record.
package bigquery

import (
	"context"

	bq "cloud.google.com/go/bigquery"
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"github.com/outflux/outflux/internal/telem"
	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/outstream"
	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/source"
)

// Type is the configuration tag this entity is registered under.
const Type = "BigQuery"

type Options struct {
	Source    string
	ProjectID string
	Dataset   string
	Table     string
	Location  string
}

var _ outstream.Entity = &BigQuery{}

type BigQuery struct {
	outstream.Base

	opts   Options
	set    source.DataSet
	client *bq.Client
	table  *bq.Table

	schema    bq.Schema
	variables []string
}

func New(logger kitlog.Logger) *BigQuery {
	return &BigQuery{Base: outstream.NewBase(logger, Type)}
}

func (b *BigQuery) InputSpec() *inputspec.Spec {
	return b.Base.InputSpec().
		AddChild(inputspec.New("source", "name of the data source to store").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("project", "Google Project ID").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("dataset", "BigQuery dataset, created when missing").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("table", "target table, created when missing").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("location", "BigQuery dataset location").WithContent(inputspec.ContentString))
}

func (b *BigQuery) HandleInput(in *inputspec.Input) error {
	if err := b.Base.HandleInput(in); err != nil {
		return err
	}

	b.opts.Source = in.Child("source").Value()
	b.opts.ProjectID = in.Child("project").Value()
	b.opts.Dataset = in.Child("dataset").Value()
	b.opts.Table = in.Child("table").Value()
	b.opts.Location = in.ChildValue("location", "EU")

	return nil
}

// Initialize connects to BigQuery, then ensures both the dataset and the
// table exist. The table schema is derived from the source header, so the
// source must be resolvable before we can create anything.
func (b *BigQuery) Initialize(ctx context.Context, sources *source.Registry) error {
	set, err := sources.Get(b.opts.Source)
	if err != nil {
		return err
	}
	b.set = set

	client, err := bq.NewClient(ctx, b.opts.ProjectID)
	if err != nil {
		return errors.Wrap(err, "failed to create BigQuery client")
	}
	b.client = client

	logger := telem.LoggerFrom(ctx,
		"project", b.opts.ProjectID, "dataset", b.opts.Dataset, "table", b.opts.Table)

	dataset := client.Dataset(b.opts.Dataset)
	md, err := dataset.Metadata(ctx)
	if allowNotFound(err) != nil {
		return errors.Wrap(err, "failed to fetch dataset metadata")
	}

	if md == nil {
		logger.Log("event", "dataset.create", "msg", "dataset does not exist, creating")
		md = &bq.DatasetMetadata{
			Name:        b.opts.Dataset,
			Location:    b.opts.Location,
			Description: "Dataset created by outflux",
		}

		if err := dataset.Create(ctx, md); err != nil {
			return errors.Wrap(err, "failed to create dataset")
		}
	}

	b.schema, b.variables = buildSchema(set.Header().Variables)
	b.table = dataset.Table(b.opts.Table)

	tmd, err := b.table.Metadata(ctx)
	if allowNotFound(err) != nil {
		return errors.Wrap(err, "failed to fetch table metadata")
	}

	if tmd == nil {
		logger.Log("event", "table.create", "msg", "table does not exist, creating")
		tmd = &bq.TableMetadata{Name: b.opts.Table, Schema: b.schema}
		if err := b.table.Create(ctx, tmd); err != nil {
			return errors.Wrap(err, "failed to create table")
		}
	}

	return nil
}

// AddOutput streams the source and inserts every record in one Put.
func (b *BigQuery) AddOutput(ctx context.Context) error {
	ctx, span, logger := telem.StartSpan(ctx, "pkg/outstream/bigquery.BigQuery.AddOutput()")
	defer span.End()

	entries, err := b.set.Stream(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to stream source")
	}

	rows := []*bq.ValuesSaver{}
	for envelope := range entries {
		entry, ok := envelope.Unwrap().(*record.Record)
		if !ok {
			continue
		}

		rows = append(rows, &bq.ValuesSaver{Schema: b.schema, Row: buildRow(entry, b.variables)})
	}

	if err := b.table.Inserter().Put(ctx, rows); err != nil {
		return errors.Wrapf(err, "failed to insert into %s", b.opts.Table)
	}

	logger.Log("event", "records_inserted", "outstream", b.Name(), "table", b.opts.Table, "count", len(rows))
	return nil
}

func (b *BigQuery) InitParams() map[string]string {
	return map[string]string{
		"source":   b.opts.Source,
		"project":  b.opts.ProjectID,
		"dataset":  b.opts.Dataset,
		"table":    b.opts.Table,
		"location": b.opts.Location,
	}
}

// Close releases the client opened at initialization.
func (b *BigQuery) Close() error {
	if b.client == nil {
		return nil
	}

	return b.client.Close()
}

func allowNotFound(err error) error {
	if err, ok := err.(*googleapi.Error); ok && err.Code == 404 {
		return nil
	}

	return err
}
