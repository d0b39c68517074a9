// Package database implements the Postgres outstream: realizations are
// appended to a table as jsonb payloads, one row per record.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"

	"github.com/outflux/outflux/internal/telem"
	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/outstream"
	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/source"
)

// Type is the configuration tag this entity is registered under.
const Type = "Database"

type Options struct {
	Source   string
	Table    string
	Host     string
	Port     int
	Database string
	User     string
}

var _ outstream.Entity = &Database{}

type Database struct {
	outstream.Base

	opts Options
	set  source.DataSet
	conn *pgx.Conn
}

func New(logger kitlog.Logger) *Database {
	return &Database{Base: outstream.NewBase(logger, Type)}
}

func (d *Database) InputSpec() *inputspec.Spec {
	return d.Base.InputSpec().
		AddChild(inputspec.New("source", "name of the data source to store").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("table", "target table, created when missing").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("host", "Postgres host").WithContent(inputspec.ContentString)).
		AddChild(inputspec.New("port", "Postgres port").WithContent(inputspec.ContentInt)).
		AddChild(inputspec.New("database", "Postgres database name").WithContent(inputspec.ContentString)).
		AddChild(inputspec.New("user", "Postgres user").WithContent(inputspec.ContentString))
}

func (d *Database) HandleInput(in *inputspec.Input) error {
	if err := d.Base.HandleInput(in); err != nil {
		return err
	}

	d.opts.Source = in.Child("source").Value()
	d.opts.Table = in.Child("table").Value()
	d.opts.Host = in.ChildValue("host", "127.0.0.1")
	d.opts.Database = in.ChildValue("database", "postgres")
	d.opts.User = in.ChildValue("user", "postgres")

	d.opts.Port = 5432
	if port := in.Child("port"); port != nil {
		var err error
		if d.opts.Port, err = port.Int(); err != nil {
			return err
		}
	}

	return nil
}

// Initialize connects and ensures the target table exists. We render a
// connection string for our overrides and rely on ParseConfig to identify
// additional Postgres parameters from libpq compatible environment
// variables.
func (d *Database) Initialize(ctx context.Context, sources *source.Registry) error {
	set, err := sources.Get(d.opts.Source)
	if err != nil {
		return err
	}
	d.set = set

	cfg, err := pgx.ParseConfig(fmt.Sprintf("host=%s port=%d database=%s user=%s",
		d.opts.Host, d.opts.Port, d.opts.Database, d.opts.User))
	if err != nil {
		return errors.Wrap(err, "invalid database configuration")
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to connect to Postgres")
	}
	d.conn = conn

	query := fmt.Sprintf(`
	create table if not exists %s (
		produced_at timestamptz not null,
		source text not null,
		seq bigint not null,
		payload jsonb not null
	);`, tableIdentifier(d.opts.Table))

	if _, err := conn.Exec(ctx, query); err != nil {
		return errors.Wrapf(err, "failed to ensure table %s", d.opts.Table)
	}

	return nil
}

// AddOutput streams the source and appends every record in a single batch.
func (d *Database) AddOutput(ctx context.Context) error {
	ctx, span, logger := telem.StartSpan(ctx, "pkg/outstream/database.Database.AddOutput()")
	defer span.End()

	entries, err := d.set.Stream(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to stream source")
	}

	insert := fmt.Sprintf(
		"insert into %s (produced_at, source, seq, payload) values ($1, $2, $3, $4);",
		tableIdentifier(d.opts.Table))

	batch := &pgx.Batch{}
	for envelope := range entries {
		entry, ok := envelope.Unwrap().(*record.Record)
		if !ok {
			continue
		}

		payload, err := json.Marshal(entry.Values)
		if err != nil {
			return errors.Wrap(err, "failed to marshal record")
		}

		batch.Queue(insert, entry.Timestamp, entry.Source, entry.Seq, payload)
	}

	if err := d.conn.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "failed to insert into %s", d.opts.Table)
	}

	logger.Log("event", "records_inserted", "outstream", d.Name(), "table", d.opts.Table, "count", batch.Len())
	return nil
}

func (d *Database) InitParams() map[string]string {
	return map[string]string{
		"source":   d.opts.Source,
		"table":    d.opts.Table,
		"host":     d.opts.Host,
		"port":     fmt.Sprintf("%d", d.opts.Port),
		"database": d.opts.Database,
		"user":     d.opts.User,
	}
}

// Close releases the connection opened at initialization.
func (d *Database) Close() error {
	if d.conn == nil {
		return nil
	}

	return d.conn.Close(context.Background())
}

func tableIdentifier(table string) string {
	return pgx.Identifier{table}.Sanitize()
}
