// Package print implements the file-printing outstream: it streams a data
// source and writes the selected variables as a CSV or JSON artifact.
package print

import (
	"bytes"
	"context"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/outflux/outflux/internal/telem"
	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/outstream"
	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/record/serialize"
	"github.com/outflux/outflux/pkg/source"
	"github.com/outflux/outflux/pkg/util"
)

// Type is the configuration tag this entity is registered under.
const Type = "Print"

type Options struct {
	Source   string   // name of the data source to stream
	What     []string // variable selection, all when empty
	Format   string   // csv or json
	Filename string   // filename template
}

var _ outstream.Entity = &Print{}

type Print struct {
	outstream.Base

	opts     Options
	filename *template.Template
	set      source.DataSet
	selected []string
}

func New(logger kitlog.Logger) *Print {
	return &Print{Base: outstream.NewBase(logger, Type)}
}

func (p *Print) InputSpec() *inputspec.Spec {
	return p.Base.InputSpec().
		AddChild(inputspec.New("source", "name of the data source to print").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("what", "comma-separated variables to print, all when omitted").WithContent(inputspec.ContentStringList)).
		AddChild(inputspec.New("format", "output format, csv or json").WithContent(inputspec.ContentString)).
		AddChild(inputspec.New("filename", "filename template, {{ .Name }}.{{ .Format }} when omitted").WithContent(inputspec.ContentString))
}

func (p *Print) HandleInput(in *inputspec.Input) error {
	if err := p.Base.HandleInput(in); err != nil {
		return err
	}

	p.opts.Source = in.Child("source").Value()
	if what := in.Child("what"); what != nil {
		p.opts.What = what.List()
	}

	p.opts.Format = in.ChildValue("format", "csv")
	if !serialize.Known(p.opts.Format) {
		return errors.Errorf("unsupported format: %s", p.opts.Format)
	}

	p.opts.Filename = in.ChildValue("filename", p.Name()+"."+p.opts.Format)

	var err error
	p.filename, err = template.New("filename").Funcs(sprig.TxtFuncMap()).Parse(p.opts.Filename)
	if err != nil {
		return errors.Wrapf(err, "invalid filename template: %s", p.opts.Filename)
	}

	return nil
}

// Initialize resolves the source and fixes the variable selection against
// its header, so a bad selection fails the run before anything is written.
func (p *Print) Initialize(ctx context.Context, sources *source.Registry) error {
	set, err := sources.Get(p.opts.Source)
	if err != nil {
		return err
	}

	p.set = set

	header := set.Header()
	if len(p.opts.What) == 0 {
		p.selected = header.Variables
		return nil
	}

	if missing := util.Diff(p.opts.What, header.Variables); len(missing) > 0 {
		return errors.Errorf("source %s has no variables: %s", p.opts.Source, strings.Join(missing, ", "))
	}

	p.selected = p.opts.What
	return nil
}

// AddOutput streams the source into a freshly rendered file. The file is
// rewritten, not appended: each call produces a complete artifact.
func (p *Print) AddOutput(ctx context.Context) error {
	ctx, span, logger := telem.StartSpan(ctx, "pkg/outstream/print.Print.AddOutput()")
	defer span.End()

	filename, err := p.renderFilename(ctx)
	if err != nil {
		return err
	}

	file, err := openFile(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open output file")
	}
	defer closeFile(file)

	entries, err := p.set.Stream(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to stream source")
	}

	serializer := serialize.New(p.opts.Format)
	count := 0
	for envelope := range entries {
		switch entry := envelope.Unwrap().(type) {
		case *record.Header:
			header := &record.Header{Source: entry.Source, Variables: p.selected}
			if _, err := file.Write(append(serializer.Register(header), '\n')); err != nil {
				return errors.Wrap(err, "failed to write header")
			}
		case *record.Record:
			bytes, err := serializer.Marshal(entry)
			if err != nil {
				return errors.Wrap(err, "failed to marshal record")
			}

			if _, err := file.Write(append(bytes, '\n')); err != nil {
				return errors.Wrap(err, "failed to write record")
			}

			count++
		}
	}

	logger.Log("event", "artifact_written", "outstream", p.Name(), "filename", filename, "records", count)
	return nil
}

func (p *Print) InitParams() map[string]string {
	return map[string]string{
		"source":   p.opts.Source,
		"what":     strings.Join(p.opts.What, ","),
		"format":   p.opts.Format,
		"filename": p.opts.Filename,
	}
}

// renderFilename executes the filename template against the run context.
func (p *Print) renderFilename(ctx context.Context) (string, error) {
	data := struct {
		Name   string
		Source string
		Format string
		RunID  string
		Time   time.Time
	}{
		Name:   p.Name(),
		Source: p.opts.Source,
		Format: p.opts.Format,
		RunID:  telem.RunIDFrom(ctx),
		Time:   time.Now(),
	}

	var buf bytes.Buffer
	if err := p.filename.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to render filename template: %s", p.opts.Filename)
	}

	return buf.String(), nil
}

func openFile(path string) (*os.File, error) {
	switch path {
	case "/dev/stdout":
		return os.Stdout, nil
	case "/dev/stderr":
		return os.Stderr, nil
	}

	return os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
}

func closeFile(file *os.File) {
	if file == os.Stdout || file == os.Stderr {
		return
	}

	file.Close()
}
