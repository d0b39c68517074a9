// Package plot implements the plotting outstream: one variable against
// another, rendered to an image file.
package plot

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/outflux/outflux/internal/telem"
	"github.com/outflux/outflux/pkg/inputspec"
	"github.com/outflux/outflux/pkg/outstream"
	"github.com/outflux/outflux/pkg/record"
	"github.com/outflux/outflux/pkg/source"
	"github.com/outflux/outflux/pkg/util"
)

// Type is the configuration tag this entity is registered under.
const Type = "Plot"

type Options struct {
	Source   string
	X        string
	Y        string
	Kind     string // scatter or line
	Title    string
	Filename string // extension selects the image format (png, svg, pdf)
}

var _ outstream.Entity = &Plot{}

type Plot struct {
	outstream.Base

	opts Options
	set  source.DataSet
}

func New(logger kitlog.Logger) *Plot {
	return &Plot{Base: outstream.NewBase(logger, Type)}
}

func (p *Plot) InputSpec() *inputspec.Spec {
	return p.Base.InputSpec().
		AddChild(inputspec.New("source", "name of the data source to plot").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("x", "variable on the horizontal axis").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("y", "variable on the vertical axis").WithContent(inputspec.ContentString).Require()).
		AddChild(inputspec.New("kind", "scatter or line").WithContent(inputspec.ContentString)).
		AddChild(inputspec.New("title", "plot title, entity name when omitted").WithContent(inputspec.ContentString)).
		AddChild(inputspec.New("filename", "image file to write").WithContent(inputspec.ContentString))
}

func (p *Plot) HandleInput(in *inputspec.Input) error {
	if err := p.Base.HandleInput(in); err != nil {
		return err
	}

	p.opts.Source = in.Child("source").Value()
	p.opts.X = in.Child("x").Value()
	p.opts.Y = in.Child("y").Value()
	p.opts.Title = in.ChildValue("title", p.Name())
	p.opts.Filename = in.ChildValue("filename", p.Name()+".png")

	p.opts.Kind = in.ChildValue("kind", "scatter")
	switch p.opts.Kind {
	case "scatter", "line":
	default:
		return errors.Errorf("unsupported plot kind: %s", p.opts.Kind)
	}

	return nil
}

func (p *Plot) Initialize(ctx context.Context, sources *source.Registry) error {
	set, err := sources.Get(p.opts.Source)
	if err != nil {
		return err
	}

	variables := set.Header().Variables
	for _, axis := range []string{p.opts.X, p.opts.Y} {
		if !util.Includes(variables, axis) {
			return errors.Errorf("source %s has no variable: %s", p.opts.Source, axis)
		}
	}

	p.set = set
	return nil
}

// AddOutput streams the source and renders every realization with numeric
// values on both axes. Non-numeric realizations are skipped, not fatal.
func (p *Plot) AddOutput(ctx context.Context) error {
	ctx, span, logger := telem.StartSpan(ctx, "pkg/outstream/plot.Plot.AddOutput()")
	defer span.End()

	entries, err := p.set.Stream(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to stream source")
	}

	points := plotter.XYs{}
	skipped := 0
	for envelope := range entries {
		entry, ok := envelope.Unwrap().(*record.Record)
		if !ok {
			continue
		}

		x, okX := toFloat(entry.Values[p.opts.X])
		y, okY := toFloat(entry.Values[p.opts.Y])
		if !okX || !okY {
			skipped++
			continue
		}

		points = append(points, plotter.XY{X: x, Y: y})
	}

	chart, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "failed to create plot")
	}

	chart.Title.Text = p.opts.Title
	chart.X.Label.Text = p.opts.X
	chart.Y.Label.Text = p.opts.Y

	switch p.opts.Kind {
	case "scatter":
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return errors.Wrap(err, "failed to build scatter")
		}
		chart.Add(scatter)
	case "line":
		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrap(err, "failed to build line")
		}
		chart.Add(line)
	}

	if err := chart.Save(8*vg.Inch, 6*vg.Inch, p.opts.Filename); err != nil {
		return errors.Wrap(err, "failed to save plot")
	}

	logger.Log("event", "artifact_written", "outstream", p.Name(), "filename", p.opts.Filename,
		"points", len(points), "skipped", skipped)
	return nil
}

func (p *Plot) InitParams() map[string]string {
	return map[string]string{
		"source":   p.opts.Source,
		"x":        p.opts.X,
		"y":        p.opts.Y,
		"kind":     p.opts.Kind,
		"title":    p.opts.Title,
		"filename": p.opts.Filename,
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch value := value.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	}

	return 0, false
}
