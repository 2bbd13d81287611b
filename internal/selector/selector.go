// Package selector runs every test order generator against one graph,
// scores the results and picks one.
//
// Generators run concurrently on the scheduler's worker pool. A generator
// that fails is recorded in the report and the others carry on; only when
// none of them succeeds does Compare return an error.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"itorder/internal"
	"itorder/internal/config"
	"itorder/internal/generator"
	"itorder/internal/graph"
	"itorder/internal/scheduler"
)

var ErrNoViableOrder = errors.New("no generator produced a test order")

// NoViableOrderError carries the failure of every generator.
type NoViableOrderError struct {
	Failures map[string]error
}

func (e *NoViableOrderError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return ErrNoViableOrder.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *NoViableOrderError) Unwrap() error { return ErrNoViableOrder }

// Generator is implemented by every test order strategy.
type Generator interface {
	Name() string
	Generate(ctx context.Context, g *graph.DependencyGraph) (*internal.TestOrderResult, error)
}

// Preference breaks score ties: earlier names win.
var Preference = []string{generator.NameBLW, generator.NameTJJM, generator.NameTD}

type Selector struct {
	cfg        config.Config
	logger     *slog.Logger
	generators []Generator
}

type Option func(*Selector)

func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// WithGenerators replaces the default TD, TJJM and BLW generators.
func WithGenerators(gens ...Generator) Option {
	return func(s *Selector) { s.generators = gens }
}

func New(cfg config.Config, opts ...Option) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Selector{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.generators == nil {
		s.generators = []Generator{
			generator.NewTaiDaniels(s.logger),
			generator.NewTJJM(s.logger),
			generator.NewBLW(s.logger),
		}
	}
	return s, nil
}

// Compare runs all generators on g and returns the comparison report.
func (s *Selector) Compare(ctx context.Context, g *graph.DependencyGraph) (*internal.ComparisonReport, error) {
	ctx, span := otel.Tracer("itorder/selector").Start(ctx, "selector.Compare")
	defer span.End()
	span.SetAttributes(
		attribute.Int("components", g.Len()),
		attribute.Int("relationships", len(g.Relationships())),
	)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	jobs := make([]scheduler.Job, 0, len(s.generators))
	for _, gen := range s.generators {
		jobs = append(jobs, scheduler.Job{
			Name: gen.Name(),
			Run:  func(ctx context.Context) (*internal.TestOrderResult, error) { return gen.Generate(ctx, g) },
		})
	}
	outcomes := scheduler.New(s.cfg.MaxParallel).Run(ctx, jobs)

	report := &internal.ComparisonReport{
		Results:    map[string]*internal.TestOrderResult{},
		Scores:     map[string]float64{},
		Clustering: map[string]float64{},
	}
	ids := g.IDs()
	failures := map[string]error{}
	for _, o := range outcomes {
		if o.Err == nil {
			if err := internal.ValidateOrder(o.Result.Order, ids); err != nil {
				o.Result, o.Err = nil, fmt.Errorf("%s: %w", o.Name, err)
			}
		}
		observe(o)
		if o.Err != nil {
			failures[o.Name] = o.Err
			s.logger.WarnContext(ctx, "generator failed",
				slog.String("algorithm", o.Name),
				slog.String("error", o.Err.Error()),
			)
			continue
		}
		report.Results[o.Name] = o.Result
	}
	if len(failures) > 0 {
		report.Failures = make(map[string]string, len(failures))
		for name, err := range failures {
			report.Failures[name] = err.Error()
		}
	}
	if len(report.Results) == 0 {
		err := &NoViableOrderError{Failures: failures}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.score(g, report)
	span.SetAttributes(attribute.String("chosen", report.Chosen))
	s.logger.InfoContext(ctx, "test order selected",
		slog.String("algorithm", report.Chosen),
		slog.Float64("score", report.Scores[report.Chosen]),
		slog.Int("succeeded", len(report.Results)),
		slog.Int("failed", len(failures)),
	)
	return report, nil
}
