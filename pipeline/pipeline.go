// Package pipeline orchestrates itinerary generation: scene analysis,
// visual identity, the skeleton outline, and concurrent per-day workers,
// reported over a tagged message stream.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/insight"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/places"
	"github.com/tripweave/tripweave/scene"
	"github.com/tripweave/tripweave/trip"
)

// TextGenerator is the slice of the llm client the pipeline needs.
type TextGenerator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Pipeline wires the generation stages to their collaborators. Safe for
// concurrent use; each Run is independent.
type Pipeline struct {
	generator  TextGenerator
	classifier *scene.Classifier
	insights   *insight.Collector
	places     places.Lookup
	images     images.Fetcher

	temperature    *float64
	dayConcurrency int
	imagesPerDay   int

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTemperature sets the sampling temperature for creative stages.
func WithTemperature(t float64) Option {
	return func(p *Pipeline) { p.temperature = &t }
}

// WithDayConcurrency bounds how many day workers run at once.
func WithDayConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.dayConcurrency = n
		}
	}
}

// WithImagesPerDay sets how many images each day requests.
func WithImagesPerDay(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.imagesPerDay = n
		}
	}
}

// WithInsights attaches a reference-link collector. Without one,
// reference links on requests are ignored.
func WithInsights(c *insight.Collector) Option {
	return func(p *Pipeline) { p.insights = c }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New builds a Pipeline around its collaborators.
func New(generator TextGenerator, classifier *scene.Classifier, placeLookup places.Lookup, imageFetcher images.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator:      generator,
		classifier:     classifier,
		places:         placeLookup,
		images:         imageFetcher,
		dayConcurrency: 3,
		imagesPerDay:   3,
		logger:         slog.Default(),
		metrics:        NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Outcome is the terminal state of one Run.
type Outcome struct {
	Skeleton *trip.Skeleton
	Days     []trip.DayResult
	Analysis trip.SceneAnalysis
	Insight  insight.Result
	Err      error
}

// Run executes the full generation pipeline for one request and streams
// progress on the returned channel. The channel is closed after a
// terminal done or error message. The returned Outcome pointer is only
// valid to read after the channel closes.
func (p *Pipeline) Run(ctx context.Context, req trip.Request) (<-chan Message, *Outcome) {
	out := make(chan Message, 16)
	outcome := &Outcome{}

	go func() {
		defer close(out)
		p.metrics.inFlight.Inc()
		defer p.metrics.inFlight.Dec()

		if err := p.run(ctx, req, out, outcome); err != nil {
			outcome.Err = err
			p.metrics.generations.WithLabelValues("error").Inc()
			out <- errorMsg(err)
			return
		}
		p.metrics.generations.WithLabelValues("success").Inc()
		out <- doneMsg()
	}()

	return out, outcome
}

func (p *Pipeline) run(ctx context.Context, req trip.Request, out chan<- Message, outcome *Outcome) error {
	out <- progressMsg(PhaseAnalyzing, 0, 0)

	if p.insights != nil && (len(req.ReferenceLinks) > 0 || len(req.MediaNotes) > 0) {
		outcome.Insight = p.insights.Collect(ctx, req.ReferenceLinks, req.MediaNotes)
	}

	started := time.Now()
	outcome.Analysis = p.classifier.Classify(ctx, req.Prompt, outcome.Insight.Summary)
	p.metrics.observeStage("scene", started)
	out <- progressMsg(PhaseAnalyzing, 10, 0)

	started = time.Now()
	id, err := p.GenerateIdentity(ctx, req, outcome.Analysis, outcome.Insight.Summary)
	p.metrics.observeStage("identity", started)
	if err != nil {
		return err
	}
	out <- progressMsg(PhaseIdentity, 25, 0)

	started = time.Now()
	skeleton, err := p.GenerateSkeleton(ctx, id, outcome.Analysis, req, outcome.Insight.Summary)
	p.metrics.observeStage("skeleton", started)
	if err != nil {
		return err
	}
	outcome.Skeleton = skeleton
	out <- skeletonMsg(skeleton)
	out <- progressMsg(PhaseSkeleton, 40, 0)

	started = time.Now()
	total := len(skeleton.Days)
	var completed atomic.Int64
	// Day progress spans 40..95; the final 5 points belong to assembly.
	outcome.Days = p.GenerateDays(ctx, skeleton, func(res trip.DayResult) {
		done := int(completed.Add(1))
		out <- fragmentMsg(res.Markup)
		out <- progressMsg(PhaseDays, 40+done*55/total, res.Day)
	})
	p.metrics.observeStage("days", started)

	out <- progressMsg(PhaseAssembly, 100, 0)
	return nil
}
