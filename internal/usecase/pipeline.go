package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/domain"
)

// DefaultConcurrency is deliberately conservative to respect upstream rate limits
const DefaultConcurrency = 2

// PipelineConfig holds configuration for the pipeline coordinator
type PipelineConfig struct {
	Concurrency int
}

// Pipeline drives each input through classify -> resolve -> fetch -> extract
// and collects per-row outcomes. Rows are independent: a failure in one row
// never blocks or alters another, and the output sequence preserves input
// order regardless of worker completion order.
type Pipeline struct {
	source      domain.ListingSource
	resolver    *Resolver
	concurrency int
}

// NewPipeline creates a pipeline coordinator. A negative concurrency degree
// is the one configuration error that aborts the whole run.
func NewPipeline(source domain.ListingSource, resolver *Resolver, config PipelineConfig) (*Pipeline, error) {
	concurrency := config.Concurrency
	if concurrency < 0 {
		return nil, fmt.Errorf("invalid concurrency degree: %d", concurrency)
	}
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}

	return &Pipeline{
		source:      source,
		resolver:    resolver,
		concurrency: concurrency,
	}, nil
}

// Run processes every input concurrently through a bounded worker pool and
// returns one outcome per input, in input order. Cancelling ctx stops new
// work; rows already in flight fail gracefully into their own outcome.
func (p *Pipeline) Run(ctx context.Context, inputs []string) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, raw := range inputs {
		i, raw := i, raw
		g.Go(func() error {
			outcomes[i] = p.processRow(ctx, raw)
			// Row failures are row-scoped; never cancel the group.
			return nil
		})
	}

	// Workers only ever return nil.
	_ = g.Wait()

	return outcomes
}

// processRow runs one input through the four stages, short-circuiting on the
// first failure
func (p *Pipeline) processRow(ctx context.Context, raw string) domain.Outcome {
	outcome := domain.Outcome{Input: raw}

	if err := ctx.Err(); err != nil {
		outcome.Failure = domain.NewFailure(mapContextError(err), raw)
		return outcome
	}

	key, err := Classify(raw)
	if err != nil {
		outcome.Failure = domain.NewFailure(err, raw)
		return outcome
	}

	ref, err := p.resolver.Resolve(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("input", raw).Msg("resolution failed")
		outcome.Failure = domain.NewFailure(err, raw)
		return outcome
	}

	payload, err := p.source.GetListingByID(ctx, ref.ZPID)
	if err != nil {
		log.Warn().Err(err).Str("zpid", ref.ZPID).Msg("fetch failed")
		outcome.Failure = domain.NewFailure(err, raw)
		return outcome
	}

	if payload.URL == "" {
		payload.URL = ref.URL
	}

	record, dropped, err := Extract(payload)
	if err != nil {
		log.Warn().Err(err).Str("zpid", ref.ZPID).Msg("extraction failed")
		outcome.Failure = domain.NewFailure(err, raw)
		return outcome
	}

	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Str("zpid", ref.ZPID).Msg("dropped unparseable price history entries")
	}

	outcome.Record = record
	outcome.DroppedPriceEvents = dropped
	return outcome
}

// mapContextError folds context termination into the fetch error taxonomy
func mapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
}
