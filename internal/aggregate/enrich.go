package aggregate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/community-hub-service/internal/repository"
)

// Enriched pairs a record with a count derived from it at read time.
type Enriched[P any] struct {
	Record P
	Count  int64
}

// Enrich runs one derived count per record and returns the pairs in input order.
// Empty input issues no queries; any failure fails the whole enrichment.
func Enrich[P any](ctx context.Context, a *Aggregator, records []P, derive func(P) CountQuery) ([]Enriched[P], error) {
	if len(records) == 0 {
		return []Enriched[P]{}, nil
	}
	queries := make([]CountQuery, len(records))
	for i, rec := range records {
		queries[i] = derive(rec)
	}
	counts, err := a.run(ctx, "aggregate.enrich", queries)
	if err != nil {
		return nil, err
	}
	out := make([]Enriched[P], len(records))
	for i, rec := range records {
		out[i] = Enriched[P]{Record: rec, Count: counts[i]}
	}
	return out, nil
}

// Paged fetches one window of items and the total row count concurrently and assembles
// the page result. fetch is bounded by the same per-query timeout as the count.
func Paged[T any](ctx context.Context, a *Aggregator, p repository.Page, total CountQuery, fetch func(ctx context.Context) ([]T, error)) (repository.PageResult[T], error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.paged", trace.WithAttributes(attribute.String("aggregate.collection", total.Collection)))
	defer span.End()

	var (
		items []T
		n     int64
	)
	now := a.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.timeout)
		defer cancel()
		var err error
		if items, err = fetch(fctx); err != nil {
			return fmt.Errorf("fetch page of %s: %w", total.Collection, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if n, err = a.count(gctx, now, total); err != nil {
			return fmt.Errorf("count %s in %s: %w", total.Label, total.Collection, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "paged read failed")
		return repository.PageResult[T]{}, err
	}

	a.log.Debug().Str("collection", total.Collection).Int64("total", n).Int("items", len(items)).Msg("page assembled")
	return repository.NewPageResult(p, items, n), nil
}
