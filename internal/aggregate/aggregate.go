// Package aggregate runs the read-side count queries behind every paginated view:
// batches of independent counts, per-record derived counts and page totals.
// All queries of one call run concurrently under a fixed worker limit and a per-query
// timeout; the first failure fails the whole call and no partial result is returned.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName            = "github.com/maxviazov/community-hub-service/internal/aggregate"
	defaultMaxConcurrency = 8
	defaultQueryTimeout   = 5 * time.Second
)

// ErrDuplicateLabel is returned when a batch names the same label twice.
var ErrDuplicateLabel = errors.New("duplicate count label")

// Counter is the storage capability the aggregator needs: count the rows of a
// collection matching filter. A nil filter counts the whole collection.
type Counter interface {
	Count(ctx context.Context, collection string, filter exp.Expression) (int64, error)
}

// Window restricts a count to rows whose Field is at or after now-Trailing.
// A zero Trailing means "from now on".
type Window struct {
	Field    string
	Trailing time.Duration
}

// Since builds a trailing time window on field.
func Since(field string, trailing time.Duration) *Window {
	return &Window{Field: field, Trailing: trailing}
}

// CountQuery is one labelled count against a collection.
type CountQuery struct {
	Label      string
	Collection string
	Filter     exp.Expression
	Window     *Window
}

// Options tunes the fan-out. Zero values fall back to sane defaults.
type Options struct {
	MaxConcurrency int
	QueryTimeout   time.Duration
	Now            func() time.Time
}

// Aggregator executes count batches against a Counter.
// It holds no per-call state and is safe for concurrent use.
type Aggregator struct {
	counter Counter
	limit   int
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
	tracer  trace.Tracer
}

func New(counter Counter, opts Options, logger zerolog.Logger) *Aggregator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		counter: counter,
		limit:   opts.MaxConcurrency,
		timeout: opts.QueryTimeout,
		now:     opts.Now,
		log:     logger.With().Str("module", "aggregate").Logger(),
		tracer:  otel.Tracer(tracerName),
	}
}

// Counts runs every query concurrently and returns one entry per label.
// Time windows are resolved against a single "now" captured at call time, so all
// windowed counts of the batch agree with each other.
func (a *Aggregator) Counts(ctx context.Context, queries ...CountQuery) (map[string]int64, error) {
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		if _, dup := seen[q.Label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, q.Label)
		}
		seen[q.Label] = struct{}{}
	}

	values, err := a.run(ctx, "aggregate.counts", queries)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(queries))
	for i, q := range queries {
		out[q.Label] = values[i]
	}
	return out, nil
}

// Count runs a single query with the same timeout and error semantics as a batch.
func (a *Aggregator) Count(ctx context.Context, q CountQuery) (int64, error) {
	values, err := a.run(ctx, "aggregate.count", []CountQuery{q})
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// run executes queries behind a join barrier; values[i] belongs to queries[i].
func (a *Aggregator) run(ctx context.Context, spanName string, queries []CountQuery) ([]int64, error) {
	if len(queries) == 0 {
		return []int64{}, nil
	}

	ctx, span := a.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.Int("aggregate.queries", len(queries))))
	defer span.End()

	start := time.Now()
	now := a.now()
	values := make([]int64, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, q := range queries {
		g.Go(func() error {
			n, err := a.count(gctx, now, q)
			if err != nil {
				return fmt.Errorf("count %s in %s: %w", q.Label, q.Collection, err)
			}
			values[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return nil, err
	}

	a.log.Debug().Int("queries", len(queries)).Dur("took", time.Since(start)).Msg("count batch done")
	return values, nil
}

func (a *Aggregator) count(ctx context.Context, now time.Time, q CountQuery) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.counter.Count(ctx, q.Collection, resolveFilter(now, q))
}

func resolveFilter(now time.Time, q CountQuery) exp.Expression {
	if q.Window == nil {
		return q.Filter
	}
	bound := goqu.C(q.Window.Field).Gte(now.Add(-q.Window.Trailing))
	if q.Filter == nil {
		return bound
	}
	return goqu.And(q.Filter, bound)
}
