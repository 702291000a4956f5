// Package resolver links fired weapons to the hits, kills and interceptions
// they caused.
package resolver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/aar/internal/classify"
	"github.com/OCAP2/aar/pkg/core"
)

// Classifier assigns an engagement domain to a weapon and target.
type Classifier interface {
	ClassifyShot(weaponType, category string, target classify.TargetKind) classify.Result
}

// Dependencies are the collaborators of a Resolver. Nil fields get defaults.
type Dependencies struct {
	Classifier Classifier
	Logger     *slog.Logger
}

// Resolver turns an event stream into a ChainSet. It holds no per-run state
// and may be reused.
type Resolver struct {
	opts   Options
	cls    Classifier
	logger *slog.Logger

	// OTEL metrics
	chains    metric.Int64Counter
	anomalies metric.Int64Counter
	duration  metric.Float64Histogram
}

// New validates opts and creates a Resolver.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(opts Options, deps Dependencies) (*Resolver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		opts:   opts,
		cls:    deps.Classifier,
		logger: deps.Logger,
	}
	if r.cls == nil {
		r.cls = classify.Default()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	m := meter()
	var err error
	r.chains, err = m.Int64Counter(
		"resolver.chains",
		metric.WithDescription("Resolved engagement chains"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating chains counter: %w", err)
	}
	r.anomalies, err = m.Int64Counter(
		"resolver.anomalies",
		metric.WithDescription("Data-quality anomalies seen while resolving"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating anomalies counter: %w", err)
	}
	r.duration, err = m.Float64Histogram(
		"resolver.duration",
		metric.WithDescription("Time spent resolving one stream"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return r, nil
}

// Options returns the policy the resolver was built with.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve links every Fired event in events to exactly one chain.
//
// events must be sorted by time. Data-quality problems are absorbed and
// reported through ChainSet.Anomalies; only contract violations and context
// cancellation return an error.
func (r *Resolver) Resolve(ctx context.Context, events []core.Event) (*core.ChainSet, error) {
	start := time.Now()
	if err := validateStream(events); err != nil {
		return nil, err
	}

	a := newArena(events, r.opts.BucketWidth, r.cls)
	st := newState(a, r.opts)
	r.logger.Debug("Arena built",
		"events", len(events), "shots", len(a.shots), "candidates", len(a.pool))

	st.explicitPass()
	st.declaredPass()
	r.logger.Debug("Deterministic pass done", "matched", st.count(core.MethodDeterministic))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := st.heuristicPass(ctx, r.opts.workers()); err != nil {
		return nil, err
	}
	r.logger.Debug("Heuristic pass done", "matched", st.count(core.MethodHeuristic))

	st.linkKills()
	st.collectRipple()
	st.collectSplash()

	set := st.build(r.cls)
	set.StreamID = streamID(events)

	r.record(ctx, set, time.Since(start))
	r.logger.Info("Resolved engagement chains",
		"stream", set.StreamID,
		"chains", set.Len(),
		"orphans", len(set.Orphans),
		"anomalies", set.Anomalies.Total(),
		"elapsed", time.Since(start))
	return set, nil
}

func validateStream(events []core.Event) error {
	for i, e := range events {
		if !e.Kind.Valid() {
			return fmt.Errorf("%w: event %d has unknown kind %q", ErrInvalidEvent, i, e.Kind)
		}
		if e.ID == 0 {
			return fmt.Errorf("%w: event %d (%s at %s) has no id", ErrInvalidEvent, i, e.Kind, e.Time)
		}
		if e.Kind == core.KindFired && e.ActorID == 0 {
			return fmt.Errorf("%w: fired event %d (weapon %d) has no shooter", ErrInvalidEvent, i, e.ID)
		}
		if i > 0 && e.Time < events[i-1].Time {
			return fmt.Errorf("%w: event %d at %s follows %s", ErrUnsortedStream, i, e.Time, events[i-1].Time)
		}
	}
	return nil
}

// streamID derives a stable identifier from the stream content, so that
// resolving the same stream twice yields identical sets.
func streamID(events []core.Event) string {
	h := sha256.New()
	for _, e := range events {
		fmt.Fprintf(h, "%d|%s|%d|%d|%d|%s|%s|%d\n",
			e.ID, e.Kind, e.Time, e.ActorID, e.TargetID, e.WeaponType, e.Coalition, e.Occurrences)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil)).String()
}

func (r *Resolver) record(ctx context.Context, set *core.ChainSet, elapsed time.Duration) {
	type key struct {
		outcome core.Outcome
		method  core.Method
	}
	counts := make(map[key]int64)
	for _, c := range set.Chains {
		counts[key{c.Outcome, c.Method}]++
	}
	for k, n := range counts {
		r.chains.Add(ctx, n, metric.WithAttributes(
			attribute.String("outcome", string(k.outcome)),
			attribute.String("method", string(k.method)),
		))
	}

	an := set.Anomalies
	for kind, n := range map[string]int{
		"orphaned_outcome":   an.OrphanedOutcomes,
		"stale_weapon_event": an.StaleWeaponEvents,
		"unknown_actor":      an.UnknownActors,
		"clock_skew":         an.ClockSkew,
		"domain_mismatch":    an.DomainMismatches,
		"shooter_mismatch":   an.ShooterMismatches,
	} {
		if n > 0 {
			r.anomalies.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
		}
	}

	r.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond))
}
