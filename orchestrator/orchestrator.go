// Package orchestrator implements the per-request pipeline (spec C7): split
// the period of interest into day windows, reduce each day with the viewing
// cone (C4), find access windows with the adaptive Hermite finder (C5/C6),
// fuse the results (C2), and persist a cache entry (C11).
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kaosnet/visibility/coord"
	"github.com/kaosnet/visibility/ephemeris"
	"github.com/kaosnet/visibility/errs"
	"github.com/kaosnet/visibility/interval"
	"github.com/kaosnet/visibility/metrics"
	"github.com/kaosnet/visibility/store"
	"github.com/kaosnet/visibility/timeconv"
	"github.com/kaosnet/visibility/viewcone"
	"github.com/kaosnet/visibility/visibility"
)

const daySeconds = 86400.0

// EphemerisSource is the read surface the orchestrator needs from the store
// (spec C8), plus the satellite listing used by GET /satellites.
type EphemerisSource interface {
	ephemeris.Store
	ListSatellites(ctx context.Context) ([]ephemeris.Satellite, error)
}

// Orchestrator wires the whole pipeline together for one deployment: one
// ephemeris source, one response cache, and the precision/interpolation
// settings threaded into every request (spec §9, explicit context object
// rather than a package-level singleton).
type Orchestrator struct {
	source          EphemerisSource
	cache           store.CacheStore
	precisionDigits int
	kind            ephemeris.Kind
	log             *logrus.Logger
	metrics         *metrics.Metrics
}

// New builds an Orchestrator.
func New(source EphemerisSource, cache store.CacheStore, precisionDigits int, kind ephemeris.Kind, log *logrus.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{source: source, cache: cache, precisionDigits: precisionDigits, kind: kind, log: log, metrics: m}
}

// ParsePOI converts the wire POI (UTC strings) to a TimeInterval, rejecting
// malformed strings and start>end (spec §4.7 step 1).
func ParsePOI(raw POIRequest) (interval.TimeInterval, error) {
	start, err := timeconv.UTCToUnix(raw.StartTime)
	if err != nil {
		return interval.TimeInterval{}, errs.NewInputError("invalid startTime: %v", err)
	}
	end, err := timeconv.UTCToUnix(raw.EndTime)
	if err != nil {
		return interval.TimeInterval{}, errs.NewInputError("invalid endTime: %v", err)
	}
	if start > end {
		return interval.TimeInterval{}, errs.NewInputError("startTime %v is after endTime %v", raw.StartTime, raw.EndTime)
	}
	return interval.TimeInterval{Start: start, End: end}, nil
}

// resolvePlatforms returns the requested platform ids, or every known
// platform when the request leaves the field empty (spec §4.7 step 1).
func (o *Orchestrator) resolvePlatforms(ctx context.Context, requested []int64) ([]int64, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	sats, err := o.source.ListSatellites(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(sats))
	for i, s := range sats {
		ids[i] = s.PlatformID
	}
	return ids, nil
}

// SearchVisibility implements POST /visibility/search.
func (o *Orchestrator) SearchVisibility(ctx context.Context, req VisibilitySearchRequest) (SearchResponse, error) {
	poi, err := ParsePOI(req.POIRaw)
	if err != nil {
		return SearchResponse{}, err
	}
	target := Target{LatDeg: req.Target[0], LonDeg: req.Target[1]}

	platformIDs, err := o.resolvePlatforms(ctx, req.PlatformID)
	if err != nil {
		return SearchResponse{}, err
	}

	opps, err := o.searchTargets(ctx, platformIDs, poi, []Target{target}, intersectSingle)
	if err != nil {
		return SearchResponse{}, err
	}
	return o.persist(ctx, "visibility", opps)
}

// SearchOpportunity implements POST /opportunity/search: per-vertex windows
// intersected N-way across the polygon (spec §4.7 step 6).
func (o *Orchestrator) SearchOpportunity(ctx context.Context, req OpportunitySearchRequest) (SearchResponse, error) {
	if len(req.TargetArea) < 3 {
		return SearchResponse{}, errs.NewInputError("TargetArea needs at least 3 vertices, got %d", len(req.TargetArea))
	}
	poi, err := ParsePOI(req.POIRaw)
	if err != nil {
		return SearchResponse{}, err
	}

	targets := make([]Target, len(req.TargetArea))
	for i, v := range req.TargetArea {
		targets[i] = Target{LatDeg: v[0], LonDeg: v[1]}
	}

	platformIDs, err := o.resolvePlatforms(ctx, req.PlatformID)
	if err != nil {
		return SearchResponse{}, err
	}

	opps, err := o.searchTargets(ctx, platformIDs, poi, targets, interval.Common)
	if err != nil {
		return SearchResponse{}, err
	}
	return o.persist(ctx, "opportunity", opps)
}

// intersectSingle is the single-target analogue of interval.Common: the
// "intersection" of one list is itself.
func intersectSingle(lists [][]interval.TimeInterval) []interval.TimeInterval {
	if len(lists) == 0 {
		return nil
	}
	return lists[0]
}

// searchTargets runs the per-platform pipeline concurrently and combines the
// per-vertex window lists with combine (intersectSingle for a point target,
// interval.Common for a polygon).
func (o *Orchestrator) searchTargets(ctx context.Context, platformIDs []int64, poi interval.TimeInterval, targets []Target, combine func([][]interval.TimeInterval) []interval.TimeInterval) ([]Opportunity, error) {
	type result struct {
		platformID int64
		windows    []interval.TimeInterval
		err        error
	}

	results := make([]result, len(platformIDs))
	var wg sync.WaitGroup
	for i, platformID := range platformIDs {
		wg.Add(1)
		go func(i int, platformID int64) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = result{platformID: platformID, err: errs.NewVisibilityFinderError("panic in platform %d pipeline: %v", platformID, r)}
				}
			}()

			perVertex := make([][]interval.TimeInterval, len(targets))
			for v, target := range targets {
				windows, err := o.pipelineForPlatform(ctx, platformID, target, poi)
				if err != nil {
					results[i] = result{platformID: platformID, err: err}
					return
				}
				perVertex[v] = windows
			}
			results[i] = result{platformID: platformID, windows: interval.Fuse(combine(perVertex))}
		}(i, platformID)
	}
	wg.Wait()

	var opps []Opportunity
	var firstHardErr error
	for _, r := range results {
		if r.err != nil {
			var interpErr *errs.InterpolationError
			if errors.As(r.err, &interpErr) {
				// An interpolation error on any day drops the platform's whole
				// result; a single-platform request surfaces it below.
				o.log.WithError(r.err).WithField("platform_id", r.platformID).Warn("dropping platform: interpolation error")
				continue
			}
			o.log.WithError(r.err).WithField("platform_id", r.platformID).Error("platform pipeline failed")
			if firstHardErr == nil {
				firstHardErr = r.err
			}
			continue
		}
		for _, w := range r.windows {
			opps = append(opps, Opportunity{PlatformID: r.platformID, StartTime: w.Start, EndTime: w.End})
		}
	}

	if firstHardErr != nil {
		return nil, firstHardErr
	}
	if len(opps) == 0 && len(platformIDs) == 1 {
		// A single requested platform whose pipeline failed is a request-level
		// failure, not a silently empty result.
		for _, r := range results {
			if r.err != nil {
				return nil, errs.NewInputError("platform %d: %v", r.platformID, r.err)
			}
		}
	}

	sort.Slice(opps, func(i, j int) bool {
		if opps[i].PlatformID != opps[j].PlatformID {
			return opps[i].PlatformID < opps[j].PlatformID
		}
		return opps[i].StartTime < opps[j].StartTime
	})
	return opps, nil
}

// pipelineForPlatform runs C3/C1/C4/C5/C6 for one (platform, target) pair
// over the whole poi, fusing the per-day results.
func (o *Orchestrator) pipelineForPlatform(ctx context.Context, platformID int64, target Target, poi interval.TimeInterval) ([]interval.TimeInterval, error) {
	ip, err := ephemeris.NewInterpolator(ctx, o.source, platformID)
	if err != nil {
		return nil, err
	}
	sat, err := o.source.Satellite(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if sat == nil {
		return nil, errs.NewInterpolationError(errs.UnknownSatellite, platformID, "no such satellite")
	}

	var all []interval.TimeInterval
	numDays := int(math.Ceil((poi.End - poi.Start) / daySeconds))
	if numDays < 1 {
		numDays = 1
	}

	for d := 0; d < numDays; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dayStart := poi.Start + float64(d)*daySeconds
		dayEnd := dayStart + daySeconds
		if dayEnd > poi.End {
			dayEnd = poi.End
		}
		if dayStart >= dayEnd {
			continue
		}
		dayPOI := interval.TimeInterval{Start: dayStart, End: dayEnd}

		reduced, err := o.reduceDay(ctx, ip, target, sat.MaximumAltitude, dayPOI)
		if err != nil {
			return nil, err
		}

		for _, sub := range reduced {
			ev := visibility.NewEvaluator(ip, target.LatDeg, target.LonDeg, o.kind, o.precisionDigits)
			windows, err := ev.Determine(ctx, sub, visibility.DefaultParams())
			if err != nil {
				if o.metrics != nil {
					o.metrics.FinderErrors.Inc()
				}
				return nil, err
			}
			all = append(all, windows...)
		}
	}

	return interval.Fuse(all), nil
}

// reduceDay runs the viewing-cone reducer (C4) for one day, recovering a
// ViewConeError by treating the whole day as possibly visible (spec §7).
func (o *Orchestrator) reduceDay(ctx context.Context, ip *ephemeris.Interpolator, target Target, qMax float64, dayPOI interval.TimeInterval) ([]interval.TimeInterval, error) {
	startPos, startVel, err := ip.Interpolate(ctx, dayPOI.Start, o.kind)
	if err != nil {
		return nil, err
	}
	endPos, endVel, err := ip.Interpolate(ctx, dayPOI.End, o.kind)
	if err != nil {
		return nil, err
	}

	positions := [][3]float64{[3]float64(startPos), [3]float64(endPos)}
	velocities := [][3]float64{[3]float64(startVel), [3]float64(endVel)}
	times := []float64{dayPOI.Start, dayPOI.End}
	posECI, velECI := coord.ECEFToECIBatch(positions, velocities, times)

	samples := []viewcone.Sample{
		{Time: times[0], Position: posECI[0], Velocity: velECI[0]},
		{Time: times[1], Position: posECI[1], Velocity: velECI[1]},
	}

	reduced, err := viewcone.Reduce(target.LatDeg, target.LonDeg, samples, qMax, dayPOI)
	if err != nil {
		var vce *errs.ViewConeError
		if errors.As(err, &vce) {
			if o.metrics != nil {
				o.metrics.ViewConeErrors.Inc()
			}
			o.log.WithError(err).Debug("viewcone error, treating day as possibly visible")
			return []interval.TimeInterval{dayPOI}, nil
		}
		return nil, err
	}
	if o.metrics != nil && dayPOI.End > dayPOI.Start {
		o.metrics.DayRetainedFrac.Observe(retainedFraction(reduced, dayPOI))
	}
	return reduced, nil
}

func retainedFraction(reduced []interval.TimeInterval, day interval.TimeInterval) float64 {
	var sum float64
	for _, iv := range reduced {
		sum += iv.End - iv.Start
	}
	total := day.End - day.Start
	if total <= 0 {
		return 0
	}
	return sum / total
}

// ListSatellites implements GET /satellites.
func (o *Orchestrator) ListSatellites(ctx context.Context) ([]SatelliteSummary, error) {
	sats, err := o.source.ListSatellites(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SatelliteSummary, len(sats))
	for i, s := range sats {
		out[i] = SatelliteSummary{ID: s.PlatformID, SatelliteName: s.PlatformName}
	}
	return out, nil
}

// GetCached implements GET /search/{id}.
func (o *Orchestrator) GetCached(ctx context.Context, id string) (SearchResponse, error) {
	payload, err := o.cache.Get(ctx, id)
	if err != nil {
		return SearchResponse{}, err
	}
	return decodeCachedResponse(id, payload)
}

// persist writes opps to the response cache and returns the id/body pair a
// search handler returns. A cancelled request writes nothing (spec §5).
func (o *Orchestrator) persist(ctx context.Context, kind string, opps []Opportunity) (SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return SearchResponse{}, err
	}
	payload, err := encodeCachedResponse(opps)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("orchestrator: encoding response: %w", err)
	}
	id, err := o.cache.Put(ctx, kind, payload)
	if err != nil {
		return SearchResponse{}, err
	}
	if opps == nil {
		opps = []Opportunity{}
	}
	return SearchResponse{ID: id, Opportunities: opps}, nil
}
