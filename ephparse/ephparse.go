// Package ephparse parses the KAOS-style ephemeris text format (spec §6,
// C9) and loads the result through the ephemeris store (C8).
package ephparse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kaosnet/visibility/ephemeris"
)

// Sink is the subset of the store the parser writes through.
type Sink interface {
	InsertSegment(ctx context.Context, platformID int64, startTime, endTime float64, samples []ephemeris.OrbitSample) (int64, error)
	UpsertSatellite(ctx context.Context, platformID int64, name string, maxAltitude float64) error
}

// ParsedFile holds one file's parsed boundaries and samples before they are
// split into segments and persisted.
type ParsedFile struct {
	EpochJDate float64
	Boundaries []float64 // seconds since epoch
	Samples    []ephemeris.OrbitSample
}

// Parse reads r, a KAOS-style ephemeris text file: an `Epoch in JDate
// format:` header, a `CoordinateSystem` header, a `BEGIN/END
// SegmentBoundaryTimes` block, and a `BEGIN/END EphemerisTimePosVel` block
// of 7-tuples `t px py pz vx vy vz` (spec §6).
func Parse(r io.Reader) (*ParsedFile, error) {
	pf := &ParsedFile{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Epoch in JDate format:"):
			val := strings.TrimSpace(strings.TrimPrefix(line, "Epoch in JDate format:"))
			jd, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("ephparse: bad epoch %q: %w", val, err)
			}
			pf.EpochJDate = jd

		case line == "BEGIN SegmentBoundaryTimes":
			bounds, err := readBlock(scanner, "END SegmentBoundaryTimes", parseBoundaryLine)
			if err != nil {
				return nil, err
			}
			pf.Boundaries = bounds

		case line == "BEGIN EphemerisTimePosVel":
			samples, err := readSampleBlock(scanner, "END EphemerisTimePosVel")
			if err != nil {
				return nil, err
			}
			pf.Samples = samples
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pf, nil
}

func readBlock(scanner *bufio.Scanner, endMarker string, parseLine func(string) (float64, error)) ([]float64, error) {
	var out []float64
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == endMarker {
			return out, nil
		}
		if line == "" {
			continue
		}
		v, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return nil, fmt.Errorf("ephparse: missing %s", endMarker)
}

func parseBoundaryLine(line string) (float64, error) {
	return strconv.ParseFloat(line, 64)
}

func readSampleBlock(scanner *bufio.Scanner, endMarker string) ([]ephemeris.OrbitSample, error) {
	var out []ephemeris.OrbitSample
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == endMarker {
			return out, nil
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, fmt.Errorf("ephparse: expected 7 fields, got %d in %q", len(fields), line)
		}
		vals := make([]float64, 7)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("ephparse: bad sample field %q: %w", f, err)
			}
			vals[i] = v
		}
		out = append(out, ephemeris.OrbitSample{
			Time:     vals[0],
			Position: ephemeris.Vector3{vals[1], vals[2], vals[3]},
			Velocity: ephemeris.Vector3{vals[4], vals[5], vals[6]},
		})
	}
	return nil, fmt.Errorf("ephparse: missing %s", endMarker)
}

// Segments splits pf's flat sample stream into per-segment runs at the
// parsed boundaries. A boundary time shared by two segments belongs to the
// later one (mirrors C3's "later-segment-wins" tie-break).
func (pf *ParsedFile) Segments() [][]ephemeris.OrbitSample {
	if len(pf.Boundaries) == 0 {
		return [][]ephemeris.OrbitSample{pf.Samples}
	}

	bounds := append([]float64(nil), pf.Boundaries...)
	segs := make([][]ephemeris.OrbitSample, 0, len(bounds)+1)
	cur := make([]ephemeris.OrbitSample, 0)
	bi := 0

	for _, s := range pf.Samples {
		for bi < len(bounds) && s.Time >= bounds[bi] {
			if len(cur) > 0 {
				segs = append(segs, cur)
			}
			cur = make([]ephemeris.OrbitSample, 0)
			bi++
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// Load persists pf under platformID/platformName through sink, splitting
// into segments and computing maximum_altitude as max ||(px,py,pz)|| over
// every sample (spec §6).
func Load(ctx context.Context, sink Sink, platformID int64, platformName string, pf *ParsedFile) error {
	var maxAlt float64
	for _, seg := range pf.Segments() {
		if len(seg) == 0 {
			continue
		}
		for _, s := range seg {
			r := math.Sqrt(s.Position[0]*s.Position[0] + s.Position[1]*s.Position[1] + s.Position[2]*s.Position[2])
			if r > maxAlt {
				maxAlt = r
			}
		}
		if _, err := sink.InsertSegment(ctx, platformID, seg[0].Time, seg[len(seg)-1].Time, seg); err != nil {
			return fmt.Errorf("ephparse: inserting segment: %w", err)
		}
	}
	return sink.UpsertSatellite(ctx, platformID, platformName, maxAlt)
}
