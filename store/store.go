package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kaosnet/visibility/ephemeris"
)

// EphemerisStore adapts a *gorm.DB to ephemeris.Store, with the "later
// segment wins" tie-break on boundary overlaps (spec C8).
type EphemerisStore struct {
	db *gorm.DB
}

// New wraps an open *gorm.DB connection.
func New(db *gorm.DB) *EphemerisStore {
	return &EphemerisStore{db: db}
}

// SegmentContaining returns the segment owning t for platformID, preferring
// the later-starting segment when two segments' ranges both contain t.
func (s *EphemerisStore) SegmentContaining(ctx context.Context, platformID int64, t float64) (*ephemeris.OrbitSegment, error) {
	var row OrbitSegment
	err := s.db.WithContext(ctx).
		Where("platform_id = ? AND start_time <= ? AND end_time >= ?", platformID, t, t).
		Order("start_time DESC").
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ephemeris.OrbitSegment{
		SegmentID:  row.SegmentID,
		PlatformID: row.PlatformID,
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
	}, nil
}

// SamplesOf loads every sample of segmentID, ordered by time.
func (s *EphemerisStore) SamplesOf(ctx context.Context, segmentID int64) ([]ephemeris.OrbitSample, error) {
	var rows []OrbitSample
	if err := s.db.WithContext(ctx).
		Where("segment_id = ?", segmentID).
		Order("time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ephemeris.OrbitSample, len(rows))
	for i, r := range rows {
		out[i] = ephemeris.OrbitSample{
			Time:     r.Time,
			Position: ephemeris.Vector3{r.PosX, r.PosY, r.PosZ},
			Velocity: ephemeris.Vector3{r.VelX, r.VelY, r.VelZ},
		}
	}
	return out, nil
}

// Satellite returns the satellite record for platformID, or nil if unknown.
func (s *EphemerisStore) Satellite(ctx context.Context, platformID int64) (*ephemeris.Satellite, error) {
	var row Satellite
	err := s.db.WithContext(ctx).Where("platform_id = ?", platformID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ephemeris.Satellite{
		PlatformID:      row.PlatformID,
		PlatformName:    row.PlatformName,
		MaximumAltitude: row.MaximumAltitude,
	}, nil
}

// ListSatellites returns every known satellite, for the GET /satellites
// endpoint.
func (s *EphemerisStore) ListSatellites(ctx context.Context) ([]ephemeris.Satellite, error) {
	var rows []Satellite
	if err := s.db.WithContext(ctx).Order("platform_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ephemeris.Satellite, len(rows))
	for i, r := range rows {
		out[i] = ephemeris.Satellite{PlatformID: r.PlatformID, PlatformName: r.PlatformName, MaximumAltitude: r.MaximumAltitude}
	}
	return out, nil
}

// InsertSegment persists a segment and its samples in one transaction,
// returning the generated segment ID (used by the ephparse loader, C9).
func (s *EphemerisStore) InsertSegment(ctx context.Context, platformID int64, startTime, endTime float64, samples []ephemeris.OrbitSample) (int64, error) {
	seg := OrbitSegment{PlatformID: platformID, StartTime: startTime, EndTime: endTime}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&seg).Error; err != nil {
			return err
		}
		rows := make([]OrbitSample, len(samples))
		for i, smp := range samples {
			rows[i] = OrbitSample{
				SegmentID: seg.SegmentID,
				Time:      smp.Time,
				PosX:      smp.Position[0], PosY: smp.Position[1], PosZ: smp.Position[2],
				VelX: smp.Velocity[0], VelY: smp.Velocity[1], VelZ: smp.Velocity[2],
			}
		}
		return tx.CreateInBatches(rows, 500).Error
	})
	return seg.SegmentID, err
}

// UpsertSatellite creates or updates a satellite's maximum_altitude, used by
// the ephparse loader once it has scanned every sample in a file.
func (s *EphemerisStore) UpsertSatellite(ctx context.Context, platformID int64, name string, maxAltitude float64) error {
	row := Satellite{PlatformID: platformID, PlatformName: name, MaximumAltitude: maxAltitude}
	return s.db.WithContext(ctx).
		Where("platform_id = ?", platformID).
		Assign(Satellite{PlatformName: name, MaximumAltitude: maxAltitude}).
		FirstOrCreate(&row).Error
}
