// Package store implements the ephemeris persistence layer (spec C8) and the
// append-only response cache (spec C11) over GORM/Postgres.
package store

import "time"

// Satellite is the GORM model backing the satellites table.
type Satellite struct {
	PlatformID      int64  `gorm:"column:platform_id;primaryKey"`
	PlatformName    string `gorm:"column:platform_name"`
	MaximumAltitude float64 `gorm:"column:maximum_altitude"`
}

func (Satellite) TableName() string { return "satellites" }

// OrbitSegment is the GORM model backing the orbit_segments table. Samples
// are stored separately in OrbitSample and loaded on demand.
type OrbitSegment struct {
	SegmentID  int64   `gorm:"column:segment_id;primaryKey;autoIncrement"`
	PlatformID int64   `gorm:"column:platform_id;index"`
	StartTime  float64 `gorm:"column:start_time;index"`
	EndTime    float64 `gorm:"column:end_time;index"`
}

func (OrbitSegment) TableName() string { return "orbit_segments" }

// OrbitSample is the GORM model backing the orbit_samples table: one
// ephemeris point, in ECEF (converted to ECI after interpolation), belonging
// to exactly one segment.
type OrbitSample struct {
	SampleID  int64 `gorm:"column:sample_id;primaryKey;autoIncrement"`
	SegmentID int64 `gorm:"column:segment_id;index"`
	Time      float64
	PosX      float64
	PosY      float64
	PosZ      float64
	VelX      float64
	VelY      float64
	VelZ      float64
}

func (OrbitSample) TableName() string { return "orbit_samples" }

// CacheEntry is the GORM model backing the cache_entries table: one persisted
// search result, keyed by a UUID handed back to the caller (spec C11).
type CacheEntry struct {
	ID        string `gorm:"column:id;primaryKey"`
	Kind      string `gorm:"column:kind"` // "visibility" or "opportunity"
	Payload   []byte `gorm:"column:payload"` // JSON-encoded response body
	CreatedAt time.Time
}

func (CacheEntry) TableName() string { return "cache_entries" }
