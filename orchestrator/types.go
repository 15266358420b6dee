package orchestrator

import "github.com/kaosnet/visibility/interval"

// Target is a single ground point, (lat, lon) in degrees.
type Target struct {
	LatDeg float64
	LonDeg float64
}

// Opportunity is the wire-level shape of a VisibilityWindow attributed to a
// satellite (spec.md §3/§6).
type Opportunity struct {
	PlatformID int64   `json:"PlatformID"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
}

// VisibilitySearchRequest is the body of POST /visibility/search.
type VisibilitySearchRequest struct {
	Target     [2]float64            `json:"Target"`
	POI        interval.TimeInterval `json:"-"`
	POIRaw     POIRequest            `json:"POI"`
	PlatformID []int64               `json:"PlatformID,omitempty"`
}

// OpportunitySearchRequest is the body of POST /opportunity/search.
type OpportunitySearchRequest struct {
	TargetArea [][2]float64 `json:"TargetArea"`
	POIRaw     POIRequest   `json:"POI"`
	PlatformID []int64      `json:"PlatformID,omitempty"`
}

// POIRequest is the wire shape of a period of interest: UTC strings per
// spec.md §4.1's UTC->Unix contract.
type POIRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// SearchResponse is the body returned by both search endpoints and by
// GET /search/{id}.
type SearchResponse struct {
	ID            string        `json:"id"`
	Opportunities []Opportunity `json:"Opportunities"`
}

// SatelliteSummary is one row of GET /satellites.
type SatelliteSummary struct {
	ID            int64  `json:"id"`
	SatelliteName string `json:"satellite_name"`
}
