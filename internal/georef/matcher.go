// Package georef derives per-frame georeferences from the pose track.
package georef

import (
	"fmt"

	"github.com/auvtools/georef/internal/pose"
)

// DefaultTolerance is the default match tolerance in seconds. It is wide
// enough to ride out typical sensor-clock skew but finite, so a frame is
// never silently referenced against stale pose data.
const DefaultTolerance = 3.0

// Convention maps compass heading onto the yaw convention of the
// downstream photogrammetry tool. The identity convention (zero offset,
// clockwise) passes heading through unchanged, which matches the Metashape
// column mapping this exporter was built against. The exact transform is a
// configuration decision, never inferred from the data.
type Convention struct {
	OffsetDeg float64 // Added to (or subtracted from) heading before normalization
	Clockwise bool    // True: yaw = offset + heading; false: yaw = offset - heading
}

// IdentityConvention passes compass heading through as yaw.
func IdentityConvention() Convention {
	return Convention{Clockwise: true}
}

// Yaw re-expresses a compass heading in the downstream convention.
func (c Convention) Yaw(heading float64) float64 {
	if c.Clockwise {
		return pose.NormalizeHeading(c.OffsetDeg + heading)
	}
	return pose.NormalizeHeading(c.OffsetDeg - heading)
}

// Georeference is the position and orientation assigned to one frame for
// photogrammetric import. Altitude is positive-up, unlike recorded depth.
type Georeference struct {
	Longitude float64
	Latitude  float64
	Altitude  float64
	Yaw       float64
	Pitch     float64
	Roll      float64
}

// Matcher resolves image timestamps against a finalized pose track.
type Matcher struct {
	tolerance float64
	conv      Convention
}

// NewMatcher builds a matcher with the given match tolerance in seconds.
// A non-positive tolerance falls back to DefaultTolerance.
func NewMatcher(tolerance float64, conv Convention) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{tolerance: tolerance, conv: conv}
}

// Tolerance returns the configured match tolerance in seconds.
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// Match interpolates the pose at ts and converts it into a Georeference.
// ok is false when the nearest recorded pose sample is further than the
// tolerance from ts; the frame is then unmatched and gets no reference
// row, even though the interpolation itself succeeded. An empty track is
// likewise an unmatched frame, not an error; only querying an unfrozen
// track fails.
func (m *Matcher) Match(ts float64, track *pose.Track) (ref Georeference, ok bool, err error) {
	sample, nearest, err := track.At(ts)
	if err == pose.ErrEmpty {
		return Georeference{}, false, nil
	}
	if err != nil {
		return Georeference{}, false, fmt.Errorf("interpolating pose at %.6f: %w", ts, err)
	}
	if nearest > m.tolerance {
		return Georeference{}, false, nil
	}

	return Georeference{
		Longitude: sample.Longitude,
		Latitude:  sample.Latitude,
		Altitude:  -sample.Depth, // depth is positive-down, the downstream tool wants positive-up
		Yaw:       m.conv.Yaw(sample.Heading),
		Pitch:     sample.Pitch,
		Roll:      sample.Roll,
	}, true, nil
}
