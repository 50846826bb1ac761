// Package trackmap aggregates the pose stream into path statistics and
// renders the mission map.
package trackmap

import (
	"math"

	"github.com/auvtools/georef/internal/pose"
)

// metersPerDegree approximates one degree of latitude at the surface.
// Longitude spans scale by cos(latitude).
const metersPerDegree = 111000.0

// Point is one path vertex.
type Point struct {
	Longitude float64
	Latitude  float64
}

// Summary is the aggregate of the complete pose stream, computed once
// after ingestion. A mission with zero pose samples yields a degenerate
// summary (zero count, zero ranges, empty path) rather than an error.
type Summary struct {
	SampleCount int

	StartTime float64 // Seconds, first sample
	EndTime   float64 // Seconds, last sample

	LongitudeMin, LongitudeMax float64
	LatitudeMin, LatitudeMax   float64
	DepthMin, DepthMax         float64

	Path []Point // Polyline in track order
}

// Summarize scans a finalized track once.
func Summarize(track *pose.Track) (Summary, error) {
	samples, err := track.Samples()
	if err != nil {
		return Summary{}, err
	}
	if len(samples) == 0 {
		return Summary{}, nil
	}

	s := Summary{
		SampleCount:  len(samples),
		StartTime:    samples[0].Timestamp,
		EndTime:      samples[len(samples)-1].Timestamp,
		LongitudeMin: samples[0].Longitude,
		LongitudeMax: samples[0].Longitude,
		LatitudeMin:  samples[0].Latitude,
		LatitudeMax:  samples[0].Latitude,
		DepthMin:     samples[0].Depth,
		DepthMax:     samples[0].Depth,
		Path:         make([]Point, len(samples)),
	}

	for i, sample := range samples {
		s.LongitudeMin = math.Min(s.LongitudeMin, sample.Longitude)
		s.LongitudeMax = math.Max(s.LongitudeMax, sample.Longitude)
		s.LatitudeMin = math.Min(s.LatitudeMin, sample.Latitude)
		s.LatitudeMax = math.Max(s.LatitudeMax, sample.Latitude)
		s.DepthMin = math.Min(s.DepthMin, sample.Depth)
		s.DepthMax = math.Max(s.DepthMax, sample.Depth)
		s.Path[i] = Point{Longitude: sample.Longitude, Latitude: sample.Latitude}
	}
	return s, nil
}

// Duration returns the pose stream duration in seconds.
func (s Summary) Duration() float64 {
	return s.EndTime - s.StartTime
}

// PoseRate returns the mean sampling rate in Hz, zero for degenerate runs.
func (s Summary) PoseRate() float64 {
	if d := s.Duration(); d > 0 {
		return float64(s.SampleCount) / d
	}
	return 0
}

// LongitudeSpanMeters approximates the east-west extent in metres.
func (s Summary) LongitudeSpanMeters() float64 {
	meanLat := (s.LatitudeMin + s.LatitudeMax) / 2
	return (s.LongitudeMax - s.LongitudeMin) * metersPerDegree * math.Cos(meanLat*math.Pi/180)
}

// LatitudeSpanMeters approximates the north-south extent in metres.
func (s Summary) LatitudeSpanMeters() float64 {
	return (s.LatitudeMax - s.LatitudeMin) * metersPerDegree
}
