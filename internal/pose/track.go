// Package pose holds the vehicle pose track and answers point-in-time
// interpolation queries against it.
package pose

import (
	"errors"
	"math"
	"sort"

	"github.com/auvtools/georef/internal/mission"
)

// ErrNotReady is returned by queries against a track that has not been
// finalized. It indicates an orchestration-ordering defect, not bad data.
var ErrNotReady = errors.New("pose track not finalized")

// ErrEmpty is returned by queries against a finalized track with no samples.
var ErrEmpty = errors.New("pose track is empty")

// Track is an append-only collection of pose samples. Ingestion appends in
// arrival order; Finalize sorts by timestamp and freezes the track; only a
// frozen track answers interpolation queries. Duplicate and out-of-order
// timestamps are tolerated, the sort handles them.
type Track struct {
	samples   []mission.PoseSample
	finalized bool
}

// NewTrack returns an empty, unfrozen track.
func NewTrack() *Track {
	return &Track{}
}

// Append adds a sample. Panics if the track is already finalized, since an
// append after freeze would silently invalidate issued interpolations.
func (t *Track) Append(s mission.PoseSample) {
	if t.finalized {
		panic("pose: append to finalized track")
	}
	t.samples = append(t.samples, s)
}

// Finalize sorts the samples by timestamp and freezes the track. Calling
// it again is a no-op.
func (t *Track) Finalize() {
	if t.finalized {
		return
	}
	sort.SliceStable(t.samples, func(i, j int) bool {
		return t.samples[i].Timestamp < t.samples[j].Timestamp
	})
	t.finalized = true
}

// Len returns the number of samples.
func (t *Track) Len() int {
	return len(t.samples)
}

// Samples returns the underlying samples. Callers must treat the slice as
// read-only; it is only valid after Finalize.
func (t *Track) Samples() ([]mission.PoseSample, error) {
	if !t.finalized {
		return nil, ErrNotReady
	}
	return t.samples, nil
}

// Span returns the first and last sample timestamps.
func (t *Track) Span() (start, end float64, err error) {
	if !t.finalized {
		return 0, 0, ErrNotReady
	}
	if len(t.samples) == 0 {
		return 0, 0, ErrEmpty
	}
	return t.samples[0].Timestamp, t.samples[len(t.samples)-1].Timestamp, nil
}

// At interpolates the vehicle pose at time ts and reports the distance in
// seconds from ts to the nearest recorded sample used.
//
// Queries before the first or after the last sample return that endpoint
// sample unmodified: sensor streams commonly start and stop slightly
// offset from camera streams, so clamping is policy, not an error. Between
// samples every scalar field interpolates linearly; heading interpolates
// along the shortest angular path so a 350°..10° bracket passes through 0°
// rather than 180°. Wide bracketing gaps do not reject the query, gap
// reporting is a separate diagnostic (see Gaps).
func (t *Track) At(ts float64) (mission.PoseSample, float64, error) {
	if !t.finalized {
		return mission.PoseSample{}, 0, ErrNotReady
	}
	if len(t.samples) == 0 {
		return mission.PoseSample{}, 0, ErrEmpty
	}

	first, last := t.samples[0], t.samples[len(t.samples)-1]
	switch {
	case ts <= first.Timestamp:
		return first, first.Timestamp - ts, nil
	case ts >= last.Timestamp:
		return last, ts - last.Timestamp, nil
	}

	// Index of the first sample with timestamp >= ts. The clamp cases
	// above guarantee 1 <= hi < len(samples).
	hi := sort.Search(len(t.samples), func(i int) bool {
		return t.samples[i].Timestamp >= ts
	})
	s0, s1 := t.samples[hi-1], t.samples[hi]

	if s1.Timestamp == ts || s0.Timestamp == s1.Timestamp {
		return s1, 0, nil
	}

	f := (ts - s0.Timestamp) / (s1.Timestamp - s0.Timestamp)
	nearest := math.Min(ts-s0.Timestamp, s1.Timestamp-ts)

	return mission.PoseSample{
		Timestamp:    ts,
		Longitude:    lerp(s0.Longitude, s1.Longitude, f),
		Latitude:     lerp(s0.Latitude, s1.Latitude, f),
		Depth:        lerp(s0.Depth, s1.Depth, f),
		Heading:      lerpHeading(s0.Heading, s1.Heading, f),
		Pitch:        lerp(s0.Pitch, s1.Pitch, f),
		Roll:         lerp(s0.Roll, s1.Roll, f),
		AltitudeUsed: lerp(s0.AltitudeUsed, s1.AltitudeUsed, f),
	}, nearest, nil
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}

// lerpHeading interpolates compass headings along the shortest arc and
// normalizes the result back into [0, 360).
func lerpHeading(a, b, f float64) float64 {
	return NormalizeHeading(a + AngleDelta(a, b)*f)
}

// AngleDelta returns the signed shortest angular distance from a to b in
// degrees, in the range (-180, 180].
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

// NormalizeHeading wraps a heading into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
