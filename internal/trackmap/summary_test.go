package trackmap

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/auvtools/georef/internal/mission"
	"github.com/auvtools/georef/internal/pose"
)

func TestSummarize(t *testing.T) {
	tr := pose.NewTrack()
	tr.Append(mission.PoseSample{Timestamp: 0, Longitude: 151.20, Latitude: -33.86, Depth: 2})
	tr.Append(mission.PoseSample{Timestamp: 5, Longitude: 151.21, Latitude: -33.85, Depth: 4})
	tr.Append(mission.PoseSample{Timestamp: 10, Longitude: 151.22, Latitude: -33.84, Depth: 3})
	tr.Finalize()

	s, err := Summarize(tr)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.SampleCount != 3 {
		t.Errorf("sample count: got %d, want 3", s.SampleCount)
	}
	if s.LongitudeMin != 151.20 || s.LongitudeMax != 151.22 {
		t.Errorf("longitude range: got [%f, %f]", s.LongitudeMin, s.LongitudeMax)
	}
	if s.LatitudeMin != -33.86 || s.LatitudeMax != -33.84 {
		t.Errorf("latitude range: got [%f, %f]", s.LatitudeMin, s.LatitudeMax)
	}
	if s.DepthMin != 2 || s.DepthMax != 4 {
		t.Errorf("depth range: got [%f, %f]", s.DepthMin, s.DepthMax)
	}
	if s.Duration() != 10 {
		t.Errorf("duration: got %f, want 10", s.Duration())
	}
	if math.Abs(s.PoseRate()-0.3) > 1e-9 {
		t.Errorf("pose rate: got %f, want 0.3", s.PoseRate())
	}
	if len(s.Path) != 3 || s.Path[0] != (Point{151.20, -33.86}) {
		t.Errorf("path: got %v", s.Path)
	}
}

func TestSummarize_Empty(t *testing.T) {
	tr := pose.NewTrack()
	tr.Finalize()

	s, err := Summarize(tr)
	if err != nil {
		t.Fatalf("Summarize on empty track: %v", err)
	}
	if s.SampleCount != 0 || len(s.Path) != 0 {
		t.Errorf("empty summary: got %+v, want degenerate zero summary", s)
	}
}

func TestSummarize_NotReady(t *testing.T) {
	tr := pose.NewTrack()
	if _, err := Summarize(tr); !errors.Is(err, pose.ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
}

func TestLatitudeSpanMeters(t *testing.T) {
	s := Summary{LatitudeMin: 0, LatitudeMax: 0.001}
	if got := s.LatitudeSpanMeters(); math.Abs(got-111) > 1e-6 {
		t.Errorf("latitude span: got %f m, want 111 m", got)
	}
}

func TestRenderer_RendersPathAndDegenerate(t *testing.T) {
	r, err := NewRenderer(RenderConfig{Width: 700, Height: 350, Location: time.UTC})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	tr := pose.NewTrack()
	tr.Append(mission.PoseSample{Timestamp: 1, Longitude: 151.20, Latitude: -33.86, Depth: 2})
	tr.Append(mission.PoseSample{Timestamp: 2, Longitude: 151.21, Latitude: -33.85, Depth: 3})
	tr.Finalize()

	summary, err := Summarize(tr)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	info := Info{Mission: "dive_042", Images: map[mission.Role]int{"down": 12, "forward": 3}}
	img, err := r.Render(summary, info)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err = WritePNG(filepath.Join(t.TempDir(), MapFilename), img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	// A mission without pose data still renders a valid map.
	empty, err := r.Render(Summary{}, Info{Mission: "dive_000"})
	if err != nil {
		t.Fatalf("Render degenerate: %v", err)
	}
	if empty.Bounds().Dx() != 700 || empty.Bounds().Dy() != 350 {
		t.Errorf("bounds: got %v", empty.Bounds())
	}
}
