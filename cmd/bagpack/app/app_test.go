package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/auvtools/georef/internal/mission"
)

func TestParseFrameName(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		timestamp float64
		wantErr   bool
	}{
		{name: "down_12.5.png", role: "down", timestamp: 12.5},
		{name: "forward_0.jpg", role: "forward", timestamp: 0},
		{name: "down_3.jpeg", role: "down", timestamp: 3},
		{name: "down.png", wantErr: true},
		{name: "down_x.png", wantErr: true},
		{name: "down_1.tiff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, timestamp, err := parseFrameName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if role != tt.role || timestamp != tt.timestamp {
				t.Errorf("got (%q, %v), want (%q, %v)", role, timestamp, tt.role, tt.timestamp)
			}
		})
	}
}

func TestReadPoses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.csv")
	data := "timestamp,longitude,latitude,depth,heading,pitch,roll,altitude_used\n" +
		"10.5,151.21,-33.86,4.2,270,1.5,-0.5,2.1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	messages, count, err := readPoses(path, "/nav/pose")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 || len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	m := messages[0]
	if m.Topic != "/nav/pose" {
		t.Errorf("topic = %q", m.Topic)
	}
	if m.TimestampNs != 10_500_000_000 {
		t.Errorf("timestampNs = %d", m.TimestampNs)
	}

	pose, err := mission.DecodePose(10.5, m.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if pose.Longitude != 151.21 || pose.Heading != 270 || pose.AltitudeUsed != 2.1 {
		t.Errorf("unexpected pose %+v", pose)
	}
}

func TestReadPosesRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.csv")
	data := "time,lon,lat,depth,heading,pitch,roll,altitude_used\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := readPoses(path, "/nav/pose"); err == nil {
		t.Fatal("expected header error")
	}
}
