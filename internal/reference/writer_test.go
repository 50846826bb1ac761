package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auvtools/georef/internal/georef"
	"github.com/auvtools/georef/internal/mission"
)

func TestWriter_HeaderOnlyForEmptyRole(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter([]mission.Role{"down", "forward"})
	w.Add("down", Row{Label: "down_0000.jpg", Ref: georef.Georeference{Longitude: 151.2}})

	if err := w.WriteAll(dir); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	forward, err := os.ReadFile(filepath.Join(dir, "forward_reference.csv"))
	if err != nil {
		t.Fatalf("reading forward table: %v", err)
	}
	if got := strings.TrimSpace(string(forward)); got != strings.Join(Columns, ",") {
		t.Errorf("empty role table: got %q, want header only", got)
	}

	down, err := os.ReadFile(filepath.Join(dir, "down_reference.csv"))
	if err != nil {
		t.Fatalf("reading down table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(down)), "\n")
	if len(lines) != 2 {
		t.Fatalf("down table: got %d lines, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[1], "down_0000.jpg,151.2,") {
		t.Errorf("row: got %q", lines[1])
	}
}

func TestWriter_PreservesArrivalOrder(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter([]mission.Role{"down"})
	for _, label := range []string{"down_0000.jpg", "down_0001.jpg", "down_0002.jpg"} {
		w.Add("down", Row{Label: label})
	}

	if err := w.WriteAll(dir); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "down_reference.csv"))
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"down_0000.jpg", "down_0001.jpg", "down_0002.jpg"}
	for i, label := range want {
		if !strings.HasPrefix(lines[i+1], label+",") {
			t.Errorf("row %d: got %q, want label %s", i, lines[i+1], label)
		}
	}
}

func TestWriter_Deterministic(t *testing.T) {
	build := func(dir string) []byte {
		w := NewWriter([]mission.Role{"down"})
		w.Add("down", Row{Label: "down_0000.jpg", Ref: georef.Georeference{
			Longitude: 151.215738, Latitude: -33.858231, Altitude: -2, Yaw: 90.5, Pitch: -1.25, Roll: 0.5,
		}})
		if err := w.WriteAll(dir); err != nil {
			t.Fatalf("WriteAll: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "down_reference.csv"))
		if err != nil {
			t.Fatalf("reading table: %v", err)
		}
		return data
	}

	first := build(t.TempDir())
	second := build(t.TempDir())
	if string(first) != string(second) {
		t.Error("two identical runs must produce byte-identical tables")
	}
}
