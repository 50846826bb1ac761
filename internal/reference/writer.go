// Package reference accumulates per-camera reference rows and serializes
// them as fixed-schema CSV tables for photogrammetry import.
package reference

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/auvtools/georef/internal/georef"
	"github.com/auvtools/georef/internal/mission"
)

// Columns is the fixed reference-table schema, in column order. The
// downstream import maps columns by position (label=1, lon=2, lat=3,
// alt=4, yaw=5, pitch=6, roll=7), so order changes break imports.
var Columns = []string{"label", "longitude", "latitude", "altitude", "yaw", "pitch", "roll"}

// Row is one reference-table entry: an output image filename plus its
// georeference. Labels are unique within a role by construction of the
// naming scheme.
type Row struct {
	Label string
	Ref   georef.Georeference
}

// Writer collects rows per camera role. Rows keep frame-arrival order and
// are never removed or reordered. Roles are registered up front so a role
// with zero matched frames still produces a header-only file, which lets
// consumers tell "zero frames matched" from "exporter did not run".
type Writer struct {
	roles []mission.Role
	rows  map[mission.Role][]Row
}

// NewWriter pre-registers the configured roles.
func NewWriter(roles []mission.Role) *Writer {
	rows := make(map[mission.Role][]Row, len(roles))
	for _, role := range roles {
		rows[role] = nil
	}
	return &Writer{roles: append([]mission.Role(nil), roles...), rows: rows}
}

// Add appends a row for a role in arrival order.
func (w *Writer) Add(role mission.Role, row Row) {
	w.rows[role] = append(w.rows[role], row)
}

// Rows returns the accumulated rows for a role.
func (w *Writer) Rows(role mission.Role) []Row {
	return w.rows[role]
}

// Filename returns the reference-table filename for a role.
func Filename(role mission.Role) string {
	return fmt.Sprintf("%s_reference.csv", role)
}

// WriteAll serializes one CSV per registered role into dir. Every
// registered role gets a file, even if empty.
func (w *Writer) WriteAll(dir string) error {
	for _, role := range w.roles {
		if err := w.writeRole(dir, role); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRole(dir string, role mission.Role) (err error) {
	path := filepath.Join(dir, Filename(role))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cErr)
		}
	}()

	cw := csv.NewWriter(f)
	if err = cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header of %s: %w", path, err)
	}

	for _, row := range w.rows[role] {
		record := []string{
			row.Label,
			formatFloat(row.Ref.Longitude),
			formatFloat(row.Ref.Latitude),
			formatFloat(row.Ref.Altitude),
			formatFloat(row.Ref.Yaw),
			formatFloat(row.Ref.Pitch),
			formatFloat(row.Ref.Roll),
		}
		if err = cw.Write(record); err != nil {
			return fmt.Errorf("writing row of %s: %w", path, err)
		}
	}

	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// formatFloat uses the shortest representation that round-trips, so two
// runs over the same log produce byte-identical tables.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
