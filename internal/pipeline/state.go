package pipeline

import (
	"fmt"

	"github.com/auvtools/georef/internal/mission"
	"github.com/auvtools/georef/internal/pose"
	"github.com/auvtools/georef/internal/trackmap"
)

// State is the pipeline phase. Transitions are strictly sequential; the
// pose track is frozen before Matching begins, which is what makes a
// future parallel matcher safe without locks.
type State int

const (
	StateIdle State = iota
	StateIngesting
	StateMatching
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIngesting:
		return "ingesting"
	case StateMatching:
		return "matching"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConfigError reports a configured camera role whose topic the source log
// never recorded. It is fatal and surfaced before any output is written.
type ConfigError struct {
	Role  mission.Role
	Topic string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("camera role %q: topic %q not present in the source log", e.Role, e.Topic)
}

// RoleStats counts per-camera outcomes for one run.
type RoleStats struct {
	Frames         int // Frames seen in the log
	Saved          int // Frames decoded and written to disk
	Matched        int // Frames with a reference row; Matched <= Saved
	DecodeFailures int // Frames skipped as undecodable
}

// RunSummary is the completed-run report. NoPoseData flags the run-level
// warning condition: images extracted, reference tables header-only.
type RunSummary struct {
	PoseSamples int
	NoPoseData  bool
	Gaps        pose.GapReport
	Track       trackmap.Summary
	Roles       map[mission.Role]RoleStats
}

// TotalSaved sums saved frames across roles.
func (s *RunSummary) TotalSaved() int {
	var n int
	for _, stats := range s.Roles {
		n += stats.Saved
	}
	return n
}

// TotalMatched sums reference rows across roles.
func (s *RunSummary) TotalMatched() int {
	var n int
	for _, stats := range s.Roles {
		n += stats.Matched
	}
	return n
}
