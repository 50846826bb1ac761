// Package pipeline drives one extraction run: a single pass over the
// mission log, then matching, then output finalization.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/auvtools/georef/internal/georef"
	"github.com/auvtools/georef/internal/imagery"
	"github.com/auvtools/georef/internal/mission"
	"github.com/auvtools/georef/internal/pose"
	"github.com/auvtools/georef/internal/reference"
	"github.com/auvtools/georef/internal/trackmap"
)

const progressEvery = 20 // Frames between progress log lines

// Source is the record stream a run consumes. *mission.Source satisfies
// it; tests use in-memory implementations.
type Source interface {
	// Topics lists the distinct topics present in the log, so absent
	// camera topics are rejected before any output is written.
	Topics() ([]string, error)

	Next() bool
	Record() mission.Record
	Err() error
}

// Config is the immutable per-run configuration. It is passed in at
// construction; nothing is looked up ambiently.
type Config struct {
	Mission   string // Mission name, used on the map panel
	OutputDir string // Existing, writable run directory

	Topics         mission.TopicMap
	MatchTolerance float64 // Seconds
	GapThreshold   float64 // Seconds
	Yaw            georef.Convention
}

// Pipeline owns all per-run state: the pose track, per-role frame
// buffers, and the reference accumulator. Nothing else holds a reference
// to them, and a pipeline runs exactly once.
type Pipeline struct {
	config  Config
	logger  *slog.Logger
	state   State
	track   *pose.Track
	matcher *georef.Matcher
	writer  *reference.Writer
	buffers map[mission.Role][]mission.ImageSample
}

// New builds a pipeline in the Idle state.
func New(config Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		config:  config,
		logger:  logger,
		state:   StateIdle,
		track:   pose.NewTrack(),
		matcher: georef.NewMatcher(config.MatchTolerance, config.Yaw),
		writer:  reference.NewWriter(config.Topics.Roles()),
		buffers: make(map[mission.Role][]mission.ImageSample),
	}
}

// State reports the current phase.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes the full extraction. Frames are buffered during the log
// pass because the pose samples bracketing a frame may arrive after it;
// matching starts only once the track is frozen. Per-frame decode
// failures are logged and skipped; every other error aborts the run.
func (p *Pipeline) Run(ctx context.Context, src Source) (*RunSummary, error) {
	if p.state != StateIdle {
		return nil, fmt.Errorf("pipeline already ran (state %s)", p.state)
	}

	if err := p.checkTopics(src); err != nil {
		return nil, err
	}

	summary := &RunSummary{Roles: make(map[mission.Role]RoleStats)}
	for _, role := range p.config.Topics.Roles() {
		summary.Roles[role] = RoleStats{}
	}

	p.advance(StateIngesting)
	if err := p.ingest(ctx, src, summary); err != nil {
		return nil, fmt.Errorf("ingesting: %w", err)
	}

	p.advance(StateMatching)
	p.track.Finalize()
	summary.PoseSamples = p.track.Len()
	if summary.PoseSamples == 0 {
		// Images are still extracted; every reference table will be
		// header-only and the map degenerate.
		summary.NoPoseData = true
		p.logger.Warn("no pose samples in source stream, reference tables will be empty")
	}
	if err := p.match(summary); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	p.advance(StateFinalizing)
	if err := p.finalize(summary); err != nil {
		return nil, fmt.Errorf("finalizing: %w", err)
	}

	p.advance(StateDone)
	return summary, nil
}

// checkTopics rejects a configuration naming camera topics the log never
// recorded. This is fatal before any output is written: a silently empty
// export for a misconfigured role is worse than a failed run.
func (p *Pipeline) checkTopics(src Source) error {
	topics, err := src.Topics()
	if err != nil {
		return fmt.Errorf("listing source topics: %w", err)
	}

	present := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		present[topic] = struct{}{}
	}

	for _, role := range p.config.Topics.Roles() {
		topic, _ := p.config.Topics.CameraTopic(role)
		if _, ok := present[topic]; !ok {
			return &ConfigError{Role: role, Topic: topic}
		}
	}
	return nil
}

func (p *Pipeline) ingest(ctx context.Context, src Source, summary *RunSummary) error {
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch r := src.Record(); r.Kind {
		case mission.KindPose:
			p.track.Append(*r.Pose)

		case mission.KindImage:
			role := r.Image.Role
			p.buffers[role] = append(p.buffers[role], *r.Image)

			stats := summary.Roles[role]
			stats.Frames++
			summary.Roles[role] = stats
		}
	}
	if err := src.Err(); err != nil {
		return err
	}

	p.logger.Info("log pass complete",
		slog.Int("poseSamples", p.track.Len()),
		slog.Int("bufferedFrames", bufferedCount(p.buffers)))
	return nil
}

func (p *Pipeline) match(summary *RunSummary) error {
	for _, role := range p.config.Topics.Roles() {
		imageDir := filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_images", role))
		if err := os.MkdirAll(imageDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", imageDir, err)
		}

		stats := summary.Roles[role]
		for _, sample := range p.buffers[role] {
			img, err := imagery.Decode(sample)
			if err != nil {
				// One bad frame never aborts the run. It is neither
				// saved nor referenced.
				stats.DecodeFailures++
				p.logger.Warn("skipping undecodable frame",
					slog.String("role", string(role)),
					slog.Float64("timestamp", sample.Timestamp),
					slog.String("error", err.Error()))
				continue
			}

			label := fmt.Sprintf("%s_%04d.jpg", role, stats.Saved)
			if err = imagery.SaveJPEG(filepath.Join(imageDir, label), img); err != nil {
				return err
			}
			stats.Saved++

			ref, ok, err := p.matcher.Match(sample.Timestamp, p.track)
			if err != nil {
				return err
			}
			if ok {
				p.writer.Add(role, reference.Row{Label: label, Ref: ref})
				stats.Matched++
			}

			if stats.Saved%progressEvery == 0 {
				p.logger.Info("extracting frames",
					slog.String("role", string(role)),
					slog.Int("saved", stats.Saved))
			}
		}
		summary.Roles[role] = stats

		p.logger.Info("camera role processed",
			slog.String("role", string(role)),
			slog.Int("saved", stats.Saved),
			slog.Int("matched", stats.Matched),
			slog.Int("decodeFailures", stats.DecodeFailures))
	}

	// Buffered payloads are consumed exactly once.
	clear(p.buffers)
	return nil
}

func (p *Pipeline) finalize(summary *RunSummary) error {
	if err := p.writer.WriteAll(p.config.OutputDir); err != nil {
		return fmt.Errorf("writing reference tables: %w", err)
	}

	gaps, err := p.track.Gaps(p.config.GapThreshold)
	if err != nil {
		return fmt.Errorf("scanning pose gaps: %w", err)
	}
	summary.Gaps = gaps
	if gaps.Count > 0 {
		p.logger.Warn("pose stream has sampling gaps",
			slog.Int("count", gaps.Count),
			slog.Float64("thresholdSeconds", gaps.Threshold),
			slog.Float64("widestSeconds", gaps.Widest),
			slog.Float64("widestAt", gaps.WidestAt))
	}

	track, err := trackmap.Summarize(p.track)
	if err != nil {
		return fmt.Errorf("summarizing track: %w", err)
	}
	summary.Track = track

	renderer, err := trackmap.NewRenderer(trackmap.RenderConfig{})
	if err != nil {
		return fmt.Errorf("creating map renderer: %w", err)
	}

	images := make(map[mission.Role]int, len(summary.Roles))
	for role, stats := range summary.Roles {
		images[role] = stats.Saved
	}

	img, err := renderer.Render(track, trackmap.Info{Mission: p.config.Mission, Images: images})
	if err != nil {
		return fmt.Errorf("rendering mission map: %w", err)
	}
	return trackmap.WritePNG(filepath.Join(p.config.OutputDir, trackmap.MapFilename), img)
}

// advance enforces the Idle, Ingesting, Matching, Finalizing, Done order. A
// skipped state is an orchestration defect, never a data condition.
func (p *Pipeline) advance(to State) {
	if to != p.state+1 {
		panic(fmt.Sprintf("pipeline: invalid transition %s -> %s", p.state, to))
	}
	p.state = to
}

func bufferedCount(buffers map[mission.Role][]mission.ImageSample) int {
	var n int
	for _, frames := range buffers {
		n += len(frames)
	}
	return n
}
