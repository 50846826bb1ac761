package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/auvtools/georef/internal/mission"
	"github.com/auvtools/georef/internal/pipeline"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger, logLevel *slog.LevelVar) error {
	if _, err := os.Stat(config.LogPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("mission log '%s' does not exist: %w", config.LogPath, err)
	}

	missionConfig, err := LoadMissionConfig(config.MissionPath)
	if err != nil {
		return err
	}
	logLevel.Set(missionConfig.Level())

	if err = filterRoles(missionConfig, config.Roles); err != nil {
		return err
	}

	topics, err := missionConfig.TopicMap()
	if err != nil {
		return fmt.Errorf("invalid camera mapping: %w", err)
	}

	// Each log gets its own run directory named after the log file stem.
	missionName := strings.TrimSuffix(filepath.Base(config.LogPath), filepath.Ext(config.LogPath))
	outputDir := filepath.Join(config.OutputDir, missionName)
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	logger.Info("starting extraction",
		slog.String("log", config.LogPath),
		slog.String("output", outputDir),
		slog.String("poseTopic", topics.PoseTopic()),
		slog.Int("cameras", len(topics.Roles())))

	src, err := mission.OpenSource(config.LogPath, topics)
	if err != nil {
		return err
	}
	defer src.Close()

	pipe := pipeline.New(pipeline.Config{
		Mission:        missionName,
		OutputDir:      outputDir,
		Topics:         topics,
		MatchTolerance: missionConfig.Match.ToleranceSeconds,
		GapThreshold:   missionConfig.Match.GapThresholdSeconds,
		Yaw:            missionConfig.Convention(),
	}, logger)

	summary, err := pipe.Run(ctx, src)
	if err != nil {
		return err
	}

	reportSummary(logger, outputDir, topics, summary)
	return nil
}

// filterRoles narrows the configured cameras to the roles named on the
// command line. A role not present in the mission config is a hard error,
// not a silent no-op.
func filterRoles(c *MissionConfig, roles []string) error {
	if len(roles) == 0 {
		return nil
	}

	keep := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if _, ok := c.Cameras[role]; !ok {
			return fmt.Errorf("role %q is not defined in the mission configuration", role)
		}
		keep[role] = struct{}{}
	}
	for role := range c.Cameras {
		if _, ok := keep[role]; !ok {
			delete(c.Cameras, role)
		}
	}
	return nil
}

func reportSummary(logger *slog.Logger, outputDir string, topics mission.TopicMap, summary *pipeline.RunSummary) {
	attrs := []any{
		slog.String("output", outputDir),
		slog.String("poseSamples", humanize.Comma(int64(summary.PoseSamples))),
		slog.String("savedFrames", humanize.Comma(int64(summary.TotalSaved()))),
		slog.String("referenceRows", humanize.Comma(int64(summary.TotalMatched()))),
	}
	if summary.NoPoseData {
		logger.Warn("extraction complete without pose data", attrs...)
	} else {
		logger.Info("extraction complete", attrs...)
	}

	for _, role := range topics.Roles() {
		stats := summary.Roles[role]
		logger.Info("camera output",
			slog.String("role", string(role)),
			slog.String("images", filepath.Join(outputDir, fmt.Sprintf("%s_images", role))),
			slog.String("reference", filepath.Join(outputDir, fmt.Sprintf("%s_reference.csv", role))),
			slog.Int("saved", stats.Saved),
			slog.Int("matched", stats.Matched),
			slog.Int("decodeFailures", stats.DecodeFailures))
	}

	logger.Info("photogrammetry import",
		slog.String("crs", "WGS84"),
		slog.String("columns", "label=1, lon=2, lat=3, alt=4, yaw=5, pitch=6, roll=7"))
}
