package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/auvtools/georef/internal/mission"
)

// poseColumns is the expected navigation CSV header. Column order matches
// the pose payload field order, prefixed with the sample timestamp.
var poseColumns = []string{
	"timestamp",
	"longitude",
	"latitude",
	"depth",
	"heading",
	"pitch",
	"roll",
	"altitude_used",
}

// Run builds a mission log database from a navigation CSV and an optional
// directory of camera frames.
func Run(config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err == nil {
		return fmt.Errorf("mission log %q already exists", config.DBPath)
	}

	messages, poseCount, err := readPoses(config.PosesPath, config.PoseTopic)
	if err != nil {
		return fmt.Errorf("reading poses: %w", err)
	}

	var frameCount int
	if config.FramesDir != "" {
		frames, err := readFrames(config.FramesDir, config.Cameras)
		if err != nil {
			return fmt.Errorf("reading frames: %w", err)
		}
		frameCount = len(frames)
		messages = append(messages, frames...)
	}

	slices.SortStableFunc(messages, func(a, b mission.Message) int {
		switch {
		case a.TimestampNs < b.TimestampNs:
			return -1
		case a.TimestampNs > b.TimestampNs:
			return 1
		default:
			return 0
		}
	})

	store := mission.NewStore(config.DBPath)
	defer store.Close()

	if _, err := store.CreateMission(config.Mission, config.Vehicle); err != nil {
		return fmt.Errorf("creating mission: %w", err)
	}
	for batch := range slices.Chunk(messages, config.BatchSize) {
		if err := store.BatchInsertMessages(batch); err != nil {
			return fmt.Errorf("writing messages: %w", err)
		}
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing mission log: %w", err)
	}

	logger.Info("Mission log written",
		slog.String("path", config.DBPath),
		slog.String("mission", config.Mission),
		slog.String("poseSamples", humanize.Comma(int64(poseCount))),
		slog.String("frames", humanize.Comma(int64(frameCount))))
	return nil
}

// readPoses parses the navigation CSV into pose messages. The header row
// is mandatory and must match poseColumns exactly.
func readPoses(path, topic string) ([]mission.Message, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(poseColumns)

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	if !slices.Equal(header, poseColumns) {
		return nil, 0, fmt.Errorf("unexpected header %v, want %v", header, poseColumns)
	}

	var messages []mission.Message
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		var fields [8]float64
		for i, s := range row {
			if fields[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, 0, fmt.Errorf("line %d, column %s: %w", line, poseColumns[i], err)
			}
		}

		payload := mission.EncodePose(mission.PoseSample{
			Longitude:    fields[1],
			Latitude:     fields[2],
			Depth:        fields[3],
			Heading:      fields[4],
			Pitch:        fields[5],
			Roll:         fields[6],
			AltitudeUsed: fields[7],
		})
		messages = append(messages, mission.Message{
			Topic:       topic,
			TimestampNs: int64(fields[0] * 1e9),
			Payload:     payload,
		})
	}
	return messages, len(messages), nil
}

// readFrames collects camera frames from a directory. Files are named
// <role>_<seconds>.<ext> and stored verbatim as compressed payloads, so
// only PNG and JPEG frames are accepted.
func readFrames(dir string, cameras map[string]string) ([]mission.Message, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var messages []mission.Message
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		role, timestamp, err := parseFrameName(entry.Name())
		if err != nil {
			return nil, err
		}
		topic, ok := cameras[role]
		if !ok {
			return nil, fmt.Errorf("frame %q: no -camera mapping for role %q", entry.Name(), role)
		}

		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		messages = append(messages, mission.Message{
			Topic:       topic,
			TimestampNs: int64(timestamp * 1e9),
			Payload:     payload,
		})
	}
	return messages, nil
}

func parseFrameName(name string) (role string, timestamp float64, err error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return "", 0, fmt.Errorf("frame %q: unsupported extension %q", name, ext)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	role, stamp, ok := strings.Cut(stem, "_")
	if !ok {
		return "", 0, fmt.Errorf("frame %q: expected <role>_<seconds> name", name)
	}
	if timestamp, err = strconv.ParseFloat(stamp, 64); err != nil {
		return "", 0, fmt.Errorf("frame %q: bad timestamp: %w", name, err)
	}
	return role, timestamp, nil
}
