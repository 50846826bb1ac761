package app

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultPoseTopic = "/nav/pose"

// Config holds the packer command line configuration.
type Config struct {
	// DBPath is the mission log database to create.
	DBPath string

	// Mission is the mission name recorded in the log. Defaults to
	// the database file name without extension.
	Mission string

	// Vehicle is the vehicle name recorded in the log.
	Vehicle string

	// PosesPath is the navigation CSV file to ingest.
	PosesPath string

	// FramesDir is the directory of camera frames to ingest. Frame
	// files are named <role>_<seconds>.<ext>.
	FramesDir string

	// PoseTopic is the topic pose samples are written under.
	PoseTopic string

	// Cameras maps a frame file role prefix to its topic.
	Cameras map[string]string

	// BatchSize is the number of messages written per transaction.
	BatchSize int
}

func NewConfigFromCLI() (*Config, error) {
	config := Config{
		Cameras: make(map[string]string),
	}

	flag.StringVar(&config.DBPath, "o", "", "Path to the mission log database to create (required)")
	flag.StringVar(&config.Mission, "name", "", "Mission name (defaults to the database file name)")
	flag.StringVar(&config.Vehicle, "vehicle", "", "Vehicle name")
	flag.StringVar(&config.PosesPath, "poses", "", "Path to the navigation CSV file (required)")
	flag.StringVar(&config.FramesDir, "frames", "", "Directory of camera frame files")
	flag.StringVar(&config.PoseTopic, "pose-topic", defaultPoseTopic, "Topic to write pose samples under")
	flag.IntVar(&config.BatchSize, "batch", 100, "Messages written per transaction")
	flag.Func("camera", "Camera mapping as role=topic (repeatable)", func(s string) error {
		role, topic, ok := strings.Cut(s, "=")
		if !ok || role == "" || topic == "" {
			return fmt.Errorf("invalid camera mapping %q, expected role=topic", s)
		}
		config.Cameras[role] = topic
		return nil
	})
	flag.Parse()

	if config.DBPath == "" {
		flag.Usage()
		return nil, fmt.Errorf("missing required -o flag")
	}
	if config.PosesPath == "" {
		flag.Usage()
		return nil, fmt.Errorf("missing required -poses flag")
	}
	if _, err := os.Stat(config.PosesPath); err != nil {
		return nil, fmt.Errorf("poses file %q: %w", config.PosesPath, err)
	}
	if config.FramesDir != "" {
		if _, err := os.Stat(config.FramesDir); err != nil {
			return nil, fmt.Errorf("frames directory %q: %w", config.FramesDir, err)
		}
		if len(config.Cameras) == 0 {
			return nil, fmt.Errorf("-frames requires at least one -camera mapping")
		}
	}
	for role, topic := range config.Cameras {
		if strings.ContainsAny(role, "/\\_") {
			return nil, fmt.Errorf("camera role %q must not contain separators", role)
		}
		if topic == config.PoseTopic {
			return nil, fmt.Errorf("camera %q shares the pose topic %q", role, topic)
		}
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if config.Mission == "" {
		base := filepath.Base(config.DBPath)
		config.Mission = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &config, nil
}
