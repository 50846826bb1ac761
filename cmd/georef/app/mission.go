package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/auvtools/georef/internal/georef"
	"github.com/auvtools/georef/internal/mission"
)

const (
	defaultTolerance    = 3.0
	defaultGapThreshold = 2.0
)

// MissionConfig is the YAML mission configuration: which topics carry
// what, and the matching knobs.
type MissionConfig struct {
	LogLevel  string                  `yaml:"logLevel"`
	PoseTopic string                  `yaml:"poseTopic"`
	Cameras   map[string]CameraConfig `yaml:"cameras"`
	Match     MatchConfig             `yaml:"match"`
	Yaw       YawConfig               `yaml:"yaw"`
}

// CameraConfig binds one camera role to its recorded topic.
type CameraConfig struct {
	Topic    string `yaml:"topic"`
	Encoding string `yaml:"encoding"`
}

// MatchConfig holds the temporal alignment thresholds in seconds.
type MatchConfig struct {
	ToleranceSeconds    float64 `yaml:"toleranceSeconds"`
	GapThresholdSeconds float64 `yaml:"gapThresholdSeconds"`
}

// YawConfig selects the downstream yaw convention. The zero value is the
// identity convention: compass heading passes through unchanged.
type YawConfig struct {
	OffsetDeg        float64 `yaml:"offsetDeg"`
	CounterClockwise bool    `yaml:"counterClockwise"`
}

// LoadMissionConfig reads and validates a mission configuration file,
// applying defaults for omitted thresholds.
func LoadMissionConfig(path string) (*MissionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mission config: %w", err)
	}

	var c MissionConfig
	if err = yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing mission config: %w", err)
	}

	if c.PoseTopic == "" {
		return nil, fmt.Errorf("mission config: poseTopic is required")
	}
	if len(c.Cameras) == 0 {
		return nil, fmt.Errorf("mission config: at least one camera is required")
	}
	if c.Match.ToleranceSeconds == 0 {
		c.Match.ToleranceSeconds = defaultTolerance
	}
	if c.Match.ToleranceSeconds < 0 {
		return nil, fmt.Errorf("mission config: toleranceSeconds must be positive")
	}
	if c.Match.GapThresholdSeconds == 0 {
		c.Match.GapThresholdSeconds = defaultGapThreshold
	}
	if c.Match.GapThresholdSeconds < 0 {
		return nil, fmt.Errorf("mission config: gapThresholdSeconds must be positive")
	}
	return &c, nil
}

// TopicMap builds the immutable topic mapping the source filters by.
func (c *MissionConfig) TopicMap() (mission.TopicMap, error) {
	cameras := make(map[mission.Role]mission.Camera, len(c.Cameras))
	for role, cam := range c.Cameras {
		cameras[mission.Role(role)] = mission.Camera{
			Topic:    cam.Topic,
			Encoding: mission.Encoding(cam.Encoding),
		}
	}
	return mission.NewTopicMap(c.PoseTopic, cameras)
}

// Convention returns the configured yaw convention.
func (c *MissionConfig) Convention() georef.Convention {
	return georef.Convention{
		OffsetDeg: c.Yaw.OffsetDeg,
		Clockwise: !c.Yaw.CounterClockwise,
	}
}

// Level parses the configured log level, defaulting to info.
func (c *MissionConfig) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
