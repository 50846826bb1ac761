package app

import (
	"errors"
	"flag"
)

// Config is the extractor's command-line surface. The topic mapping and
// matching knobs live in the mission configuration file, not in flags.
type Config struct {
	LogPath     string
	MissionPath string
	OutputDir   string

	// Roles restricts extraction to a subset of the configured camera
	// roles. Empty means all of them.
	Roles []string
}

func NewConfig() *Config {
	return &Config{OutputDir: "."}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	flag.StringVar(&c.LogPath, "log", "", "Path to the recorded mission log (SQLite)")
	flag.StringVar(&c.MissionPath, "c", "", "Path to the mission configuration file (YAML)")
	flag.StringVar(&c.OutputDir, "o", c.OutputDir, "Output directory (a subdirectory named after the log is created)")
	flag.Func("role", "Extract only this camera role (repeatable; default all)", func(s string) error {
		if s == "" {
			return errors.New("role must not be empty")
		}
		c.Roles = append(c.Roles, s)
		return nil
	})
	flag.Parse()

	var err error
	if c.LogPath == "" {
		err = errors.New("mission log path is required")
	} else if c.MissionPath == "" {
		err = errors.New("mission configuration file is required")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}
