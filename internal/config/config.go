// Package config provides TOML-based application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"pcb-netlist/internal/spatial"
)

const (
	appDir     = "pcb-netlist"
	configFile = "config.toml"
)

// ErrUnknownIndex is returned when the configured spatial index is not recognised.
var ErrUnknownIndex = errors.New("unknown spatial index")

// Connectivity configures the net builder.
type Connectivity struct {
	Index         string  `toml:"index"`          // "rtree", "grid" or "brute"
	CellSize      float64 `toml:"cell_size"`      // Grid cell edge, board units
	Workers       int     `toml:"workers"`        // Candidate-check goroutines; 1 = sequential
	ProgressEvery int     `toml:"progress_every"` // Verbose progress log interval, in primitives
}

// Log configures logging.
type Log struct {
	Verbose bool `toml:"verbose"`
}

// Config is the application configuration.
type Config struct {
	Connectivity Connectivity `toml:"connectivity"`
	Log          Log          `toml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Connectivity: Connectivity{
			Index:         spatial.KindRTree.String(),
			CellSize:      spatial.DefaultCellSize,
			Workers:       1,
			ProgressEvery: 100,
		},
	}
}

// DefaultPath returns ~/.config/pcb-netlist/config.toml, or the platform
// equivalent.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load reads the configuration at path, or DefaultPath when path is empty.
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Printf("Config: ignoring unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// Validate normalises out-of-range values to their defaults and rejects
// unknown index kinds.
func (c *Config) Validate() error {
	def := Default().Connectivity

	kind, err := spatial.ParseKind(c.Connectivity.Index)
	if err != nil {
		return fmt.Errorf("%w %q", ErrUnknownIndex, c.Connectivity.Index)
	}
	c.Connectivity.Index = kind.String()

	if c.Connectivity.CellSize <= 0 {
		c.Connectivity.CellSize = def.CellSize
	}
	if c.Connectivity.Workers < 1 {
		c.Connectivity.Workers = 1
	}
	if c.Connectivity.ProgressEvery < 1 {
		c.Connectivity.ProgressEvery = def.ProgressEvery
	}
	return nil
}

// IndexKind returns the configured spatial index, falling back to the
// R-tree for an unparseable name.
func (c Connectivity) IndexKind() spatial.Kind {
	kind, err := spatial.ParseKind(c.Index)
	if err != nil {
		return spatial.KindRTree
	}
	return kind
}
