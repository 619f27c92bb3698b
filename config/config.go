/*
	Package config loads the TOML configuration of sp2body.  Command-line flags
	override any setting given here.

	Example:

		[logging]
		logfile = "sp2body.log"   # relative to this file
		max_log_size = 500        # MB
		max_log_age = 30          # days

		[input]
		plane_pattern = '^.*\D(\d+)\.png$'

		[output]
		format = "n5"
		dataset = "bodies"
		compression = "gzip"
		level = 1
		chunk_size = [64, 64, 64]

		[processing]
		numcpu = 8
*/
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/raveler"
	"github.com/janelia-flyem/sp2body/storage"
)

type Config struct {
	Logging    dvid.LogConfig   `toml:"logging"`
	Input      InputConfig      `toml:"input"`
	Output     OutputConfig     `toml:"output"`
	Processing ProcessingConfig `toml:"processing"`
}

type InputConfig struct {
	PlanePattern string `toml:"plane_pattern"`
}

type OutputConfig struct {
	Format      string  `toml:"format"` // empty selects the format by output extension
	Dataset     string  `toml:"dataset"`
	Compression string  `toml:"compression"`
	Level       int     `toml:"level"`
	ChunkSize   []int32 `toml:"chunk_size"`
	Checksum    bool    `toml:"checksum"`
}

type ProcessingConfig struct {
	NumCPU int `toml:"numcpu"` // 0 uses all logical CPUs
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	sc := storage.DefaultConfig()
	return &Config{
		Input: InputConfig{PlanePattern: raveler.DefaultPlanePattern},
		Output: OutputConfig{
			Dataset:     sc.Dataset,
			Compression: sc.Compression,
			Level:       sc.Level,
			ChunkSize:   []int32{sc.ChunkSize[0], sc.ChunkSize[1], sc.ChunkSize[2]},
		},
	}
}

// Load reads a TOML configuration file over the defaults.  Unknown keys are
// an error so typos don't silently fall back to defaults.
func Load(filename string) (*Config, error) {
	c := Default()
	defaultChunkSize := c.Output.ChunkSize
	c.Output.ChunkSize = nil
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	if !md.IsDefined("output", "chunk_size") {
		c.Output.ChunkSize = defaultChunkSize
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown settings in %s: %s", filename, strings.Join(keys, ", "))
	}
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("bad config %s: %v", filename, err)
	}
	return c, nil
}

func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error
	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = dvid.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}
	return nil
}

// Validate checks settings that can be checked without any input files.
func (c *Config) Validate() error {
	if _, err := c.PlaneRegexp(); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if _, err := storage.GetEngine(c.Output.Format); err != nil {
			return err
		}
	}
	if _, err := c.chunkSize(); err != nil {
		return err
	}
	if c.Processing.NumCPU < 0 {
		return fmt.Errorf("numcpu must be non-negative, got %d", c.Processing.NumCPU)
	}
	return nil
}

// PlaneRegexp returns the compiled plane pattern.  It must have one subexpression
// capturing the plane number.
func (c *Config) PlaneRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.Input.PlanePattern)
	if err != nil {
		return nil, fmt.Errorf("bad plane_pattern %q: %v", c.Input.PlanePattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("plane_pattern %q needs a subexpression capturing the plane number", c.Input.PlanePattern)
	}
	return re, nil
}

func (c *Config) chunkSize() (dvid.Point3d, error) {
	var size dvid.Point3d
	if len(c.Output.ChunkSize) != 3 {
		return size, fmt.Errorf("chunk_size needs 3 values, got %v", c.Output.ChunkSize)
	}
	for i, v := range c.Output.ChunkSize {
		if v <= 0 {
			return size, fmt.Errorf("chunk_size values must be positive, got %v", c.Output.ChunkSize)
		}
		size[i] = v
	}
	return size, nil
}

// StorageConfig returns the settings passed to a volume format.
func (c *Config) StorageConfig() storage.Config {
	size, err := c.chunkSize()
	if err != nil {
		size = storage.DefaultConfig().ChunkSize
	}
	return storage.Config{
		Dataset:     c.Output.Dataset,
		Compression: c.Output.Compression,
		Level:       c.Output.Level,
		ChunkSize:   size,
		Checksum:    c.Output.Checksum,
	}
}
