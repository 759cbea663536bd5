package hsafgrib

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed etc/hsaf_grib.yaml
var defaultConfigYAML []byte

// Config is a reader configuration: which files the reader accepts and
// which datasets they provide.
type Config struct {
	Reader    ReaderInfo             `yaml:"reader"`
	FileTypes map[string]FileType    `yaml:"file_types"`
	Datasets  map[string]DatasetInfo `yaml:"datasets"`
}

// ReaderInfo describes the reader.
type ReaderInfo struct {
	Name        string   `yaml:"name"`
	ShortName   string   `yaml:"short_name"`
	LongName    string   `yaml:"long_name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Sensors     []string `yaml:"sensors"`
}

// FileType describes one kind of input file.
type FileType struct {
	FileReader   string   `yaml:"file_reader"`
	FilePatterns []string `yaml:"file_patterns"`
}

// DatasetInfo describes one dataset. Name defaults to the dataset's key
// in the configuration.
type DatasetInfo struct {
	Name         string `yaml:"name"`
	FileType     string `yaml:"file_type"`
	Units        string `yaml:"units"`
	StandardName string `yaml:"standard_name"`
	LongName     string `yaml:"long_name"`
	Accumulated  bool   `yaml:"accumulated"`
}

// DefaultConfig returns the built-in H-SAF GRIB reader configuration.
func DefaultConfig() (*Config, error) {
	return ParseConfig(defaultConfigYAML)
}

// LoadConfig reads a reader configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML reader configuration. Unknown
// fields are rejected.
func ParseConfig(b []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for key, ds := range cfg.Datasets {
		if ds.Name == "" {
			ds.Name = key
			cfg.Datasets[key] = ds
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration names a reader, that every file
// pattern compiles and that every dataset refers to a known file type.
func (c *Config) Validate() error {
	if c.Reader.Name == "" {
		return fmt.Errorf("%w: reader name is empty", ErrInvalidConfig)
	}
	if len(c.FileTypes) == 0 {
		return fmt.Errorf("%w: no file types", ErrInvalidConfig)
	}
	for name, ft := range c.FileTypes {
		if len(ft.FilePatterns) == 0 {
			return fmt.Errorf("%w: file type %q has no file patterns", ErrInvalidConfig, name)
		}
		for _, p := range ft.FilePatterns {
			if _, err := CompilePattern(p); err != nil {
				return fmt.Errorf("%w: file type %q: %w", ErrInvalidConfig, name, err)
			}
		}
	}
	for key, ds := range c.Datasets {
		if _, ok := c.FileTypes[ds.FileType]; !ok {
			return fmt.Errorf("%w: dataset %q refers to unknown file type %q", ErrInvalidConfig, key, ds.FileType)
		}
	}
	return nil
}
