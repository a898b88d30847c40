package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hejijunhao/labelprep/internal/logging"
	"github.com/hejijunhao/labelprep/internal/model"
)

// Config holds all labelprep configuration.
type Config struct {
	// DataDir is the base directory relative input and output paths resolve against.
	DataDir string
	Input   InputConfig
	Engine  EngineConfig
	Split   SplitConfig
	Output  OutputConfig
	Log     LogConfig
	HTTP    HTTPConfig
}

// InputConfig describes the annotation table layout.
type InputConfig struct {
	IDColumn    string
	TextColumn  string
	LabelColumn string // adjudicated final annotation column
	Sheet       string // xlsx sheet name; empty means the first sheet
	Encoding    string // CSV character set, e.g. "windows-1252"; empty means UTF-8
}

// EngineConfig holds normalization settings.
type EngineConfig struct {
	TaxonomyPath string // YAML taxonomy; empty uses the built-in one
	Exclude      string // comma-separated codes dropped from every record
	Workers      int
}

// SplitConfig holds stratified split settings.
type SplitConfig struct {
	Train float64
	Valid float64 // 0 disables the validation split
	Seed  uint64
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Format string // split output format: "csv", "jsonl", "xlsx", "db"
	Pretty bool   // indent JSON written to stdout
	Table  string // table name for SQLite outputs
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string
	Format string // "console" or "json"
}

// HTTPConfig holds settings for remote (http/https) inputs.
type HTTPConfig struct {
	Token   string
	Timeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DataDir: os.Getenv("LABELPREP_DATA_DIR"),
		Input: InputConfig{
			IDColumn:    getenv("LABELPREP_ID_COLUMN", "id"),
			TextColumn:  getenv("LABELPREP_TEXT_COLUMN", "text"),
			LabelColumn: getenv("LABELPREP_LABEL_COLUMN", "final_label"),
			Sheet:       os.Getenv("LABELPREP_SHEET"),
			Encoding:    os.Getenv("LABELPREP_ENCODING"),
		},
		Engine: EngineConfig{
			TaxonomyPath: os.Getenv("LABELPREP_TAXONOMY"),
			Exclude:      os.Getenv("LABELPREP_EXCLUDE"),
			Workers:      getenvInt("LABELPREP_WORKERS", runtime.GOMAXPROCS(0)),
		},
		Split: SplitConfig{
			Train: getenvFloat("LABELPREP_TRAIN_FRACTION", 0.8),
			Valid: getenvFloat("LABELPREP_VALID_FRACTION", 0),
			Seed:  getenvUint("LABELPREP_SEED", 42),
		},
		Output: OutputConfig{
			Format: getenv("LABELPREP_OUTPUT_FORMAT", "csv"),
			Pretty: os.Getenv("LABELPREP_OUTPUT_PRETTY") == "true",
			Table:  getenv("LABELPREP_SQLITE_TABLE", "records"),
		},
		Log: LogConfig{
			Level:  getenv("LABELPREP_LOG_LEVEL", "info"),
			Format: getenv("LABELPREP_LOG_FORMAT", "console"),
		},
		HTTP: HTTPConfig{
			Token:   os.Getenv("LABELPREP_HTTP_TOKEN"),
			Timeout: getenvDuration("LABELPREP_HTTP_TIMEOUT", 60*time.Second),
		},
	}
}

// Validate checks the configuration for errors. Split fractions are checked
// here so that a bad value fails before any data is read.
func (c Config) Validate() error {
	var errs []error
	if c.Input.IDColumn == "" || c.Input.TextColumn == "" || c.Input.LabelColumn == "" {
		errs = append(errs, errors.New("input column names must not be empty"))
	}
	if c.Engine.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Engine.Workers))
	}
	if path := c.Engine.TaxonomyPath; path != "" {
		if _, err := os.Stat(c.Resolve(path)); err != nil {
			errs = append(errs, fmt.Errorf("taxonomy file: %w", err))
		}
	}
	if _, err := c.ExcludeSet(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Split.Train > 0 && c.Split.Train < 1) {
		errs = append(errs, &model.Error{Kind: model.InvalidFraction, Detail: fmt.Sprintf("train fraction %v not in (0,1)", c.Split.Train)})
	}
	if c.Split.Valid != 0 && !(c.Split.Valid > 0 && c.Split.Valid < 1) {
		errs = append(errs, &model.Error{Kind: model.InvalidFraction, Detail: fmt.Sprintf("validation fraction %v not in (0,1)", c.Split.Valid)})
	}
	switch c.Output.Format {
	case "csv", "jsonl", "xlsx", "db":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}
	if err := logging.ValidFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %v", c.HTTP.Timeout))
	}
	return errors.Join(errs...)
}

// ExcludeSet parses Engine.Exclude.
func (c Config) ExcludeSet() (model.CodeSet, error) {
	codes, err := ParseCodes(c.Engine.Exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return model.NewCodeSet(codes...), nil
}

// Resolve returns path joined to DataDir unless it is absolute, a URL,
// "-" (stdout), or DataDir is unset.
func (c Config) Resolve(path string) string {
	if c.DataDir == "" || path == "" || path == "-" || filepath.IsAbs(path) || IsURL(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// ParseCodes parses a comma-separated list of non-negative integer codes.
func ParseCodes(s string) ([]model.Code, error) {
	var out []model.Code
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid label code %q", part)
		}
		out = append(out, model.Code(n))
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
