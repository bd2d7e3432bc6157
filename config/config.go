package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full pdfoutline configuration.
type Config struct {
	InputDir   string `yaml:"input_dir"`
	OutputDir  string `yaml:"output_dir"`
	SingleFile string `yaml:"single_file"`

	// Language is an explicit profile id; empty with AutoDetect set means
	// detect per file.
	Language        string `yaml:"language"`
	AutoDetect      bool   `yaml:"auto_detect"`
	DefaultLanguage string `yaml:"default_language"`
	ProfilesFile    string `yaml:"profiles_file"`

	Workers      int           `yaml:"worker_count"`
	PageWorkers  int           `yaml:"page_workers"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	FileTimeout  time.Duration `yaml:"file_timeout"`

	Verbose   bool   `yaml:"verbose"`
	Quiet     bool   `yaml:"quiet"`
	LogFile   string `yaml:"log_file"`
	LogFormat string `yaml:"log_format"` // text | json

	CachePath  string `yaml:"cache_path"`
	ReportPath string `yaml:"report_path"`
	ReportXLSX string `yaml:"report_xlsx"`

	OCR      OCRConfig      `yaml:"ocr"`
	Assembly AssemblyConfig `yaml:"assembly"`
}

// OCRConfig configures the OCR fallback.
type OCRConfig struct {
	Enabled bool `yaml:"enabled"`

	// Engine is auto | library | cli | off.
	Engine      string `yaml:"engine"`
	Tesseract   string `yaml:"tesseract"`
	TessdataDir string `yaml:"tessdata_dir"`
	PoolSize    int    `yaml:"pool_size"`

	// Rasterizer is auto | pdftoppm | embedded.
	Rasterizer string `yaml:"rasterizer"`
	Pdftoppm   string `yaml:"pdftoppm"`

	// DPI overrides the language profile's raster resolution when > 0.
	DPI         float64       `yaml:"dpi"`
	PageTimeout time.Duration `yaml:"page_timeout"`

	MinCharDensity  float64 `yaml:"min_char_density"`
	MaxGarbledRatio float64 `yaml:"max_garbled_ratio"`

	// SampleLanguages are the Tesseract codes used to OCR a sample page
	// when a scanned document's language must be detected.
	SampleLanguages string `yaml:"sample_languages"`
}

// AssemblyConfig holds the outline pruning and merge parameters.
type AssemblyConfig struct {
	AcceptThreshold  float64 `yaml:"accept_threshold"`
	RelaxedThreshold float64 `yaml:"relaxed_threshold"`
	AbundantCount    int     `yaml:"abundant_count"`
	MinSurvivors     int     `yaml:"min_survivors"`
	MinScore         float64 `yaml:"min_score"`
	MergeGapRatio    float64 `yaml:"merge_gap_ratio"`
}

// Rasterizer and engine choices.
const (
	Auto     = "auto"
	Pdftoppm = "pdftoppm"
	Embedded = "embedded"
	Library  = "library"
	CLI      = "cli"
	Off      = "off"
)

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return &Config{
		InputDir:        "input",
		OutputDir:       "output",
		Language:        "english",
		DefaultLanguage: "english",
		Workers:         workers,
		PageWorkers:     2,
		BatchTimeout:    0,
		FileTimeout:     10 * time.Minute,
		LogFormat:       "text",
		OCR: OCRConfig{
			Enabled:         true,
			Engine:          Auto,
			Tesseract:       "tesseract",
			PoolSize:        workers,
			Rasterizer:      Auto,
			Pdftoppm:        "pdftoppm",
			PageTimeout:     2 * time.Minute,
			MinCharDensity:  0.1,
			MaxGarbledRatio: 0.05,
			SampleLanguages: "eng+jpn+chi_sim+kor+ara+hin+rus",
		},
		Assembly: AssemblyConfig{
			AcceptThreshold:  0.6,
			RelaxedThreshold: 0.35,
			AbundantCount:    12,
			MinSurvivors:     3,
			MinScore:         0.2,
			MergeGapRatio:    0.6,
		},
	}
}

// Load reads and parses a YAML config file. Returns DefaultConfig merged
// with the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	var errs []error
	if c.SingleFile == "" && c.InputDir == "" {
		errs = append(errs, errors.New("input_dir or single_file is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.Language == "" && !c.AutoDetect {
		errs = append(errs, errors.New("language is required unless auto_detect is set"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("worker_count must be >= 1, got %d", c.Workers))
	}
	if c.PageWorkers < 1 {
		errs = append(errs, fmt.Errorf("page_workers must be >= 1, got %d", c.PageWorkers))
	}
	if c.BatchTimeout < 0 || c.FileTimeout < 0 || c.OCR.PageTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Verbose && c.Quiet {
		errs = append(errs, errors.New("verbose and quiet are mutually exclusive"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log_format %q (use text or json)", c.LogFormat))
	}

	switch c.OCR.Engine {
	case Auto, Library, CLI, Off:
	default:
		errs = append(errs, fmt.Errorf("ocr.engine: unsupported value %q (use auto, library, cli or off)", c.OCR.Engine))
	}
	switch c.OCR.Rasterizer {
	case Auto, Pdftoppm, Embedded:
	default:
		errs = append(errs, fmt.Errorf("ocr.rasterizer: unsupported value %q (use auto, pdftoppm or embedded)", c.OCR.Rasterizer))
	}
	if c.OCR.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("ocr.pool_size must be >= 1, got %d", c.OCR.PoolSize))
	}
	if c.OCR.DPI < 0 || c.OCR.DPI > 1200 {
		errs = append(errs, fmt.Errorf("ocr.dpi must be within 0..1200, got %v", c.OCR.DPI))
	}
	if c.OCR.MinCharDensity < 0 {
		errs = append(errs, errors.New("ocr.min_char_density must not be negative"))
	}
	if !unit(c.OCR.MaxGarbledRatio) {
		errs = append(errs, errors.New("ocr.max_garbled_ratio must be within 0..1"))
	}

	a := c.Assembly
	if !unit(a.AcceptThreshold) || !unit(a.RelaxedThreshold) || !unit(a.MinScore) {
		errs = append(errs, errors.New("assembly thresholds must be within 0..1"))
	}
	if a.RelaxedThreshold > a.AcceptThreshold {
		errs = append(errs, errors.New("assembly.relaxed_threshold must not exceed accept_threshold"))
	}
	if a.AbundantCount < 0 || a.MinSurvivors < 0 {
		errs = append(errs, errors.New("assembly counts must not be negative"))
	}
	if a.MergeGapRatio < 0 {
		errs = append(errs, errors.New("assembly.merge_gap_ratio must not be negative"))
	}
	return errors.Join(errs...)
}

// OCREngine returns the effective engine mode: off when OCR is disabled.
func (c *Config) OCREngine() string {
	if !c.OCR.Enabled {
		return Off
	}
	return c.OCR.Engine
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
