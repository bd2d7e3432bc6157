package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PDFOUTLINE_"

// ApplyEnv overrides fields from PDFOUTLINE_* environment variables.
// TESSDATA_PREFIX is honoured when no tessdata directory is configured.
func (c *Config) ApplyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("INPUT_DIR", &c.InputDir)
	str("OUTPUT_DIR", &c.OutputDir)
	str("LANGUAGE", &c.Language)
	boolean("AUTO_DETECT", &c.AutoDetect)
	str("DEFAULT_LANGUAGE", &c.DefaultLanguage)
	str("PROFILES_FILE", &c.ProfilesFile)
	integer("WORKERS", &c.Workers)
	integer("PAGE_WORKERS", &c.PageWorkers)
	duration("BATCH_TIMEOUT", &c.BatchTimeout)
	duration("FILE_TIMEOUT", &c.FileTimeout)
	boolean("VERBOSE", &c.Verbose)
	str("LOG_FILE", &c.LogFile)
	str("LOG_FORMAT", &c.LogFormat)
	str("CACHE_PATH", &c.CachePath)
	str("REPORT_PATH", &c.ReportPath)
	str("REPORT_XLSX", &c.ReportXLSX)

	boolean("OCR_ENABLED", &c.OCR.Enabled)
	str("OCR_ENGINE", &c.OCR.Engine)
	str("TESSERACT", &c.OCR.Tesseract)
	str("TESSDATA_DIR", &c.OCR.TessdataDir)
	integer("OCR_POOL_SIZE", &c.OCR.PoolSize)
	str("RASTERIZER", &c.OCR.Rasterizer)
	str("PDFTOPPM", &c.OCR.Pdftoppm)
	float("OCR_DPI", &c.OCR.DPI)
	duration("OCR_PAGE_TIMEOUT", &c.OCR.PageTimeout)
	float("MIN_CHAR_DENSITY", &c.OCR.MinCharDensity)
	str("SAMPLE_LANGUAGES", &c.OCR.SampleLanguages)

	if c.OCR.TessdataDir == "" {
		c.OCR.TessdataDir = os.Getenv("TESSDATA_PREFIX")
	}
	return errors.Join(errs...)
}
