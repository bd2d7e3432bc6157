// Package config holds the pdfoutline configuration.
//
// Values are layered: DefaultConfig, then an optional YAML file (Load),
// then PDFOUTLINE_* environment variables (ApplyEnv), then command-line
// flags applied by the caller. Validate reports every invalid field at
// once.
//
//	cfg, err := config.Load("pdfoutline.yaml")
//	if err != nil { ... }
//	if err := cfg.ApplyEnv(); err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config
