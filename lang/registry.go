package lang

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/pdfoutline/model"
)

//go:embed profiles.yaml
var builtinProfiles []byte

// Registry holds the language profiles available to the pipeline. It is
// built once and never mutated, so it is safe for concurrent use without
// locking.
type Registry struct {
	profiles  []*Profile
	byKey     map[string]*Profile
	defaultID string
}

// NewRegistry validates the profiles and indexes them by id and alias.
// defaultID must name one of the profiles.
func NewRegistry(defaultID string, profiles ...*Profile) (*Registry, error) {
	r := &Registry{byKey: make(map[string]*Profile)}
	for _, p := range profiles {
		if err := p.compile(); err != nil {
			return nil, err
		}
		for _, key := range append([]string{p.ID}, p.Aliases...) {
			key = strings.ToLower(key)
			if prev, dup := r.byKey[key]; dup && prev != p {
				return nil, fmt.Errorf("language key %q used by %s and %s", key, prev.ID, p.ID)
			}
			r.byKey[key] = p
		}
		r.profiles = append(r.profiles, p)
	}
	if len(r.profiles) == 0 {
		return nil, fmt.Errorf("no language profiles")
	}

	if defaultID == "" {
		defaultID = r.profiles[0].ID
	}
	p, ok := r.byKey[strings.ToLower(defaultID)]
	if !ok {
		return nil, &UnknownLanguageError{ID: defaultID, Known: r.IDs()}
	}
	r.defaultID = p.ID
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded profile table. It is
// parsed on first use and shared by every caller afterward.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := LoadRegistry(bytes.NewReader(builtinProfiles))
		if err != nil {
			panic(fmt.Sprintf("lang: built-in profiles: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Get returns the profile registered under id or one of its aliases.
// Lookup is case-insensitive.
func (r *Registry) Get(id string) (*Profile, error) {
	if p, ok := r.byKey[strings.ToLower(strings.TrimSpace(id))]; ok {
		return p, nil
	}
	return nil, &UnknownLanguageError{ID: id, Known: r.IDs()}
}

// List returns the profiles in declaration order.
func (r *Registry) List() []*Profile {
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// IDs returns the profile ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		ids[i] = p.ID
	}
	return ids
}

// DefaultID returns the id of the fallback language.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// profileFile is the YAML layout of a profile table.
type profileFile struct {
	Default  string                `yaml:"default"`
	RuleSets map[string][]ruleSpec `yaml:"rule_sets"`
	Profiles []profileSpec         `yaml:"profiles"`
}

type ruleSpec struct {
	ID         string             `yaml:"id"`
	Pattern    string             `yaml:"pattern"`
	Level      model.HeadingLevel `yaml:"level"`
	Confidence float64            `yaml:"confidence"`
	Label      bool               `yaml:"label"`
	Keyword    bool               `yaml:"keyword"`
	Strength   float64            `yaml:"strength"`
	Include    string             `yaml:"include"`
}

type profileSpec struct {
	ID                  string               `yaml:"id"`
	Name                string               `yaml:"name"`
	Tag                 string               `yaml:"tag"`
	OCRCode             string               `yaml:"ocr_code"`
	Aliases             []string             `yaml:"aliases"`
	Scripts             []string             `yaml:"scripts"`
	Levels              []model.HeadingLevel `yaml:"levels"`
	MinHeadingFontRatio float64              `yaml:"min_heading_font_ratio"`
	MinLineLength       int                  `yaml:"min_line_length"`
	MaxHeadingLength    int                  `yaml:"max_heading_length"`
	Rules               []ruleSpec           `yaml:"rules"`
	Cues                []ruleSpec           `yaml:"cues"`
	OCR                 OCRSettings          `yaml:"ocr"`
}

// LoadRegistry parses a YAML profile table (the same layout as the
// built-in one) and builds a registry from it.
func LoadRegistry(rd io.Reader) (*Registry, error) {
	var f profileFile
	if err := yaml.NewDecoder(rd).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing language profiles: %w", err)
	}

	profiles := make([]*Profile, 0, len(f.Profiles))
	for _, ps := range f.Profiles {
		rules, err := expand(ps.Rules, f.RuleSets)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", ps.ID, err)
		}
		cues, err := expand(ps.Cues, f.RuleSets)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", ps.ID, err)
		}

		p := &Profile{
			ID:                  ps.ID,
			Name:                ps.Name,
			Tag:                 ps.Tag,
			OCRCode:             ps.OCRCode,
			Aliases:             ps.Aliases,
			Scripts:             ps.Scripts,
			Levels:              ps.Levels,
			MinHeadingFontRatio: ps.MinHeadingFontRatio,
			MinLineLength:       ps.MinLineLength,
			MaxHeadingLength:    ps.MaxHeadingLength,
			OCR:                 ps.OCR,
		}
		for _, rs := range rules {
			p.Rules = append(p.Rules, Rule{
				ID:         ps.ID + "." + rs.ID,
				Pattern:    rs.Pattern,
				Level:      rs.Level,
				Confidence: rs.Confidence,
				Label:      rs.Label,
				Keyword:    rs.Keyword,
			})
		}
		for _, cs := range cues {
			p.Cues = append(p.Cues, Cue{
				ID:       ps.ID + ".cue." + cs.ID,
				Pattern:  cs.Pattern,
				Strength: cs.Strength,
			})
		}
		profiles = append(profiles, p)
	}

	return NewRegistry(f.Default, profiles...)
}

// expand splices included rule sets in place, keeping declaration order.
func expand(specs []ruleSpec, sets map[string][]ruleSpec) ([]ruleSpec, error) {
	var out []ruleSpec
	for _, s := range specs {
		if s.Include == "" {
			out = append(out, s)
			continue
		}
		set, ok := sets[s.Include]
		if !ok {
			return nil, fmt.Errorf("unknown rule set %q", s.Include)
		}
		out = append(out, set...)
	}
	return out, nil
}
