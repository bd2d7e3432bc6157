package lang

import (
	"strings"

	"github.com/tsawler/pdfoutline/text"
)

// Method records which signal decided a detection.
type Method string

const (
	MethodScript   Method = "script"
	MethodPatterns Method = "patterns"
	MethodDefault  Method = "default"
)

// Detection confidences.
const (
	HighConfidence      = 0.9
	NarrowedConfidence  = 0.85
	ModerateConfidence  = 0.6
	AmbiguousConfidence = 0.4
	LowConfidence       = 0.2
)

// dominance is the share of letters a profile's scripts must cover for the
// profile to claim a sample.
const dominance = 0.6

// Detection is the outcome of language detection.
type Detection struct {
	Language   string
	Confidence float64
	Method     Method
}

// Detector guesses the language of a text sample. It is deterministic:
// the same sample and profiles always produce the same detection.
type Detector struct {
	defaultID string
}

// NewDetector creates a detector that falls back to defaultID.
func NewDetector(defaultID string) *Detector {
	return &Detector{defaultID: defaultID}
}

// Detect picks the profile that best fits sample.
//
// A profile claims the sample when its scripts cover more than 60% of the
// letters. A single claimant wins outright. Several claimants (Latin
// languages, or Han shared by Chinese and Japanese) are narrowed to those
// with the most scripts present and then the most specific script set; if
// that still leaves a tie, the candidates' numbering rules are matched
// against the sample lines. An empty sample, or an empty profile list,
// yields the default language with low confidence.
func (d *Detector) Detect(sample string, profiles []*Profile) Detection {
	st := measureScripts(sample, profiles)
	if st.letters == 0 || len(profiles) == 0 {
		return Detection{Language: d.defaultID, Confidence: LowConfidence, Method: MethodDefault}
	}

	var claimants []int
	for i := range profiles {
		if st.coverage(i) > dominance {
			claimants = append(claimants, i)
		}
	}

	if len(claimants) == 1 {
		return Detection{Language: profiles[claimants[0]].ID, Confidence: HighConfidence, Method: MethodScript}
	}

	if len(claimants) > 1 {
		narrowed := narrow(claimants, st, profiles)
		if len(narrowed) == 1 {
			return Detection{Language: profiles[narrowed[0]].ID, Confidence: NarrowedConfidence, Method: MethodScript}
		}
		if best, score := d.matchPatterns(sample, profiles, narrowed); score > 0 {
			return Detection{Language: profiles[best].ID, Confidence: ModerateConfidence, Method: MethodPatterns}
		}
		return Detection{Language: profiles[d.prefer(narrowed, profiles)].ID, Confidence: AmbiguousConfidence, Method: MethodScript}
	}

	all := make([]int, len(profiles))
	for i := range all {
		all[i] = i
	}
	if best, score := d.matchPatterns(sample, profiles, all); score > 0 {
		return Detection{Language: profiles[best].ID, Confidence: ModerateConfidence, Method: MethodPatterns}
	}
	return Detection{Language: d.defaultID, Confidence: LowConfidence, Method: MethodDefault}
}

// narrow keeps the claimants with the most scripts present in the sample,
// then those declaring the fewest scripts.
func narrow(claimants []int, st scriptStats, profiles []*Profile) []int {
	maxPresent := 0
	for _, i := range claimants {
		if st.present[i] > maxPresent {
			maxPresent = st.present[i]
		}
	}
	var kept []int
	for _, i := range claimants {
		if st.present[i] == maxPresent {
			kept = append(kept, i)
		}
	}

	fewest := -1
	for _, i := range kept {
		if n := len(profiles[i].tables); fewest < 0 || n < fewest {
			fewest = n
		}
	}
	var out []int
	for _, i := range kept {
		if len(profiles[i].tables) == fewest {
			out = append(out, i)
		}
	}
	return out
}

// matchPatterns scores each candidate by the summed confidence of the first
// rule matching each sample line.
func (d *Detector) matchPatterns(sample string, profiles []*Profile, candidates []int) (int, float64) {
	if len(candidates) == 0 {
		return -1, 0
	}
	scores := make([]float64, len(candidates))
	for _, line := range strings.Split(sample, "\n") {
		folded := text.Fold(line)
		if folded == "" {
			continue
		}
		for k, i := range candidates {
			for ri := range profiles[i].Rules {
				r := &profiles[i].Rules[ri]
				if r.Match(folded) {
					scores[k] += r.Confidence
					break
				}
			}
		}
	}

	best := -1
	for k, i := range candidates {
		switch {
		case best < 0 || scores[k] > scores[best]:
			best = k
		case scores[k] == scores[best] && profiles[i].ID == d.defaultID:
			best = k
		}
	}
	return candidates[best], scores[best]
}

// prefer returns the default language if it is a candidate, else the first.
func (d *Detector) prefer(candidates []int, profiles []*Profile) int {
	for _, i := range candidates {
		if profiles[i].ID == d.defaultID {
			return i
		}
	}
	return candidates[0]
}
