package lang

import "unicode"

// minScriptPresence is the share of letters a script needs before it counts
// as present in a sample.
const minScriptPresence = 0.01

// scriptStats is the script histogram of a text sample.
type scriptStats struct {
	letters int

	// covered counts, per profile, the letters inside the profile's scripts.
	covered []int

	// present counts, per profile, the declared scripts that reach
	// minScriptPresence.
	present []int
}

// measureScripts builds the histogram of sample against profiles. Only
// letters are counted; digits, punctuation and whitespace carry no script
// signal.
func measureScripts(sample string, profiles []*Profile) scriptStats {
	st := scriptStats{
		covered: make([]int, len(profiles)),
		present: make([]int, len(profiles)),
	}

	perScript := make([][]int, len(profiles))
	for i, p := range profiles {
		perScript[i] = make([]int, len(p.tables))
	}

	for _, r := range sample {
		if !unicode.IsLetter(r) {
			continue
		}
		st.letters++
		for i, p := range profiles {
			hit := false
			for j, t := range p.tables {
				if unicode.Is(t, r) {
					perScript[i][j]++
					hit = true
				}
			}
			if hit {
				st.covered[i]++
			}
		}
	}

	if st.letters == 0 {
		return st
	}
	for i := range profiles {
		for _, n := range perScript[i] {
			if float64(n)/float64(st.letters) >= minScriptPresence {
				st.present[i]++
			}
		}
	}
	return st
}

// coverage returns the share of letters covered by profile i.
func (s scriptStats) coverage(i int) float64 {
	if s.letters == 0 {
		return 0
	}
	return float64(s.covered[i]) / float64(s.letters)
}
