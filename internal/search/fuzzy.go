package search

import "strings"

// FuzzyScore rates how well pattern matches text, 0..100. A case-insensitive
// substring hit is a flat 100. Otherwise the pattern must appear as an ordered
// subsequence of the text; the score blends match completeness (50 points),
// how early the pattern was consumed (30 points) and the longest consecutive
// run (20 points), all relative to the pattern length.
func FuzzyScore(pattern, text string) float64 {
	p := strings.ToLower(pattern)
	t := strings.ToLower(text)
	if p == "" {
		return 0
	}
	if strings.Contains(t, p) {
		return 100.0
	}

	pr := []rune(p)
	matched, pi := 0, 0
	run, maxRun := 0, 0
	for _, c := range t {
		if pi < len(pr) && c == pr[pi] {
			matched++
			pi++
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	if matched == 0 {
		return 0
	}

	n := float64(len(pr))
	return float64(matched)/n*50.0 + float64(pi)/n*30.0 + float64(maxRun)/n*20.0
}
