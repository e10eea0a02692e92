package textsource

import "strings"

// DetectSeparator returns the candidate that occurs most often in line.
// If several candidates occur equally often, or none occurs, the first candidate is returned.
// Without candidates, it returns ','.
func DetectSeparator(line string, candidates ...rune) rune {
	if len(candidates) == 0 {
		return ','
	}

	best := candidates[0]
	bestCount := strings.Count(line, string(best))

	for _, candidate := range candidates[1:] {
		if count := strings.Count(line, string(candidate)); count > bestCount {
			best, bestCount = candidate, count
		}
	}

	return best
}
