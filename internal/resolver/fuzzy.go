package resolver

import "strings"

// damerauLevenshtein computes the case-insensitive Damerau-Levenshtein
// edit distance between a and b (insertions, deletions, substitutions,
// and adjacent transpositions each cost 1).
func damerauLevenshtein(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// d[i][j] holds the distance between ra[:i] and rb[:j].
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + cost; t < best {
					best = t
				}
			}
			d[i][j] = best
		}
	}

	return d[la][lb]
}

// bestFuzzyMatch returns the single candidate in candidates with the
// smallest case-insensitive Damerau-Levenshtein distance to target, as
// long as that distance is ≤ maxDistance. ok is false when candidates
// is empty or every candidate exceeds maxDistance.
func bestFuzzyMatch(target string, candidates []string, maxDistance int) (best string, ok bool) {
	bestDist := maxDistance + 1
	for _, c := range candidates {
		dist := damerauLevenshtein(target, c)
		if dist < bestDist {
			bestDist = dist
			best = c
			ok = true
		}
	}
	return best, ok
}
