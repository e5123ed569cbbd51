package match

// Similarity scores how alike two strings are using a Sørensen–Dice
// coefficient over character-bigram multisets. It is symmetric, returns 0
// for disjoint strings and 1 for identical ones, and is case- and
// whitespace-sensitive: no normalization is applied before comparison.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		// Single-rune strings have no bigrams and already failed equality.
		return 0.0
	}

	totalA := 0
	for _, n := range bigramsA {
		totalA += n
	}
	totalB := 0
	for _, n := range bigramsB {
		totalB += n
	}

	overlap := 0
	for g, n := range bigramsA {
		if m, ok := bigramsB[g]; ok {
			overlap += min(n, m)
		}
	}

	return 2.0 * float64(overlap) / float64(totalA+totalB)
}

// bigrams counts adjacent rune pairs, keeping multiplicity.
func bigrams(s string) map[string]int {
	runes := []rune(s)
	counts := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		counts[string(runes[i:i+2])]++
	}
	return counts
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
