package service

import (
	"math"
	"strings"
)

// Similarity computes the bag-of-words cosine similarity of two strings.
// Tokens are whitespace-separated and case-folded; each string becomes a
// term-frequency vector over the shared vocabulary. Returns a value in [0,1],
// with 0 when either string has no tokens.
func Similarity(a, b string) float64 {
	freqA := termFrequencies(a)
	freqB := termFrequencies(b)
	if len(freqA) == 0 || len(freqB) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for term, fa := range freqA {
		dot += float64(fa) * float64(freqB[term])
		magA += float64(fa) * float64(fa)
	}
	for _, fb := range freqB {
		magB += float64(fb) * float64(fb)
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / math.Sqrt(magA*magB)
}

// termFrequencies tokenizes a string and counts occurrences of each token
func termFrequencies(s string) map[string]int {
	freq := make(map[string]int)
	for _, token := range strings.Fields(strings.ToLower(s)) {
		freq[token]++
	}
	return freq
}
