// Package similarity implements cosine scoring and the match-verdict policy
// used for CV / job-description comparison.
package similarity

import "math"

// Verdict is the qualitative tier derived from a similarity score.
type Verdict string

const (
	VerdictStrong   Verdict = "strong"
	VerdictModerate Verdict = "moderate"
	VerdictLow      Verdict = "low"
)

// Verdict thresholds. Both comparisons are exclusive on the lower side,
// so 0.8 itself grades as moderate and 0.5 as low.
const (
	strongThreshold   = 0.8
	moderateThreshold = 0.5
)

// Cosine returns the cosine similarity between a and b in [-1, 1].
// If either vector has zero norm the result is 0 rather than NaN.
// Vectors of unequal length are compared over the shorter prefix;
// callers that need exact semantics must normalize lengths first.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VerdictFor maps a similarity score to its verdict tier. Total over all
// real inputs: scores beyond [-1, 1] from numerical drift fall into the
// nearest tier through the threshold comparisons.
func VerdictFor(score float64) Verdict {
	switch {
	case score > strongThreshold:
		return VerdictStrong
	case score > moderateThreshold:
		return VerdictModerate
	default:
		return VerdictLow
	}
}

// Normalize fits v to exactly n elements: extra trailing elements are
// truncated, missing ones are zero-filled. A vector already of length n
// is returned unchanged.
func Normalize(v []float32, n int) []float32 {
	if len(v) == n {
		return v
	}
	if len(v) > n {
		return v[:n]
	}
	out := make([]float32, n)
	copy(out, v)
	return out
}
