package duplicates

import "github.com/augurhq/augur/pkg/models"

// SimilarityMetrics is the multi-metric comparison result for one pair.
type SimilarityMetrics struct {
	TokenSimilarity      float64
	StructuralSimilarity float64
	OverallSimilarity    float64
	CloneType            models.CloneType
}

// calculateSimilarity computes token and structural similarity for a pair of
// blocks and classifies the clone type. The result is symmetric in its
// arguments and every metric lies in [0, 1].
func calculateSimilarity(a, b *models.CodeBlock) SimilarityMetrics {
	tokenSim := tokenSimilarity(a.Tokens, b.Tokens)
	structuralSim := structuralSimilarity(a.Normalized, b.Normalized)
	cloneType := determineCloneType(a, b, structuralSim)

	var overall float64
	switch cloneType {
	case models.CloneType1:
		overall = 1.0
	case models.CloneType2:
		overall = tokenSim*0.3 + structuralSim*0.7
	case models.CloneType3:
		overall = tokenSim*0.5 + structuralSim*0.5
	default:
		overall = tokenSim * 0.8
	}

	return SimilarityMetrics{
		TokenSimilarity:      tokenSim,
		StructuralSimilarity: structuralSim,
		OverallSimilarity:    overall,
		CloneType:            cloneType,
	}
}

// tokenSimilarity is the Jaccard index over the deduplicated token sets.
func tokenSimilarity(tokens1, tokens2 []string) float64 {
	if len(tokens1) == 0 && len(tokens2) == 0 {
		return 1.0
	}
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	set1 := make(map[string]struct{}, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = struct{}{}
	}

	intersection := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// structuralSimilarity is 1 - levenshtein/maxLen over the lightly normalized
// text, clamped to [0, 1]. Two empty strings are fully similar.
func structuralSimilarity(normalized1, normalized2 string) float64 {
	if normalized1 == normalized2 {
		return 1.0
	}

	r1 := []rune(normalized1)
	r2 := []rune(normalized2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}

	sim := 1.0 - float64(levenshtein(r1, r2))/float64(maxLen)
	if sim < 0 {
		return 0.0
	}
	return sim
}

// levenshtein computes character edit distance with a two-row matrix.
func levenshtein(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// determineCloneType classifies a pair, strongest match first. Type-1 is
// decided on the actual normalized text, not on hashes; the canonical-hash
// comparison for Type-2 is what the candidate index already bucketed on.
func determineCloneType(a, b *models.CodeBlock, structuralSim float64) models.CloneType {
	if a.Normalized == b.Normalized {
		return models.CloneType1
	}
	if a.NormalizedHash == b.NormalizedHash {
		return models.CloneType2
	}
	if structuralSim > 0.7 {
		return models.CloneType3
	}
	return models.CloneType4
}
