package matcher

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// ThresholdSource supplies the current similarity threshold
type ThresholdSource interface {
	SimilarityThreshold() float64
}

// SimilarityMatcher scores the message against each question's canonical
// text and trigger phrases with cosine similarity over word counts, and
// matches the best-scoring question when it reaches the threshold.
type SimilarityMatcher struct {
	threshold ThresholdSource
	logger    *zap.Logger
}

// NewSimilarityMatcher creates a similarity-scoring matcher
func NewSimilarityMatcher(threshold ThresholdSource, logger *zap.Logger) *SimilarityMatcher {
	return &SimilarityMatcher{threshold: threshold, logger: logger}
}

// Match returns the highest scoring candidate; earlier candidates win ties
func (m *SimilarityMatcher) Match(text string, candidates []*domain.Question) domain.MatchResult {
	message := termCounts(Normalize(text))
	if len(message) == 0 {
		return domain.MatchResult{}
	}

	var best domain.MatchResult
	for _, q := range candidates {
		if q == nil {
			continue
		}
		texts := append([]string{q.Text}, q.TriggerPhrases...)
		for _, raw := range texts {
			score := cosine(message, termCounts(Normalize(raw)))
			if score > best.Confidence {
				best = domain.MatchResult{Confidence: score, Question: q, Phrase: raw}
			}
		}
	}

	threshold := m.threshold.SimilarityThreshold()
	best.Matched = best.Question != nil && best.Confidence >= threshold
	m.logger.Debug("Similarity match evaluated",
		zap.Float64("best_score", best.Confidence),
		zap.Float64("threshold", threshold),
		zap.Bool("matched", best.Matched),
	)
	return best
}

func termCounts(normalized string) map[string]float64 {
	counts := make(map[string]float64)
	for _, term := range strings.Fields(normalized) {
		counts[term]++
	}
	return counts
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, wa := range a {
		dot += wa * b[term]
		normA += wa * wa
	}
	for _, wb := range b {
		normB += wb * wb
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
