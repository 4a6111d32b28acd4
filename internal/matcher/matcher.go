package matcher

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// minContainedInLength is the shortest normalized message allowed to match
// as a fragment of a longer trigger phrase
const minContainedInLength = 3

// Strategy decides whether a customer message matches one of the candidates
type Strategy interface {
	Match(text string, candidates []*domain.Question) domain.MatchResult
}

// TriggerPhraseMatcher matches normalized text against trigger phrases in
// three tiers: exact (1.0), message contains phrase (0.8) and phrase
// contains message (0.6).
type TriggerPhraseMatcher struct {
	logger *zap.Logger
}

// NewTriggerPhraseMatcher creates a trigger phrase matcher
func NewTriggerPhraseMatcher(logger *zap.Logger) *TriggerPhraseMatcher {
	return &TriggerPhraseMatcher{logger: logger}
}

type phrase struct {
	question   *domain.Question
	raw        string
	normalized string
}

// Match never fails; an unmatched message yields Matched=false and
// confidence 0. An exact match anywhere wins over an earlier lower-tier
// match; otherwise the first candidate/phrase pair in supplied order wins.
func (m *TriggerPhraseMatcher) Match(text string, candidates []*domain.Question) domain.MatchResult {
	message := Normalize(text)
	if message == "" {
		return domain.MatchResult{}
	}

	phrases := make([]phrase, 0, len(candidates))
	for _, q := range candidates {
		if q == nil {
			continue
		}
		for _, raw := range q.Triggers() {
			normalized := Normalize(raw)
			if normalized == "" {
				continue
			}
			phrases = append(phrases, phrase{question: q, raw: raw, normalized: normalized})
		}
	}

	for _, p := range phrases {
		if message == p.normalized {
			return m.result(p, domain.ConfidenceExact)
		}
	}

	messageLen := utf8.RuneCountInString(message)
	for _, p := range phrases {
		if strings.Contains(message, p.normalized) {
			return m.result(p, domain.ConfidenceContains)
		}
		if messageLen >= minContainedInLength && strings.Contains(p.normalized, message) {
			return m.result(p, domain.ConfidenceContainedIn)
		}
	}

	m.logger.Debug("No trigger phrase matched", zap.String("normalized", message))
	return domain.MatchResult{}
}

func (m *TriggerPhraseMatcher) result(p phrase, confidence float64) domain.MatchResult {
	m.logger.Debug("Trigger phrase matched",
		zap.String("question_id", p.question.ID.String()),
		zap.String("phrase", p.raw),
		zap.Float64("confidence", confidence),
	)
	return domain.MatchResult{
		Matched:    true,
		Confidence: confidence,
		Question:   p.question,
		Phrase:     p.raw,
	}
}
