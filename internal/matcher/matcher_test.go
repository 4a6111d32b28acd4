package matcher

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

func question(text string, phrases ...string) *domain.Question {
	return &domain.Question{ID: uuid.New(), Text: text, TriggerPhrases: phrases, Active: true}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Qual o STATUS do meu pedido?": "qual o status do meu pedido",
		"  Ação   rápida!!! ":          "acao rapida",
		"boleto_vencido":               "boleto vencido",
		"Pedido #123-ABC":              "pedido 123 abc",
		"":                             "",
		"   \t\n ":                     "",
		"¿¡...!?":                      "",
		"Não recebi o código":          "nao recebi o codigo",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Qual o status do meu pedido?",
		"ÇÃÕ éèê ñ ü",
		"Straße 12",
		"한국어 텍스트",
		"emoji 😊 no meio",
		"İstanbul",
		"á̂b",
		"___",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTriggerPhraseTiers(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	q := question("Formas de pagamento", "formas de pagamento")

	res := m.Match("Formas de Pagamento!", []*domain.Question{q})
	require.True(t, res.Matched)
	assert.Equal(t, domain.ConfidenceExact, res.Confidence)

	res = m.Match("quais sao as formas de pagamento aceitas", []*domain.Question{q})
	require.True(t, res.Matched)
	assert.Equal(t, domain.ConfidenceContains, res.Confidence)
	assert.Equal(t, "formas de pagamento", res.Phrase)

	res = m.Match("pagamento", []*domain.Question{q})
	require.True(t, res.Matched)
	assert.Equal(t, domain.ConfidenceContainedIn, res.Confidence)
	assert.Same(t, q, res.Question)
}

func TestExactMatchWinsOverEarlierContains(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	q := question("Status", "pedido", "status do pedido")

	res := m.Match("status do pedido", []*domain.Question{q})
	require.True(t, res.Matched)
	assert.Equal(t, domain.ConfidenceExact, res.Confidence)
	assert.Equal(t, "status do pedido", res.Phrase)
}

func TestExactMatchWinsAcrossCandidates(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	first := question("Pedido", "pedido")
	second := question("Status", "status do pedido")

	res := m.Match("status do pedido", []*domain.Question{first, second})
	require.True(t, res.Matched)
	assert.Same(t, second, res.Question)
	assert.Equal(t, domain.ConfidenceExact, res.Confidence)
}

func TestLowerTiersKeepSuppliedOrder(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	first := question("Entrega", "prazo de entrega")
	second := question("Entrega rápida", "entrega")

	res := m.Match("qual o prazo de entrega para sp", []*domain.Question{first, second})
	require.True(t, res.Matched)
	assert.Same(t, first, res.Question)

	res = m.Match("qual o prazo de entrega para sp", []*domain.Question{second, first})
	require.True(t, res.Matched)
	assert.Same(t, second, res.Question)
}

func TestShortTextNeverContainedIn(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	q := question("Tudo ok com meu pedido?", "esta tudo ok com meu pedido")

	res := m.Match("ok", []*domain.Question{q})
	assert.False(t, res.Matched)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestEmptyTextAndPhrases(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	q := question("?!", "!!!")

	assert.False(t, m.Match("   ", []*domain.Question{q}).Matched)
	assert.False(t, m.Match("qualquer coisa", []*domain.Question{q}).Matched)
	assert.False(t, m.Match("qualquer coisa", nil).Matched)
}

func TestTriggersDefaultToQuestionText(t *testing.T) {
	m := NewTriggerPhraseMatcher(zap.NewNop())
	q := question("Como faço para cancelar meu pedido?")

	res := m.Match("como faco para cancelar meu pedido", []*domain.Question{q})
	require.True(t, res.Matched)
	assert.Equal(t, domain.ConfidenceExact, res.Confidence)
	assert.Equal(t, "Como faço para cancelar meu pedido?", res.Phrase)
}

type fixedThreshold float64

func (f fixedThreshold) SimilarityThreshold() float64 { return float64(f) }

func TestSimilarityMatcher(t *testing.T) {
	m := NewSimilarityMatcher(fixedThreshold(0.7), zap.NewNop())
	pay := question("Quais são as formas de pagamento?")
	ship := question("Quanto tempo demora para entregar?", "prazo de entrega")

	res := m.Match("quais sao as formas de pagamento", []*domain.Question{ship, pay})
	require.True(t, res.Matched)
	assert.Same(t, pay, res.Question)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)

	res = m.Match("prazo da entrega", []*domain.Question{pay, ship})
	assert.Same(t, ship, res.Question)
	assert.False(t, res.Matched, "two of three words overlap, below 0.7")
	assert.InDelta(t, 2.0/3.0, res.Confidence, 1e-9)

	assert.False(t, m.Match("", []*domain.Question{pay}).Matched)
}
