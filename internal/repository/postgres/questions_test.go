package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/pkg/errors"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var questionRowColumns = []string{"id", "text", "trigger_phrases", "responses", "active", "created_at", "updated_at"}

func TestGetActiveQuestions(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	id1, id2 := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(questionRowColumns).
		AddRow(id1.String(), "Qual o status do pedido?", `{"status do pedido",pedido}`,
			[]byte(`[{"kind":"text","content":"Veja em /rastreio","active":true}]`), true, now, now).
		AddRow(id2.String(), "Tem desconto?", `{}`, []byte(`[]`), true, now, now)

	mock.ExpectQuery(`SELECT .+ FROM questions\s+WHERE active = true\s+ORDER BY created_at, id`).WillReturnRows(rows)

	questions, err := repo.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, id1, questions[0].ID)
	assert.Equal(t, []string{"status do pedido", "pedido"}, questions[0].TriggerPhrases)
	require.Len(t, questions[0].Responses, 1)
	assert.Equal(t, domain.ResponseText, questions[0].Responses[0].Kind)
	assert.Equal(t, "Veja em /rastreio", questions[0].Responses[0].Content)

	assert.Empty(t, questions[1].TriggerPhrases)
	assert.Equal(t, []string{"Tem desconto?"}, questions[1].Triggers())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery(`FROM questions\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "question", notFound.Resource)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuestion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	q := &domain.Question{
		Text:           "Qual o prazo?",
		TriggerPhrases: []string{"prazo", "quando chega"},
		Responses:      []domain.Response{{Kind: domain.ResponseText, Content: "Até 7 dias úteis", Active: true}},
		Active:         true,
	}

	mock.ExpectExec(`INSERT INTO questions`).
		WithArgs(sqlmock.AnyArg(), "Qual o prazo?", `{"prazo","quando chega"}`,
			[]byte(`[{"kind":"text","content":"Até 7 dias úteis","active":true}]`),
			true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), q))
	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.False(t, q.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuestionMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	q := &domain.Question{ID: uuid.New(), Text: "x", Active: true}
	mock.ExpectExec(`UPDATE questions`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), q)
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateQuestion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`UPDATE questions\s+SET active = false`).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(questionRowColumns).
			AddRow(id.String(), "Tem loja física?", `{loja}`, []byte(`[]`), false, now, now))

	q, err := repo.Deactivate(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, q.Active)
	assert.Equal(t, []string{"loja"}, q.TriggerPhrases)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionStats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewQuestionRepository(db, zap.NewNop())

	now := time.Now()
	mock.ExpectQuery(`FROM questions\s+ORDER BY created_at, id`).
		WillReturnRows(sqlmock.NewRows(questionRowColumns).
			AddRow(uuid.NewString(), "a", `{}`, []byte(`[{"kind":"audio","media_path":"audio/a.ogg","active":true}]`), true, now, now).
			AddRow(uuid.NewString(), "b", `{}`, []byte(`[{"kind":"text","content":"b","active":false}]`), false, now, now))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalQuestions)
	assert.Equal(t, 1, stats.ActiveQuestions)
	assert.Equal(t, 1, stats.ActiveResponses)
	assert.Equal(t, 1, stats.InactiveResponses)
	assert.Equal(t, 1, stats.ResponsesByKind[domain.ResponseAudio])
	assert.NoError(t, mock.ExpectationsWereMet())
}
