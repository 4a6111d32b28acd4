package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/pkg/errors"
)

const questionColumns = `id, text, trigger_phrases, responses, active, created_at, updated_at`

type questionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB, logger *zap.Logger) *questionRepository {
	return &questionRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var q domain.Question
	var phrases []string
	var responses []byte

	err := row.Scan(
		&q.ID,
		&q.Text,
		pq.Array(&phrases),
		&responses,
		&q.Active,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.TriggerPhrases = phrases
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &q.Responses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal responses of question %s: %w", q.ID, err)
		}
	}

	return &q, nil
}

func (r *questionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query questions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			r.logger.Error("Failed to scan question", zap.Error(err))
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

func (r *questionRepository) GetActive(ctx context.Context) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE active = true
		ORDER BY created_at, id
	`
	return r.query(ctx, query)
}

func (r *questionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		ORDER BY created_at, id
	`
	return r.query(ctx, query)
}

func (r *questionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = $1
	`

	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "question", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get question by ID", zap.Error(err))
		return nil, err
	}

	return q, nil
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	if question.UpdatedAt.IsZero() {
		question.UpdatedAt = now
	}

	responses, err := marshalResponses(question.Responses)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		question.ID,
		question.Text,
		pq.Array(question.TriggerPhrases),
		responses,
		question.Active,
		question.CreatedAt,
		question.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create question", zap.Error(err))
		return err
	}

	return nil
}

func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	query := `
		UPDATE questions
		SET text = $2, trigger_phrases = $3, responses = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	question.UpdatedAt = time.Now()

	responses, err := marshalResponses(question.Responses)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		question.ID,
		question.Text,
		pq.Array(question.TriggerPhrases),
		responses,
		question.Active,
		question.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update question", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "question", ID: question.ID.String()}
	}

	return nil
}

func (r *questionRepository) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `
		UPDATE questions
		SET active = false, updated_at = $2
		WHERE id = $1
		RETURNING ` + questionColumns

	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id, time.Now()))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "question", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to deactivate question", zap.Error(err))
		return nil, err
	}

	return q, nil
}

func (r *questionRepository) Stats(ctx context.Context) (*domain.QuestionStats, error) {
	questions, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := domain.ComputeQuestionStats(questions)
	return &stats, nil
}

func marshalResponses(responses []domain.Response) ([]byte, error) {
	if responses == nil {
		responses = []domain.Response{}
	}
	data, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responses: %w", err)
	}
	return data, nil
}
