package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/matcher"
	"github.com/fuscashop/ordernotify/internal/media"
	"github.com/fuscashop/ordernotify/internal/repository"
	"github.com/fuscashop/ordernotify/pkg/errors"
)

// ResponseInput is a response as submitted by an administrator
type ResponseInput struct {
	Kind      string `json:"kind" binding:"required"`
	Content   string `json:"content"`
	MediaPath string `json:"media_path"`
	Active    *bool  `json:"active"`
}

// QuestionInput creates a question
type QuestionInput struct {
	Text           string          `json:"text" binding:"required"`
	TriggerPhrases []string        `json:"trigger_phrases"`
	Responses      []ResponseInput `json:"responses" binding:"required"`
}

// QuestionPatch updates a question; nil fields are left unchanged
type QuestionPatch struct {
	Text           *string          `json:"text"`
	TriggerPhrases *[]string        `json:"trigger_phrases"`
	Responses      *[]ResponseInput `json:"responses"`
	Active         *bool            `json:"active"`
}

// TestResult is the outcome of a dry-run match
type TestResult struct {
	Text       string           `json:"text"`
	Normalized string           `json:"normalized"`
	Matched    bool             `json:"matched"`
	Confidence float64          `json:"confidence"`
	Phrase     string           `json:"phrase,omitempty"`
	Question   *domain.Question `json:"question,omitempty"`
}

// QuestionService administers the question store
type QuestionService interface {
	Create(ctx context.Context, input QuestionInput) (*domain.Question, error)
	Update(ctx context.Context, id uuid.UUID, patch QuestionPatch) (*domain.Question, error)
	Remove(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Question, error)
	Stats(ctx context.Context) (*domain.QuestionStats, error)
	Test(ctx context.Context, text string) (*TestResult, error)
	ListMedia(kind domain.ResponseKind) ([]media.File, error)
	ListAllMedia() (map[domain.ResponseKind][]media.File, error)
}

type questionService struct {
	repo    repository.QuestionRepository
	media   MediaLibrary
	matcher matcher.Strategy
	logger  *zap.Logger
}

// NewQuestionService creates a new question service
func NewQuestionService(
	repo repository.QuestionRepository,
	library MediaLibrary,
	strategy matcher.Strategy,
	logger *zap.Logger,
) *questionService {
	return &questionService{
		repo:    repo,
		media:   library,
		matcher: strategy,
		logger:  logger,
	}
}

func (s *questionService) Create(ctx context.Context, input QuestionInput) (*domain.Question, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, &errors.ErrValidation{Field: "text", Message: "question text is required"}
	}

	responses, err := s.buildResponses(input.Responses)
	if err != nil {
		return nil, err
	}

	q := &domain.Question{
		Text:           text,
		TriggerPhrases: cleanPhrases(input.TriggerPhrases, text),
		Responses:      responses,
		Active:         true,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		zap.String("question_id", q.ID.String()),
		zap.Int("trigger_phrases", len(q.TriggerPhrases)),
		zap.Int("responses", len(q.Responses)),
	)
	return q, nil
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, patch QuestionPatch) (*domain.Question, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, &errors.ErrValidation{Field: "text", Message: "question text is required"}
		}
		q.Text = text
	}
	if patch.TriggerPhrases != nil {
		q.TriggerPhrases = cleanPhrases(*patch.TriggerPhrases, q.Text)
	}
	if patch.Responses != nil {
		responses, err := s.buildResponses(*patch.Responses)
		if err != nil {
			return nil, err
		}
		q.Responses = responses
	}
	if patch.Active != nil {
		q.Active = *patch.Active
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("Question updated", zap.String("question_id", id.String()))
	return q, nil
}

func (s *questionService) Remove(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	q, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Question deactivated", zap.String("question_id", id.String()))
	return q, nil
}

func (s *questionService) Get(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *questionService) List(ctx context.Context, includeInactive bool) ([]*domain.Question, error) {
	if includeInactive {
		return s.repo.List(ctx)
	}
	return s.repo.GetActive(ctx)
}

func (s *questionService) Stats(ctx context.Context) (*domain.QuestionStats, error) {
	return s.repo.Stats(ctx)
}

// Test runs the matcher against the active questions without sending anything
func (s *questionService) Test(ctx context.Context, text string) (*TestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &errors.ErrValidation{Field: "text", Message: "text is required"}
	}

	questions, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	match := s.matcher.Match(text, questions)
	result := &TestResult{
		Text:       text,
		Normalized: matcher.Normalize(text),
		Matched:    match.Matched,
		Confidence: match.Confidence,
	}
	if match.Matched {
		result.Phrase = match.Phrase
		result.Question = match.Question
	}
	return result, nil
}

func (s *questionService) ListMedia(kind domain.ResponseKind) ([]media.File, error) {
	if !kind.IsMedia() {
		return nil, &errors.ErrValidation{Field: "kind", Message: "kind must be audio, image or video"}
	}
	return s.media.List(kind)
}

func (s *questionService) ListAllMedia() (map[domain.ResponseKind][]media.File, error) {
	return s.media.ListAll()
}

// buildResponses validates every response and checks media files exist
func (s *questionService) buildResponses(inputs []ResponseInput) ([]domain.Response, error) {
	if len(inputs) == 0 {
		return nil, &errors.ErrValidation{Field: "responses", Message: "at least one response is required"}
	}

	responses := make([]domain.Response, 0, len(inputs))
	for i, in := range inputs {
		kind, ok := domain.ParseResponseKind(in.Kind)
		if !ok {
			return nil, &errors.ErrValidation{
				Field:   fmt.Sprintf("responses[%d].kind", i),
				Message: fmt.Sprintf("invalid response kind %q", in.Kind),
			}
		}

		var r domain.Response
		var err error
		if kind.IsMedia() {
			r, err = domain.NewMediaResponse(kind, strings.TrimSpace(in.MediaPath), in.Content)
		} else {
			r, err = domain.NewTextResponse(in.Content)
		}
		if err != nil {
			if verr, ok := err.(*errors.ErrValidation); ok {
				verr.Field = fmt.Sprintf("responses[%d].%s", i, verr.Field)
			}
			return nil, err
		}

		if kind.IsMedia() && !s.media.Exists(r.MediaPath) {
			return nil, &errors.ErrValidation{
				Field:   fmt.Sprintf("responses[%d].media_path", i),
				Message: fmt.Sprintf("media file not found: %s", r.MediaPath),
			}
		}

		if in.Active != nil {
			r.Active = *in.Active
		}
		responses = append(responses, r)
	}

	return responses, nil
}

// cleanPhrases trims, drops empty and duplicate phrases, keeping order.
// An empty result defaults to the question text.
func cleanPhrases(phrases []string, text string) []string {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}
