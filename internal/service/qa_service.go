package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/matcher"
	"github.com/fuscashop/ordernotify/internal/media"
	"github.com/fuscashop/ordernotify/internal/repository"
)

// MediaLibrary locates media files referenced by responses
type MediaLibrary interface {
	Exists(path string) bool
	Resolve(path string) string
	List(kind domain.ResponseKind) ([]media.File, error)
	ListAll() (map[domain.ResponseKind][]media.File, error)
}

// Reasons an inbound message is ignored
const (
	IgnoredFromMe   = "from_me"
	IgnoredGroup    = "group"
	IgnoredEmpty    = "empty"
	IgnoredDisabled = "disabled"
)

// InboundResult describes what the Q&A flow did with a message
type InboundResult struct {
	Ignored    string  `json:"ignored,omitempty"`
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`
	QuestionID string  `json:"question_id,omitempty"`
	Phrase     string  `json:"phrase,omitempty"`
	Fallback   bool    `json:"fallback"`
	Sent       int     `json:"sent"`
	Failed     int     `json:"failed"`
	Skipped    int     `json:"skipped"`
}

// QAService answers inbound customer messages
type QAService interface {
	HandleInbound(ctx context.Context, msg channel.InboundMessage) (*InboundResult, error)
}

type qaService struct {
	questions repository.QuestionRepository
	matcher   matcher.Strategy
	queue     Dispatcher
	media     MediaLibrary
	settings  *Settings
	logger    *zap.Logger
}

// NewQAService creates a new Q&A service
func NewQAService(
	questions repository.QuestionRepository,
	strategy matcher.Strategy,
	queue Dispatcher,
	library MediaLibrary,
	settings *Settings,
	logger *zap.Logger,
) *qaService {
	return &qaService{
		questions: questions,
		matcher:   strategy,
		queue:     queue,
		media:     library,
		settings:  settings,
		logger:    logger,
	}
}

// HandleInbound matches the message against the active questions and sends
// every active response of the match in order, or the fallback message.
// A failed or unusable response never stops the following ones.
func (s *qaService) HandleInbound(ctx context.Context, msg channel.InboundMessage) (*InboundResult, error) {
	result := &InboundResult{}
	switch {
	case msg.FromMe:
		result.Ignored = IgnoredFromMe
	case msg.IsGroup:
		result.Ignored = IgnoredGroup
	case strings.TrimSpace(msg.Text) == "":
		result.Ignored = IgnoredEmpty
	}
	if result.Ignored != "" {
		return result, nil
	}

	settings := s.settings.Snapshot()
	if !settings.Enabled {
		result.Ignored = IgnoredDisabled
		return result, nil
	}

	logger := s.logger.With(zap.String("from", msg.From), zap.String("message_id", msg.ID))

	questions, err := s.questions.GetActive(ctx)
	if err != nil {
		logger.Error("Failed to load active questions", zap.Error(err))
		return nil, err
	}

	match := s.matcher.Match(msg.Text, questions)
	result.Matched = match.Matched
	result.Confidence = match.Confidence

	if !match.Matched {
		if settings.FallbackMessage == "" {
			logger.Info("No question matched, staying silent")
			return result, nil
		}
		logger.Info("No question matched, sending fallback")
		result.Fallback = true
		s.send(ctx, logger, msg.From, dispatch.TextPayload(settings.FallbackMessage), result)
		return result, ctx.Err()
	}

	result.QuestionID = match.Question.ID.String()
	result.Phrase = match.Phrase
	logger.Info("Question matched",
		zap.String("question_id", result.QuestionID),
		zap.String("phrase", match.Phrase),
		zap.Float64("confidence", match.Confidence),
	)

	if settings.SendProcessingMessage && settings.ProcessingMessage != "" {
		s.send(ctx, logger, msg.From, dispatch.TextPayload(settings.ProcessingMessage), result)
	}

	responses := match.Question.ActiveResponses()
	for i, response := range responses {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		payload, ok := s.payloadFor(logger, response, settings)
		if !ok {
			result.Skipped++
			continue
		}
		s.send(ctx, logger, msg.From, payload, result)

		if i < len(responses)-1 && settings.DelayBetweenResponses() > 0 {
			if err := sleep(ctx, settings.DelayBetweenResponses()); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// payloadFor builds the outbound payload of a response. Media responses
// whose file is missing fall back to their text, or are skipped without one.
func (s *qaService) payloadFor(logger *zap.Logger, r domain.Response, settings QASettings) (dispatch.Payload, bool) {
	if !r.Kind.IsMedia() {
		if strings.TrimSpace(r.Content) == "" {
			logger.Warn("Skipping text response without content")
			return dispatch.Payload{}, false
		}
		return dispatch.TextPayload(r.Content), true
	}

	if !s.media.Exists(r.MediaPath) {
		if strings.TrimSpace(r.Content) != "" {
			logger.Warn("Media file not found, sending text instead",
				zap.String("kind", string(r.Kind)),
				zap.String("media_path", r.MediaPath),
			)
			return dispatch.TextPayload(r.Content), true
		}
		logger.Warn("Media file not found, skipping response",
			zap.String("kind", string(r.Kind)),
			zap.String("media_path", r.MediaPath),
		)
		return dispatch.Payload{}, false
	}

	return dispatch.Payload{
		Media: &dispatch.Media{
			Kind:    r.Kind,
			Path:    s.media.Resolve(r.MediaPath),
			Caption: r.Content,
		},
		Options: dispatch.SendOptions{
			VoiceNote: r.Kind == domain.ResponseAudio && settings.AudioAsVoiceNote,
		},
	}, true
}

func (s *qaService) send(ctx context.Context, logger *zap.Logger, to string, payload dispatch.Payload, result *InboundResult) {
	var err error
	select {
	case err = <-s.queue.Enqueue(to, payload):
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		result.Failed++
		logger.Error("Failed to send response", zap.String("kind", payload.Kind()), zap.Error(err))
		return
	}
	result.Sent++
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
