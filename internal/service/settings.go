package service

import (
	"sync"
	"time"

	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/pkg/errors"
)

// QASettings is a snapshot of the runtime Q&A settings
type QASettings struct {
	Enabled                 bool    `json:"enabled"`
	FallbackMessage         string  `json:"fallback_message"`
	SendProcessingMessage   bool    `json:"send_processing_message"`
	ProcessingMessage       string  `json:"processing_message"`
	DelayBetweenResponsesMs int64   `json:"delay_between_responses_ms"`
	AudioAsVoiceNote        bool    `json:"audio_as_voice_note"`
	SimilarityThreshold     float64 `json:"similarity_threshold"`
}

// DelayBetweenResponses returns the pause between consecutive responses
func (s QASettings) DelayBetweenResponses() time.Duration {
	return time.Duration(s.DelayBetweenResponsesMs) * time.Millisecond
}

// SettingsPatch is a partial settings update; nil fields are left unchanged
type SettingsPatch struct {
	Enabled                 *bool    `json:"enabled"`
	FallbackMessage         *string  `json:"fallback_message"`
	SendProcessingMessage   *bool    `json:"send_processing_message"`
	ProcessingMessage       *string  `json:"processing_message"`
	DelayBetweenResponsesMs *int64   `json:"delay_between_responses_ms"`
	AudioAsVoiceNote        *bool    `json:"audio_as_voice_note"`
	SimilarityThreshold     *float64 `json:"similarity_threshold"`
}

// Settings holds the Q&A settings shared by the inbound flow and the admin API
type Settings struct {
	mu      sync.RWMutex
	current QASettings
}

// NewSettings seeds the runtime settings from configuration
func NewSettings(cfg config.QAConfig) *Settings {
	return &Settings{
		current: QASettings{
			Enabled:                 cfg.Enabled,
			FallbackMessage:         cfg.FallbackMessage,
			SendProcessingMessage:   cfg.SendProcessingMessage,
			ProcessingMessage:       cfg.ProcessingMessage,
			DelayBetweenResponsesMs: cfg.DelayBetweenResponses.Milliseconds(),
			AudioAsVoiceNote:        cfg.AudioAsVoiceNote,
			SimilarityThreshold:     cfg.SimilarityThreshold,
		},
	}
}

// Snapshot returns a copy of the current settings
func (s *Settings) Snapshot() QASettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SimilarityThreshold returns the current similarity threshold
func (s *Settings) SimilarityThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.SimilarityThreshold
}

// Update applies a patch atomically. An invalid patch changes nothing.
func (s *Settings) Update(patch SettingsPatch) (QASettings, error) {
	if patch.DelayBetweenResponsesMs != nil && *patch.DelayBetweenResponsesMs < 0 {
		return s.Snapshot(), &errors.ErrValidation{Field: "delay_between_responses_ms", Message: "must not be negative"}
	}
	if patch.SimilarityThreshold != nil && (*patch.SimilarityThreshold < 0 || *patch.SimilarityThreshold > 1) {
		return s.Snapshot(), &errors.ErrValidation{Field: "similarity_threshold", Message: "must be between 0 and 1"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	if patch.FallbackMessage != nil {
		next.FallbackMessage = *patch.FallbackMessage
	}
	if patch.SendProcessingMessage != nil {
		next.SendProcessingMessage = *patch.SendProcessingMessage
	}
	if patch.ProcessingMessage != nil {
		next.ProcessingMessage = *patch.ProcessingMessage
	}
	if patch.DelayBetweenResponsesMs != nil {
		next.DelayBetweenResponsesMs = *patch.DelayBetweenResponsesMs
	}
	if patch.AudioAsVoiceNote != nil {
		next.AudioAsVoiceNote = *patch.AudioAsVoiceNote
	}
	if patch.SimilarityThreshold != nil {
		next.SimilarityThreshold = *patch.SimilarityThreshold
	}

	s.current = next
	return next, nil
}
