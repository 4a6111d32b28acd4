package domain

import (
	"strings"

	"github.com/fuscashop/ordernotify/pkg/errors"
)

// Response is one automated answer. Kind selects the variant: text
// responses carry Content, media responses carry MediaPath and may carry
// Content as a caption and text fallback.
type Response struct {
	Kind      ResponseKind `json:"kind"`
	Content   string       `json:"content,omitempty"`
	MediaPath string       `json:"media_path,omitempty"`
	Active    bool         `json:"active"`
}

// NewTextResponse builds an active text response
func NewTextResponse(content string) (Response, error) {
	r := Response{Kind: ResponseText, Content: content, Active: true}
	return r, r.Validate()
}

// NewMediaResponse builds an active media response with an optional caption
func NewMediaResponse(kind ResponseKind, mediaPath, caption string) (Response, error) {
	r := Response{Kind: kind, MediaPath: mediaPath, Content: caption, Active: true}
	return r, r.Validate()
}

// Validate checks the per-variant required fields
func (r Response) Validate() error {
	switch r.Kind {
	case ResponseText:
		if strings.TrimSpace(r.Content) == "" {
			return &errors.ErrValidation{Field: "content", Message: "text responses require content"}
		}
	case ResponseAudio, ResponseImage, ResponseVideo:
		if strings.TrimSpace(r.MediaPath) == "" {
			return &errors.ErrValidation{Field: "media_path", Message: string(r.Kind) + " responses require a media path"}
		}
	default:
		return &errors.ErrValidation{Field: "kind", Message: "kind must be text, audio, image or video"}
	}
	return nil
}
