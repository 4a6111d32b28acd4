package dispatch

import (
	"context"

	"github.com/fuscashop/ordernotify/internal/domain"
)

// Media references a file sent as audio, image or video
type Media struct {
	Kind    domain.ResponseKind
	Path    string
	Caption string
}

// SendOptions tweaks how the channel delivers a payload
type SendOptions struct {
	VoiceNote  bool
	AsDocument bool
}

// Payload is the body of one outbound message: text or media
type Payload struct {
	Text    string
	Media   *Media
	Options SendOptions
}

// TextPayload builds a plain text payload
func TextPayload(text string) Payload {
	return Payload{Text: text}
}

// Kind labels the payload for logs and metrics
func (p Payload) Kind() string {
	if p.Media != nil {
		return string(p.Media.Kind)
	}
	return string(domain.ResponseText)
}

// Client is the channel transport. The queue's drain loop is its only caller.
type Client interface {
	IsReady() bool
	Send(ctx context.Context, address string, payload Payload) error
}

// stateNamer is implemented by clients that can describe their lifecycle state
type stateNamer interface {
	StateName() string
}
