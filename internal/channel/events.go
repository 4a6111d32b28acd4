package channel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gateway webhook event names
const (
	EventMessagesUpsert   = "messages.upsert"
	EventConnectionUpdate = "connection.update"
	EventQRCodeUpdated    = "qrcode.updated"
)

// Event is a webhook notification from the gateway. Data depends on Event.
type Event struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Data     json.RawMessage `json:"data"`
}

// MessageKey identifies a chat message
type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// MessageData is the data of a messages.upsert event
type MessageData struct {
	Key      MessageKey `json:"key"`
	PushName string     `json:"pushName"`
	Message  struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage *struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage,omitempty"`
		ImageMessage *struct {
			Caption string `json:"caption"`
		} `json:"imageMessage,omitempty"`
	} `json:"message"`
}

// ConnectionData is the data of a connection.update event
type ConnectionData struct {
	State string `json:"state"`
}

// InboundMessage is a customer message extracted from a gateway event
type InboundMessage struct {
	ID       string
	From     string
	PushName string
	Text     string
	FromMe   bool
	IsGroup  bool
}

// ParseEvent decodes a gateway webhook body
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gateway event: %w", err)
	}
	ev.Event = normalizeEventName(ev.Event)
	return &ev, nil
}

// Message extracts the inbound message of a messages.upsert event
func (e *Event) Message() (InboundMessage, error) {
	if e.Event != EventMessagesUpsert {
		return InboundMessage{}, fmt.Errorf("event %s carries no message", e.Event)
	}

	var data MessageData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return InboundMessage{}, fmt.Errorf("failed to unmarshal message data: %w", err)
	}

	text := data.Message.Conversation
	if text == "" && data.Message.ExtendedTextMessage != nil {
		text = data.Message.ExtendedTextMessage.Text
	}
	if text == "" && data.Message.ImageMessage != nil {
		text = data.Message.ImageMessage.Caption
	}

	return InboundMessage{
		ID:       data.Key.ID,
		From:     data.Key.RemoteJID,
		PushName: data.PushName,
		Text:     text,
		FromMe:   data.Key.FromMe,
		IsGroup:  strings.HasSuffix(data.Key.RemoteJID, "@g.us"),
	}, nil
}

// State maps a connection.update or qrcode.updated event to a session state
func (e *Event) State() (State, bool) {
	switch e.Event {
	case EventQRCodeUpdated:
		return StatePairing, true
	case EventConnectionUpdate:
		var data ConnectionData
		if err := json.Unmarshal(e.Data, &data); err != nil {
			return "", false
		}
		return ParseGatewayState(data.State), true
	default:
		return "", false
	}
}

// Known reports whether the event is one the service reacts to
func (e *Event) Known() bool {
	switch e.Event {
	case EventMessagesUpsert, EventConnectionUpdate, EventQRCodeUpdated:
		return true
	default:
		return false
	}
}

// normalizeEventName accepts both "messages.upsert" and "MESSAGES_UPSERT"
func normalizeEventName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}
