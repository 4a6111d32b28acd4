package channel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/domain"
)

// Client talks to the WhatsApp gateway over HTTP. Readiness comes from the
// state tracker, which is fed by Watch and by gateway webhook events.
type Client struct {
	baseURL    string
	instance   string
	apiKey     string
	httpClient *http.Client
	tracker    *StateTracker
	logger     *zap.Logger
}

// NewClient creates a new gateway client
func NewClient(cfg config.ChannelConfig, tracker *StateTracker, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		instance: cfg.Instance,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracker: tracker,
		logger:  logger,
	}
}

// IsReady reports whether the session can send
func (c *Client) IsReady() bool {
	return c.tracker.Current() == StateReady
}

// StateName returns the current session state
func (c *Client) StateName() string {
	return string(c.tracker.Current())
}

// TextRequest is the body of a text send
type TextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// MediaRequest is the body of an image, video or document send
type MediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	MimeType  string `json:"mimetype,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Media     string `json:"media"`
	FileName  string `json:"fileName,omitempty"`
}

// AudioRequest is the body of a voice note send
type AudioRequest struct {
	Number string `json:"number"`
	Audio  string `json:"audio"`
}

// Send delivers one payload to address. Only the dispatch queue calls it.
func (c *Client) Send(ctx context.Context, address string, payload dispatch.Payload) error {
	number := addressNumber(address)

	if payload.Media == nil {
		return c.post(ctx, "/message/sendText/"+c.instance, TextRequest{Number: number, Text: payload.Text})
	}

	media := payload.Media
	data, err := os.ReadFile(media.Path)
	if err != nil {
		return fmt.Errorf("failed to read media file: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	if media.Kind == domain.ResponseAudio && payload.Options.VoiceNote && !payload.Options.AsDocument {
		return c.post(ctx, "/message/sendWhatsAppAudio/"+c.instance, AudioRequest{Number: number, Audio: encoded})
	}

	req := MediaRequest{
		Number:    number,
		MediaType: mediaType(media.Kind, payload.Options.AsDocument),
		MimeType:  mime.TypeByExtension(strings.ToLower(filepath.Ext(media.Path))),
		Caption:   media.Caption,
		Media:     encoded,
		FileName:  filepath.Base(media.Path),
	}
	return c.post(ctx, "/message/sendMedia/"+c.instance, req)
}

// connectionStateResponse is the gateway's connection state body
type connectionStateResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
}

// ConnectionState asks the gateway for the session state
func (c *Client) ConnectionState(ctx context.Context) (State, error) {
	url := fmt.Sprintf("%s/instance/connectionState/%s", c.baseURL, c.instance)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StateFailed, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return StateFailed, err
	}

	var resp connectionStateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return StateFailed, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return ParseGatewayState(resp.Instance.State), nil
}

// Refresh polls the gateway once and records the result in the tracker
func (c *Client) Refresh(ctx context.Context) State {
	state, err := c.ConnectionState(ctx)
	if err != nil && ctx.Err() != nil {
		return c.tracker.Current()
	}
	if err != nil {
		c.logger.Warn("Failed to fetch channel connection state", zap.Error(err))
		state = StateFailed
	}
	if c.tracker.Set(state) {
		c.logger.Info("Channel state changed", zap.String("state", string(state)))
	}
	return state
}

// Watch polls the gateway every interval until ctx is done
func (c *Client) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// ParseGatewayState maps the gateway's connection state string
func ParseGatewayState(s string) State {
	switch strings.ToLower(s) {
	case "open":
		return StateReady
	case "connecting":
		return StatePairing
	case "close", "closed", "":
		return StateDisconnected
	default:
		return StateFailed
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func mediaType(kind domain.ResponseKind, asDocument bool) string {
	if asDocument || kind == domain.ResponseAudio {
		return "document"
	}
	return string(kind)
}

// addressNumber strips the channel suffix the gateway does not expect
func addressNumber(address string) string {
	if at := strings.Index(address, "@"); at >= 0 {
		return address[:at]
	}
	return address
}
