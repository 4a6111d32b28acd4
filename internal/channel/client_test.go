package channel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/domain"
)

type captured struct {
	path   string
	apiKey string
	body   map[string]interface{}
}

type gateway struct {
	mu    sync.Mutex
	calls []captured
}

func (g *gateway) recorded() []captured {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]captured(nil), g.calls...)
}

func newGateway(t *testing.T, status int, state string) (*httptest.Server, *gateway) {
	t.Helper()
	g := &gateway{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{path: r.URL.Path, apiKey: r.Header.Get("apikey")}
		if r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		}
		g.mu.Lock()
		g.calls = append(g.calls, c)
		g.mu.Unlock()

		if r.URL.Path == "/instance/connectionState/loja" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"instance":{"instanceName":"loja","state":"` + state + `"}}`))
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"key":{"id":"abc"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, g
}

func newTestClient(baseURL string) *Client {
	cfg := config.ChannelConfig{BaseURL: baseURL + "/", Instance: "loja", APIKey: "secret"}
	return NewClient(cfg, NewStateTracker(), zap.NewNop())
}

func TestSendText(t *testing.T) {
	srv, gw := newGateway(t, http.StatusCreated, "open")
	c := newTestClient(srv.URL)

	err := c.Send(context.Background(), "5511987654321@c.us", dispatch.TextPayload("Olá"))
	require.NoError(t, err)

	calls := gw.recorded()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "/message/sendText/loja", call.path)
	assert.Equal(t, "secret", call.apiKey)
	assert.Equal(t, "5511987654321", call.body["number"])
	assert.Equal(t, "Olá", call.body["text"])
}

func TestSendGatewayError(t *testing.T) {
	srv, _ := newGateway(t, http.StatusBadRequest, "open")
	c := newTestClient(srv.URL)

	err := c.Send(context.Background(), "5511987654321@c.us", dispatch.TextPayload("Olá"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendMedia(t *testing.T) {
	srv, gw := newGateway(t, http.StatusOK, "open")
	c := newTestClient(srv.URL)

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "tabela.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0o644))
	audioPath := filepath.Join(dir, "boas-vindas.ogg")
	require.NoError(t, os.WriteFile(audioPath, []byte("ogg-bytes"), 0o644))

	image := dispatch.Payload{Media: &dispatch.Media{Kind: domain.ResponseImage, Path: imgPath, Caption: "Tabela"}}
	require.NoError(t, c.Send(context.Background(), "5511987654321@c.us", image))

	voice := dispatch.Payload{
		Media:   &dispatch.Media{Kind: domain.ResponseAudio, Path: audioPath},
		Options: dispatch.SendOptions{VoiceNote: true},
	}
	require.NoError(t, c.Send(context.Background(), "5511987654321@c.us", voice))

	doc := dispatch.Payload{
		Media:   &dispatch.Media{Kind: domain.ResponseImage, Path: imgPath},
		Options: dispatch.SendOptions{AsDocument: true},
	}
	require.NoError(t, c.Send(context.Background(), "5511987654321@c.us", doc))

	calls := gw.recorded()
	require.Len(t, calls, 3)

	assert.Equal(t, "/message/sendMedia/loja", calls[0].path)
	assert.Equal(t, "image", calls[0].body["mediatype"])
	assert.Equal(t, "image/png", calls[0].body["mimetype"])
	assert.Equal(t, "Tabela", calls[0].body["caption"])
	assert.Equal(t, "tabela.png", calls[0].body["fileName"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), calls[0].body["media"])

	assert.Equal(t, "/message/sendWhatsAppAudio/loja", calls[1].path)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ogg-bytes")), calls[1].body["audio"])

	assert.Equal(t, "document", calls[2].body["mediatype"])
}

func TestSendMissingMediaFile(t *testing.T) {
	srv, gw := newGateway(t, http.StatusOK, "open")
	c := newTestClient(srv.URL)

	payload := dispatch.Payload{Media: &dispatch.Media{Kind: domain.ResponseVideo, Path: "/nope/video.mp4"}}
	err := c.Send(context.Background(), "5511987654321@c.us", payload)
	assert.Error(t, err)
	assert.Empty(t, gw.recorded())
}

func TestRefreshUpdatesTracker(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, "open")
	c := newTestClient(srv.URL)
	assert.False(t, c.IsReady())

	assert.Equal(t, StateReady, c.Refresh(context.Background()))
	assert.True(t, c.IsReady())
	assert.Equal(t, "ready", c.StateName())
}

func TestRefreshFailureMarksFailed(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, "open")
	c := newTestClient(srv.URL)
	srv.Close()

	assert.Equal(t, StateFailed, c.Refresh(context.Background()))
	assert.False(t, c.IsReady())
}

func TestWatchStopsOnCancel(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, "connecting")
	c := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Watch(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.StateName() == string(StatePairing) }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestParseGatewayState(t *testing.T) {
	assert.Equal(t, StateReady, ParseGatewayState("open"))
	assert.Equal(t, StatePairing, ParseGatewayState("connecting"))
	assert.Equal(t, StateDisconnected, ParseGatewayState("close"))
	assert.Equal(t, StateFailed, ParseGatewayState("refused"))
}
