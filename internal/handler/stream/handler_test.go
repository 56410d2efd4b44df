package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/shree/backend/internal/model/persona"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
	"github.com/zhouzirui/shree/backend/internal/service/assistant"
)

func setupServer(t *testing.T) (*httptest.Server, *assistant.Manager) {
	t.Helper()
	manager := assistant.NewManager(persona.NewMemoryStore(persona.Seed()), assistant.ManagerConfig{
		Speech: speech.DefaultSpeechConfig(),
	}, zerolog.Nop())

	r := chi.NewRouter()
	New(manager, time.Hour, zerolog.Nop()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		manager.Close()
	})
	return srv, manager
}

// readEvent returns the next "event: snapshot" payload.
func readEvent(t *testing.T, reader *bufio.Reader) (string, assistant.Snapshot) {
	t.Helper()
	var event string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var snap assistant.Snapshot
			if event == "snapshot" {
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap))
			}
			return event, snap
		}
	}
}

func TestStreamUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/stream/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStreamPublishesSnapshots(t *testing.T) {
	srv, manager := setupServer(t)
	session, err := manager.CreateSession(context.Background(), "shree")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/"+session.Info().ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, first := readEvent(t, reader)
	require.Equal(t, "snapshot", event)
	assert.Len(t, first.Messages, 1)

	require.True(t, session.Submit("habit"))
	event, next := readEvent(t, reader)
	require.Equal(t, "snapshot", event)
	assert.Len(t, next.Messages, 3)
	assert.Greater(t, next.Version, first.Version)
}

func TestStreamEndsWhenSessionCloses(t *testing.T) {
	srv, manager := setupServer(t)
	session, err := manager.CreateSession(context.Background(), "shree")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/stream/" + session.Info().ID)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	require.Equal(t, "snapshot", event)

	require.NoError(t, manager.CloseSession(session.Info().ID))

	event, _ = readEvent(t, reader)
	assert.Equal(t, "closed", event)
}
