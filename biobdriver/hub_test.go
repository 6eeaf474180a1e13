package biobdriver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHubMessage(t *testing.T, conn *websocket.Conn) hubMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m hubMessage
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	require.NoError(t, hub.PublishState(StateMessage{State: StateOpenedNotLive, Guidance: "tft"}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the latest state is replayed on connect
	m := readHubMessage(t, conn)
	assert.Equal(t, "state", m.Type)
	require.NotNil(t, m.State)
	assert.Equal(t, StateOpenedNotLive, m.State.State)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.PublishPreview([]byte{0xff, 0xd8, 0xff}))
	m = readHubMessage(t, conn)
	assert.Equal(t, "preview", m.Type)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, m.JPEG)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, hub.Clients())
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
