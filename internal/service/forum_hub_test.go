package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"care_training_backend/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForumHubDeliversToThreadSubscribers(t *testing.T) {
	logger.InitNop()
	hub := NewForumHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		threadID := r.URL.Query().Get("thread")
		if err := hub.ServeWS(w, r, threadID, 1); err != nil {
			t.Logf("serve ws: %v", err)
		}
	}))
	defer srv.Close()

	dial := func(thread string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?thread=" + thread
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	subscriber := dial("t1")
	other := dial("t2")
	require.Eventually(t, func() bool {
		return hub.Subscribers("t1") == 1 && hub.Subscribers("t2") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(ForumEvent{Type: EventReplyCreated, ThreadID: "t1", Data: map[string]string{"content": "hi"}})

	subscriber.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := subscriber.ReadMessage()
	require.NoError(t, err)

	var event ForumEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventReplyCreated, event.Type)
	assert.Equal(t, "t1", event.ThreadID)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)

	subscriber.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("t1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestForumHubStopsOnCancel(t *testing.T) {
	logger.InitNop()
	hub := NewForumHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// 停止后发布不阻塞
	hub.Publish(ForumEvent{Type: EventLikeUpdated, ThreadID: "t"})
}
