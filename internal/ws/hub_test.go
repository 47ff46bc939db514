package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_QueuesTypedEvent(t *testing.T) {
	h := NewHub(zerolog.Nop())

	h.Publish(EventUploadStatusChanged, map[string]interface{}{"upload_status": "LOADED"})

	require.Len(t, h.Broadcast, 1)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(<-h.Broadcast, &got))
	assert.Equal(t, EventUploadStatusChanged, got["type"])
	assert.Equal(t, "LOADED", got["upload_status"])
}

func TestPublish_NilHubAndFullQueue(t *testing.T) {
	var nilHub *Hub
	assert.NotPanics(t, func() { nilHub.Publish(EventProductStatusChanged, nil) })

	h := NewHub(zerolog.Nop())
	for i := 0; i < cap(h.Broadcast)+5; i++ {
		h.Publish(EventProductStatusChanged, nil)
	}
	assert.Len(t, h.Broadcast, cap(h.Broadcast))
}

func TestHandler_ReturnsAfterHubStops(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	returned := make(chan struct{})
	go func() {
		h.Handler(nil)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("handler blocked on a stopped hub")
	}
}
