package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := NewInMemory(4)
	body, _ := json.Marshal(map[string]string{"sessionId": "sess-1"})
	require.NoError(t, q.Publish(ctx, Message{Type: "session_created", Body: body}))

	messages, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, "session_created", msg.Type)
		assert.JSONEq(t, `{"sessionId":"sess-1"}`, string(msg.Body))
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, Message{Type: "session_created"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessageRoundtrip(t *testing.T) {
	msg := Message{Type: "session_created", Body: json.RawMessage(`{"subject":"Math 101"}`)}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg.Type, decoded.Type)
	assert.JSONEq(t, string(msg.Body), string(decoded.Body))
}
