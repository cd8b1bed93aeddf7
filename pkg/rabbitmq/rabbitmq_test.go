package rabbitmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := Encode("blog.created", map[string]interface{}{"slug": "hello-world"}, at)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"blog.created","occurredAt":"2024-05-01T10:00:00Z","payload":{"slug":"hello-world"}}`, string(body))

	ev, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "blog.created", ev.Type)
	assert.True(t, at.Equal(ev.OccurredAt))
	assert.Equal(t, "hello-world", ev.Payload["slug"])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := Encode("blog.updated", map[string]interface{}{"bad": make(chan int)}, time.Now())
	assert.Error(t, err)
}
