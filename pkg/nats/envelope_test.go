package nats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "notes.NOTE_VERSION_CREATED", Subject("NOTE_VERSION_CREATED"))
}

func TestDecodeEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(map[string]interface{}{
		"type":        "NOTE_VERSION_CREATED",
		"data":        map[string]interface{}{"version": 3, "action": "restore"},
		"occurred_at": at,
	})
	require.NoError(t, err)

	evt, err := decodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "NOTE_VERSION_CREATED", evt.EventType())
	assert.Equal(t, "restore", evt.Payload()["action"])
	assert.Equal(t, float64(3), evt.Payload()["version"])
	assert.True(t, at.Equal(evt.Timestamp()))

	_, err = decodeEvent([]byte("not json"))
	assert.Error(t, err)
}
