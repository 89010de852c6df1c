package response

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryMessageJson(t *testing.T) {
	msg := HistoryMessage{
		ID:        1,
		Text:      "hi",
		IsBot:     true,
		Role:      "assistant",
		Timestamp: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(msg)
	assert.NoError(t, err)

	decoded := map[string]any{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "isBot")
	assert.Equal(t, true, decoded["isBot"])
	assert.NotContains(t, decoded, "is_bot")
}
